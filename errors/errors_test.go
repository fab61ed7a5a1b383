package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestE(t *testing.T) {
	cause := stderrors.New("boom")
	err := E(InvalidSpec, "bad request", cause)

	assert.Equal(t, "invalid_spec: bad request: boom", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, InvalidSpec, KindOf(err))

	assert.Equal(t, "not_found: missing", E(NotFound, "missing", nil).Error())
}

func TestIs(t *testing.T) {
	inner := E(InvalidCriteria, "min exceeds max", nil)
	outer := fmt.Errorf("filter users: %w", E(Invalid, "criteria rejected", inner))

	assert.True(t, Is(InvalidCriteria, outer))
	assert.True(t, Is(Invalid, outer))
	assert.False(t, Is(InvalidSpec, outer))
	assert.False(t, Is(Invalid, stderrors.New("plain")))
	assert.False(t, Is(Invalid, nil))
	assert.Equal(t, Other, KindOf(stderrors.New("plain")))
}

func TestValidationErrs(t *testing.T) {
	ve := ValidationErrs()
	assert.NoError(t, ve.Err())

	ve.Add("logger.level", "cannot be empty")
	ve.Add("application", "cannot be empty")
	ve.Add("application", "must be lowercase")

	err := ve.Err()
	assert.Error(t, err)
	assert.Equal(t, 2, ve.Len())
	assert.Equal(t, "application: cannot be empty, must be lowercase; logger.level: cannot be empty", err.Error())
}

func TestCommonErrors(t *testing.T) {
	err := EmptyParamErr("collection")
	assert.True(t, Is(Invalid, err))
	assert.Contains(t, err.Error(), "collection: cannot be empty")

	assert.True(t, Is(NotFound, UnknownCollectionErr("ghosts")))
	assert.True(t, Is(Invalid, InvalidParamsErr(stderrors.New("x"))))
	assert.True(t, Is(Invalid, ValidationFailedErr(stderrors.New("x"))))
}
