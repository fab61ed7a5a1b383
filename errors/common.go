package errors

import "fmt"

func InvalidParamsErr(err error) error {
	return E(Invalid, "invalid params", err)
}

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// UnknownCollectionErr is returned by sources asked for a collection they do not hold.
func UnknownCollectionErr(name string) error {
	return E(NotFound, fmt.Sprintf("unknown collection %q", name), nil)
}
