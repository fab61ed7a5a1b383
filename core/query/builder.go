package query

import (
	"fmt"
	"maps"
	"slices"
)

// CriteriaBuilder provides a fluent API for building FilterCriteria values.
type CriteriaBuilder struct {
	criteria FilterCriteria
}

// NewCriteriaBuilder creates a new, empty criteria builder instance.
func NewCriteriaBuilder() *CriteriaBuilder {
	return &CriteriaBuilder{}
}

// Build returns the constructed FilterCriteria.
func (cb *CriteriaBuilder) Build() FilterCriteria {
	return cb.Clone().criteria
}

// Clone creates a copy of the builder whose maps and slices are not shared
// with the original.
func (cb *CriteriaBuilder) Clone() *CriteriaBuilder {
	c := cb.criteria
	c.SearchFields = slices.Clone(c.SearchFields)
	c.ExactFilters = maps.Clone(c.ExactFilters)
	c.RangeFilters = maps.Clone(c.RangeFilters)
	return &CriteriaBuilder{criteria: c}
}

// Reset clears all configurations from the builder.
func (cb *CriteriaBuilder) Reset() *CriteriaBuilder {
	cb.criteria = FilterCriteria{}
	return cb
}

// Search sets the free-text search and the fields it is matched against.
func (cb *CriteriaBuilder) Search(text string, fields ...string) *CriteriaBuilder {
	cb.criteria.SearchText = text
	cb.criteria.SearchFields = fields
	return cb
}

// Where begins an exact-match condition on field.
func (cb *CriteriaBuilder) Where(field string) *ExactConditionBuilder {
	return &ExactConditionBuilder{parent: cb, field: field}
}

// Range begins a range condition on field.
func (cb *CriteriaBuilder) Range(field string) *RangeConditionBuilder {
	return &RangeConditionBuilder{parent: cb, field: field}
}

// Match adds a custom predicate. Successive calls are combined with AND.
func (cb *CriteriaBuilder) Match(predicate Predicate) *CriteriaBuilder {
	cb.criteria.Predicate = And(cb.criteria.Predicate, predicate)
	return cb
}

// ExactConditionBuilder is part of the fluent API and is not used directly.
type ExactConditionBuilder struct {
	parent *CriteriaBuilder
	field  string
}

// Eq requires the field to equal value. A nil value removes the condition.
func (ec *ExactConditionBuilder) Eq(value FilterValue) *CriteriaBuilder {
	if value == nil {
		delete(ec.parent.criteria.ExactFilters, ec.field)
		return ec.parent
	}
	if ec.parent.criteria.ExactFilters == nil {
		ec.parent.criteria.ExactFilters = make(map[string]FilterValue)
	}
	ec.parent.criteria.ExactFilters[ec.field] = value
	return ec.parent
}

// RangeConditionBuilder is part of the fluent API and is not used directly.
type RangeConditionBuilder struct {
	parent *CriteriaBuilder
	field  string
}

// Between sets both inclusive bounds.
func (rc *RangeConditionBuilder) Between(min, max any) *CriteriaBuilder {
	return rc.set(func(r *Range) {
		r.Min = min
		r.Max = max
	})
}

// Gte sets the inclusive lower bound.
func (rc *RangeConditionBuilder) Gte(min any) *CriteriaBuilder {
	return rc.set(func(r *Range) { r.Min = min })
}

// Lte sets the inclusive upper bound.
func (rc *RangeConditionBuilder) Lte(max any) *CriteriaBuilder {
	return rc.set(func(r *Range) { r.Max = max })
}

func (rc *RangeConditionBuilder) set(apply func(r *Range)) *CriteriaBuilder {
	if rc.parent.criteria.RangeFilters == nil {
		rc.parent.criteria.RangeFilters = make(map[string]Range)
	}
	r := rc.parent.criteria.RangeFilters[rc.field]
	apply(&r)
	rc.parent.criteria.RangeFilters[rc.field] = r
	return rc.parent
}

// CriteriaValidationError represents an error found during criteria validation.
type CriteriaValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for a CriteriaValidationError.
func (ve CriteriaValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// CriteriaValidationResult holds the result of a criteria validation.
type CriteriaValidationResult struct {
	Valid  bool
	Errors []CriteriaValidationError
}

// Validate checks the criteria for structural problems that do not depend on
// the records: search text without fields, empty field names, and range bounds
// that are malformed, of mixed kinds, or inverted.
func (cb *CriteriaBuilder) Validate() CriteriaValidationResult {
	var errors []CriteriaValidationError

	if cb.criteria.SearchText != "" && len(cb.criteria.SearchFields) == 0 {
		errors = append(errors, CriteriaValidationError{
			Field:   "search",
			Message: "search text requires at least one search field",
		})
	}
	for i, f := range cb.criteria.SearchFields {
		if f == "" {
			errors = append(errors, CriteriaValidationError{
				Field:   fmt.Sprintf("searchFields[%d]", i),
				Message: "field name cannot be empty",
			})
		}
	}

	if _, ok := cb.criteria.ExactFilters[""]; ok {
		errors = append(errors, CriteriaValidationError{
			Field:   "exactFilters",
			Message: "field name cannot be empty",
		})
	}

	for _, field := range sortedKeys(cb.criteria.RangeFilters) {
		if field == "" {
			errors = append(errors, CriteriaValidationError{
				Field:   "rangeFilters",
				Message: "field name cannot be empty",
			})
			continue
		}
		if _, err := compileRange(field, cb.criteria.RangeFilters[field]); err != nil {
			errors = append(errors, CriteriaValidationError{
				Field:   fmt.Sprintf("rangeFilters.%s", field),
				Message: err.Error(),
			})
		}
	}

	return CriteriaValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
