// Package query filters and aggregates homogeneous record collections in
// memory. Callers describe what they want with FilterCriteria and
// AggregateRequest values; the Engine evaluates them against a fresh snapshot
// of records on every call and never mutates its input.
package query

import (
	"fmt"
	"maps"
	"sort"

	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
)

// FilterValue is the value of an exact-match filter.
type FilterValue any

// Predicate is a custom condition evaluated against a whole record.
type Predicate func(doc schema.Document) bool

// Range constrains a numeric or date field to the inclusive interval
// [Min, Max]. A nil bound is open.
type Range struct {
	Min any `json:"min,omitempty"`
	Max any `json:"max,omitempty"`
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.Min == nil && r.Max == nil
}

// FilterCriteria is the combined set of constraints applied to a collection.
// Every field is optional; the zero value matches every record.
type FilterCriteria struct {
	SearchText   string                 `json:"searchText,omitempty"`
	SearchFields []string               `json:"searchFields,omitempty"`
	ExactFilters map[string]FilterValue `json:"exactFilters,omitempty"`
	RangeFilters map[string]Range       `json:"rangeFilters,omitempty"`
	Predicate    Predicate              `json:"-"`
}

// IsEmpty reports whether the criteria impose no restriction at all.
func (c FilterCriteria) IsEmpty() bool {
	if c.SearchText != "" || c.Predicate != nil {
		return false
	}
	for _, v := range c.ExactFilters {
		if v != nil {
			return false
		}
	}
	for _, r := range c.RangeFilters {
		if !r.IsOpen() {
			return false
		}
	}
	return true
}

// FilteredResult is the ordered subset of records that passed a filter.
type FilteredResult struct {
	Items        []schema.Document `json:"items"`
	MatchedCount int               `json:"matchedCount"`
}

// Merge combines two criteria that constrain disjoint fields into one whose
// result equals filtering by c1 and then by c2. Two searches, or the same
// field filtered on both sides, cannot be merged.
func Merge(c1, c2 FilterCriteria) (FilterCriteria, error) {
	var overlaps []string

	merged := FilterCriteria{
		SearchText:   c1.SearchText,
		SearchFields: c1.SearchFields,
	}
	if c2.SearchText != "" {
		if c1.SearchText != "" {
			overlaps = append(overlaps, "search")
		}
		merged.SearchText = c2.SearchText
		merged.SearchFields = c2.SearchFields
	}

	merged.ExactFilters, overlaps = mergeDisjoint(c1.ExactFilters, c2.ExactFilters, overlaps)
	merged.RangeFilters, overlaps = mergeDisjoint(c1.RangeFilters, c2.RangeFilters, overlaps)
	merged.Predicate = And(c1.Predicate, c2.Predicate)

	if len(overlaps) > 0 {
		sort.Strings(overlaps)
		return FilterCriteria{}, errs.E(errs.InvalidCriteria, fmt.Sprintf("cannot merge criteria constraining the same fields: %v", overlaps), nil)
	}
	return merged, nil
}

func mergeDisjoint[V any](a, b map[string]V, overlaps []string) (map[string]V, []string) {
	if len(a) == 0 && len(b) == 0 {
		return nil, overlaps
	}
	out := make(map[string]V, len(a)+len(b))
	maps.Copy(out, a)
	for k, v := range b {
		if _, ok := out[k]; ok {
			overlaps = append(overlaps, k)
			continue
		}
		out[k] = v
	}
	return out, overlaps
}

// And returns a predicate satisfied when every non-nil predicate is.
func And(preds ...Predicate) Predicate {
	var active []Predicate
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(doc schema.Document) bool {
		for _, p := range active {
			if !p(doc) {
				return false
			}
		}
		return true
	}
}

// Or returns a predicate satisfied when any non-nil predicate is.
func Or(preds ...Predicate) Predicate {
	var active []Predicate
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(doc schema.Document) bool {
		for _, p := range active {
			if p(doc) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(doc schema.Document) bool { return !p(doc) }
}
