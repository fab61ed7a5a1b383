// Package dashboard assembles the TravelPass back-office list screens on top
// of the query engine: each screen turns a serializable view state into
// filter criteria, filters a collection snapshot and computes its stat cards.
package dashboard

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
)

// RangeState holds the raw min and max inputs of one range control. An empty
// string leaves that side open.
type RangeState struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// ViewState is the serializable state of a list screen: search box, dropdown
// filters, range inputs and toggled flags. Empty values impose no
// restriction.
type ViewState struct {
	Search  string                `json:"search,omitempty"`
	Filters map[string]string     `json:"filters,omitempty"`
	Ranges  map[string]RangeState `json:"ranges,omitempty"`
	Flags   []string              `json:"flags,omitempty"`
}

// StatScope selects the records a stat card is computed over.
type StatScope string

const (
	ScopeAll      StatScope = "all"
	ScopeFiltered StatScope = "filtered"
)

// Stat is one stat card. The request must carry a label unique within the
// screen.
type Stat struct {
	Request query.AggregateRequest
	Scope   StatScope
}

// VirtualFilter turns a dropdown value into a predicate, for filters that do
// not map onto a single field.
type VirtualFilter func(value string) (query.Predicate, error)

// Screen describes one list page.
type Screen struct {
	Name         string
	Title        string
	Collection   string
	Schema       *schema.SchemaDefinition
	SearchFields []string
	Filters      []string
	Virtual      map[string]VirtualFilter
	Ranges       []string
	Flags        []string
	Stats        []Stat

	engine *query.Engine
}

// Page is the outcome of querying a screen.
type Page struct {
	Screen       string                `json:"screen"`
	Items        []schema.Document     `json:"items"`
	MatchedCount int                   `json:"matchedCount"`
	Total        int                   `json:"total"`
	Stats        query.AggregateResult `json:"stats"`
}

func (s *Screen) flagKey(flag string) string {
	return s.Name + "." + flag
}

// Criteria converts view state into filter criteria. Filter values are typed
// by the schema of their field; unknown filters, ranges or flags are rejected.
func (s *Screen) Criteria(state ViewState) (query.FilterCriteria, error) {
	b := query.NewCriteriaBuilder()
	if state.Search != "" {
		b.Search(state.Search, s.SearchFields...)
	}

	for _, name := range sortedKeys(state.Filters) {
		raw := state.Filters[name]
		if raw == "" {
			continue
		}
		if vf, ok := s.Virtual[name]; ok {
			p, err := vf(raw)
			if err != nil {
				return query.FilterCriteria{}, err
			}
			b.Match(p)
			continue
		}
		if !slices.Contains(s.Filters, name) {
			return query.FilterCriteria{}, invalidCriteria("screen %s has no filter %q", s.Name, name)
		}
		v, err := s.typedValue(name, raw)
		if err != nil {
			return query.FilterCriteria{}, err
		}
		b.Where(name).Eq(v)
	}

	for _, name := range sortedKeys(state.Ranges) {
		if !slices.Contains(s.Ranges, name) {
			return query.FilterCriteria{}, invalidCriteria("screen %s has no range %q", s.Name, name)
		}
		rs := state.Ranges[name]
		if rs.Min != "" {
			v, err := s.typedBound(name, rs.Min)
			if err != nil {
				return query.FilterCriteria{}, err
			}
			b.Range(name).Gte(v)
		}
		if rs.Max != "" {
			v, err := s.typedBound(name, rs.Max)
			if err != nil {
				return query.FilterCriteria{}, err
			}
			b.Range(name).Lte(v)
		}
	}

	for _, flag := range state.Flags {
		p, ok := s.engine.Predicate(s.flagKey(flag))
		if !ok || !slices.Contains(s.Flags, flag) {
			return query.FilterCriteria{}, invalidCriteria("screen %s has no flag %q", s.Name, flag)
		}
		b.Match(p)
	}

	if res := b.Validate(); !res.Valid {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		return query.FilterCriteria{}, invalidCriteria("%s", strings.Join(msgs, "; "))
	}
	return b.Build(), nil
}

// Query filters records by state and computes the screen's stats.
func (s *Screen) Query(records []schema.Document, state ViewState) (*Page, error) {
	criteria, err := s.Criteria(state)
	if err != nil {
		return nil, err
	}
	filtered, err := s.engine.Filter(records, criteria)
	if err != nil {
		return nil, err
	}
	stats, err := s.computeStats(records, filtered.Items)
	if err != nil {
		return nil, err
	}
	return &Page{
		Screen:       s.Name,
		Items:        filtered.Items,
		MatchedCount: filtered.MatchedCount,
		Total:        len(records),
		Stats:        stats,
	}, nil
}

func (s *Screen) computeStats(all, filtered []schema.Document) (query.AggregateResult, error) {
	var overAll, overFiltered []query.AggregateRequest
	labels := make([]string, 0, len(s.Stats))
	for _, st := range s.Stats {
		if st.Request.Label == "" {
			return query.AggregateResult{}, errs.E(errs.InvalidSpec, fmt.Sprintf("screen %s: stat without label", s.Name), nil)
		}
		labels = append(labels, st.Request.Label)
		if st.Scope == ScopeFiltered {
			overFiltered = append(overFiltered, st.Request)
		} else {
			overAll = append(overAll, st.Request)
		}
	}

	a, err := s.engine.Aggregate(all, overAll)
	if err != nil {
		return query.AggregateResult{}, err
	}
	f, err := s.engine.Aggregate(filtered, overFiltered)
	if err != nil {
		return query.AggregateResult{}, err
	}

	out := query.AggregateResult{Values: make(map[string]query.AggregateValue, len(labels)), Labels: labels}
	for _, l := range a.Labels {
		out.Values[l] = a.Values[l]
	}
	for _, l := range f.Labels {
		if _, dup := out.Values[l]; dup {
			return query.AggregateResult{}, errs.E(errs.InvalidSpec, fmt.Sprintf("screen %s: duplicate stat label %q", s.Name, l), nil)
		}
		out.Values[l] = f.Values[l]
	}
	return out, nil
}

// typedValue converts a dropdown value by the declared type of its field.
func (s *Screen) typedValue(field, raw string) (query.FilterValue, error) {
	def := s.fieldDef(field)
	if def == nil {
		return raw, nil
	}
	switch {
	case def.Type == schema.FieldTypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalidCriteria("filter %q expects true or false, got %q", field, raw)
		}
		return b, nil
	case def.Type.IsNumeric():
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalidCriteria("filter %q expects a number, got %q", field, raw)
		}
		return f, nil
	}
	return raw, nil
}

// typedBound converts a range input. Dates must parse; a date without a time
// is the start of that day in UTC.
func (s *Screen) typedBound(field, raw string) (any, error) {
	def := s.fieldDef(field)
	if def != nil && def.Type == schema.FieldTypeDateTime {
		t, ok := schema.ParseTime(raw)
		if !ok {
			return nil, invalidCriteria("range %q expects a date, got %q", field, raw)
		}
		return t, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalidCriteria("range %q expects a number, got %q", field, raw)
	}
	return f, nil
}

func (s *Screen) fieldDef(field string) *schema.FieldDefinition {
	if s.Schema == nil {
		return nil
	}
	return s.Schema.FindField(field)
}

func invalidCriteria(format string, args ...any) error {
	return errs.E(errs.InvalidCriteria, fmt.Sprintf(format, args...), nil)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
