package query

import (
	"fmt"
	"maps"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
)

// ComputeFunction derives a field value from a record, for example a user's
// full name looked up from another collection.
type ComputeFunction func(doc schema.Document) (any, error)

// EngineOptions tunes engine behavior.
type EngineOptions struct {
	// StrictSums makes a sum over a field that holds no numeric value in any
	// record fail with InvalidSpec instead of logging a warning.
	StrictSums bool `json:"strictSums" koanf:"strict_sums"`
}

// DefaultEngineOptions returns the options used when none are given.
func DefaultEngineOptions() *EngineOptions {
	return &EngineOptions{StrictSums: false}
}

// Engine filters and aggregates record collections. It holds no per-call
// state: the registries of compute functions and named predicates are
// read-mostly and guarded by a mutex, so Filter and Aggregate may be called
// concurrently on immutable record slices.
type Engine struct {
	computeFunctions map[string]ComputeFunction
	predicates       map[string]Predicate
	options          EngineOptions
	mu               sync.RWMutex
	logger           *zap.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(logger *zap.Logger, options *EngineOptions) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultEngineOptions()
	}
	return &Engine{
		computeFunctions: make(map[string]ComputeFunction),
		predicates:       make(map[string]Predicate),
		options:          *options,
		logger:           logger,
	}
}

// RegisterComputeFunction registers a function that resolves the named field.
// Compute functions take precedence over the record's own keys.
func (e *Engine) RegisterComputeFunction(name string, fn ComputeFunction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.computeFunctions[name] = fn
	e.logger.Debug("Registered compute function", zap.String("name", name))
}

// RegisterComputeFunctions registers multiple compute functions from a map.
func (e *Engine) RegisterComputeFunctions(functionMap map[string]ComputeFunction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, fn := range functionMap {
		e.computeFunctions[name] = fn
		e.logger.Debug("Registered compute function", zap.String("name", name))
	}
}

// RegisterPredicate registers a named predicate, so that serializable view
// state can refer to it by name.
func (e *Engine) RegisterPredicate(name string, fn Predicate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.predicates[name] = fn
	e.logger.Debug("Registered predicate", zap.String("name", name))
}

// Predicate returns the predicate registered under name.
func (e *Engine) Predicate(name string) (Predicate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.predicates[name]
	return p, ok
}

// Resolve returns the value of field on doc, preferring a registered compute
// function over a dotted-path lookup. The boolean is false when the value is
// absent, nil, or its compute function failed.
func (e *Engine) Resolve(doc schema.Document, field string) (any, bool) {
	e.mu.RLock()
	fn, ok := e.computeFunctions[field]
	e.mu.RUnlock()
	if !ok {
		return schema.Lookup(doc, field)
	}
	return resolver{compute: map[string]ComputeFunction{field: fn}, logger: e.logger}.resolve(doc, field)
}

type resolver struct {
	compute map[string]ComputeFunction
	logger  *zap.Logger
}

// resolver snapshots the compute registry so that a call never holds the
// lock while user code runs.
func (e *Engine) resolver() resolver {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return resolver{compute: maps.Clone(e.computeFunctions), logger: e.logger}
}

func (r resolver) resolve(doc schema.Document, field string) (any, bool) {
	if fn, ok := r.compute[field]; ok {
		v, err := fn(doc)
		if err != nil {
			r.logger.Debug("Compute function failed", zap.String("field", field), zap.Error(err))
			return nil, false
		}
		return v, v != nil
	}
	return schema.Lookup(doc, field)
}

// Filter returns the records satisfying every supplied criterion, in input
// order. Neither the slice nor the records are modified.
func (e *Engine) Filter(records []schema.Document, criteria FilterCriteria) (FilteredResult, error) {
	compiled, err := e.compile(records, criteria)
	if err != nil {
		e.logger.Debug("Rejected filter criteria", zap.Error(err))
		return FilteredResult{}, err
	}

	items := make([]schema.Document, 0, len(records))
	for _, doc := range records {
		if compiled.match(doc) {
			items = append(items, doc)
		}
	}
	e.logger.Debug("Records remaining after filter",
		zap.Int("input", len(records)),
		zap.Int("matched", len(items)))

	return FilteredResult{Items: items, MatchedCount: len(items)}, nil
}

// Match evaluates the criteria against a single record. The record itself is
// used as the sampled shape for range validation.
func (e *Engine) Match(criteria FilterCriteria, doc schema.Document) (bool, error) {
	compiled, err := e.compile([]schema.Document{doc}, criteria)
	if err != nil {
		return false, err
	}
	return compiled.match(doc), nil
}

type exactFilter struct {
	field string
	value any
}

type rangeFilter struct {
	field    string
	kind     boundKind
	min, max *bound
}

type compiledCriteria struct {
	search       string
	searchFields []string
	exact        []exactFilter
	ranges       []rangeFilter
	predicate    Predicate
	text         *textMatcher
	fields       resolver
}

// compile validates the criteria and prepares them for evaluation.
func (e *Engine) compile(records []schema.Document, c FilterCriteria) (*compiledCriteria, error) {
	cc := &compiledCriteria{
		predicate: c.Predicate,
		text:      newTextMatcher(),
		fields:    e.resolver(),
	}

	if c.SearchText != "" {
		if len(c.SearchFields) == 0 {
			return nil, errs.E(errs.InvalidCriteria, "search text given without search fields", nil)
		}
		cc.search = cc.text.Fold(c.SearchText)
		cc.searchFields = c.SearchFields
	}

	for _, field := range sortedKeys(c.ExactFilters) {
		value := c.ExactFilters[field]
		if value == nil {
			continue
		}
		cc.exact = append(cc.exact, exactFilter{field: field, value: normalizeScalar(value)})
	}

	for _, field := range sortedKeys(c.RangeFilters) {
		r := c.RangeFilters[field]
		if r.IsOpen() {
			continue
		}
		rf, err := compileRange(field, r)
		if err != nil {
			return nil, err
		}
		if err := cc.checkSample(records, rf); err != nil {
			return nil, err
		}
		cc.ranges = append(cc.ranges, rf)
	}

	return cc, nil
}

func compileRange(field string, r Range) (rangeFilter, error) {
	rf := rangeFilter{field: field}

	if r.Min != nil {
		b, err := parseBound(r.Min)
		if err != nil {
			return rf, errs.E(errs.InvalidCriteria, fmt.Sprintf("range %q min: %v", field, err), nil)
		}
		rf.min = &b
		rf.kind = b.kind
	}
	if r.Max != nil {
		b, err := parseBound(r.Max)
		if err != nil {
			return rf, errs.E(errs.InvalidCriteria, fmt.Sprintf("range %q max: %v", field, err), nil)
		}
		if rf.min != nil && rf.min.kind != b.kind {
			return rf, errs.E(errs.InvalidCriteria, fmt.Sprintf("range %q mixes %s and %s bounds", field, rf.min.kind, b.kind), nil)
		}
		rf.max = &b
		rf.kind = b.kind
	}
	if rf.min != nil && rf.max != nil && rf.min.compare(*rf.max) > 0 {
		return rf, errs.E(errs.InvalidCriteria, fmt.Sprintf("range %q has min greater than max", field), nil)
	}
	return rf, nil
}

// checkSample verifies the range field is coercible on the first record that
// holds a value for it. Collections without such a record pass.
func (cc *compiledCriteria) checkSample(records []schema.Document, rf rangeFilter) error {
	for _, doc := range records {
		value, ok := cc.fields.resolve(doc, rf.field)
		if !ok {
			continue
		}
		if _, ok := rf.kind.coerce(value); !ok {
			return errs.E(errs.InvalidCriteria, fmt.Sprintf("range field %q is not %s-coercible: got %T", rf.field, rf.kind, value), nil)
		}
		return nil
	}
	return nil
}

func (cc *compiledCriteria) match(doc schema.Document) bool {
	if cc.search != "" && !cc.matchSearch(doc) {
		return false
	}
	for _, f := range cc.exact {
		value, ok := cc.fields.resolve(doc, f.field)
		if !ok || !equalValues(normalizeScalar(value), f.value) {
			return false
		}
	}
	for _, rf := range cc.ranges {
		value, ok := cc.fields.resolve(doc, rf.field)
		if !ok {
			return false
		}
		b, ok := rf.kind.coerce(value)
		if !ok {
			return false
		}
		if rf.min != nil && b.compare(*rf.min) < 0 {
			return false
		}
		if rf.max != nil && b.compare(*rf.max) > 0 {
			return false
		}
	}
	if cc.predicate != nil && !cc.predicate(doc) {
		return false
	}
	return true
}

func (cc *compiledCriteria) matchSearch(doc schema.Document) bool {
	for _, field := range cc.searchFields {
		value, ok := cc.fields.resolve(doc, field)
		if !ok {
			continue
		}
		if cc.text.Contains(value, cc.search) {
			return true
		}
	}
	return false
}

type boundKind int

const (
	boundNumber boundKind = iota + 1
	boundTime
)

func (k boundKind) String() string {
	switch k {
	case boundNumber:
		return "number"
	case boundTime:
		return "date"
	}
	return "unknown"
}

// coerce converts a record value to a bound of kind k.
func (k boundKind) coerce(v any) (bound, bool) {
	switch k {
	case boundNumber:
		if _, isBool := v.(bool); isBool {
			return bound{}, false
		}
		if f, ok := ToFloat64(v); ok {
			return bound{kind: boundNumber, num: f}, true
		}
	case boundTime:
		if t, ok := ToTime(v); ok {
			return bound{kind: boundTime, at: t}, true
		}
	}
	return bound{}, false
}

type bound struct {
	kind boundKind
	num  float64
	at   time.Time
}

// parseBound reads a range bound. Strings are tried as timestamps first and
// then as numbers.
func parseBound(v any) (bound, error) {
	if f, ok := numberOf(v); ok {
		return bound{kind: boundNumber, num: f}, nil
	}
	if t, ok := ToTime(v); ok {
		return bound{kind: boundTime, at: t}, nil
	}
	if f, ok := ToFloat64(v); ok {
		return bound{kind: boundNumber, num: f}, nil
	}
	return bound{}, fmt.Errorf("bound %v (%T) is neither numeric nor a date", v, v)
}

func (b bound) compare(o bound) int {
	if b.kind == boundTime {
		return b.at.Compare(o.at)
	}
	switch {
	case b.num < o.num:
		return -1
	case b.num > o.num:
		return 1
	}
	return 0
}

// equalValues is strict equality: numbers compare by value regardless of Go
// width, times by instant, everything else must be deeply equal.
func equalValues(a, b any) bool {
	if fa, ok := numberOf(a); ok {
		fb, ok := numberOf(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeScalar converts named string and bool types (enum-like types such
// as a status) to their underlying type.
func normalizeScalar(v any) any {
	switch v.(type) {
	case string, bool:
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
