package query

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
)

// AggregateKind identifies the statistic an AggregateRequest computes.
type AggregateKind string

const (
	AggregateCountBy    AggregateKind = "countBy"
	AggregateSum        AggregateKind = "sum"
	AggregateCountWhere AggregateKind = "countWhere"
	AggregateSumBy      AggregateKind = "sumBy"
)

// AggregateRequest describes one statistic over a record collection.
type AggregateRequest struct {
	Kind      AggregateKind `json:"kind"`
	Field     string        `json:"field,omitempty"`
	GroupBy   string        `json:"groupBy,omitempty"`
	Predicate Predicate     `json:"-"`
	Label     string        `json:"label,omitempty"`
}

// CountBy counts records per distinct value of field.
func CountBy(field string) AggregateRequest {
	return AggregateRequest{Kind: AggregateCountBy, Field: field}
}

// Sum adds up the numeric values of field.
func Sum(field string) AggregateRequest {
	return AggregateRequest{Kind: AggregateSum, Field: field}
}

// CountWhere counts records satisfying predicate.
func CountWhere(predicate Predicate) AggregateRequest {
	return AggregateRequest{Kind: AggregateCountWhere, Predicate: predicate}
}

// SumBy adds up field per distinct value of groupBy.
func SumBy(field, groupBy string) AggregateRequest {
	return AggregateRequest{Kind: AggregateSumBy, Field: field, GroupBy: groupBy}
}

// As labels the request.
func (r AggregateRequest) As(label string) AggregateRequest {
	r.Label = label
	return r
}

// AggregateValue is the outcome of one request. Which fields are populated
// depends on Kind: Counts for countBy, Sum for sum, Count for countWhere and
// Sums for sumBy. Skipped counts records whose value was absent or
// non-numeric.
type AggregateValue struct {
	Kind    AggregateKind      `json:"kind"`
	Count   int                `json:"count"`
	Counts  map[string]int     `json:"counts,omitempty"`
	Sum     float64            `json:"sum"`
	Sums    map[string]float64 `json:"sums,omitempty"`
	Skipped int                `json:"skipped"`
}

// AggregateResult maps each request's label, or its index when unlabeled, to
// its value. Labels keeps request order.
type AggregateResult struct {
	Values map[string]AggregateValue `json:"values"`
	Labels []string                  `json:"labels"`
}

// Get returns the value computed for label.
func (r AggregateResult) Get(label string) AggregateValue {
	return r.Values[label]
}

// Aggregate computes every request over records.
func (e *Engine) Aggregate(records []schema.Document, requests []AggregateRequest) (AggregateResult, error) {
	labels, err := validateRequests(requests)
	if err != nil {
		e.logger.Debug("Rejected aggregate spec", zap.Error(err))
		return AggregateResult{}, err
	}

	fields := e.resolver()
	result := AggregateResult{
		Values: make(map[string]AggregateValue, len(requests)),
		Labels: labels,
	}

	for i, req := range requests {
		var value AggregateValue
		switch req.Kind {
		case AggregateCountBy:
			value = countBy(records, req.Field, fields)
		case AggregateSum:
			value = sum(records, req.Field, fields)
			if len(records) > 0 && value.Skipped == len(records) {
				if e.options.StrictSums {
					return AggregateResult{}, errs.E(errs.InvalidSpec, fmt.Sprintf("sum %q: field holds no numeric value in any record", req.Field), nil)
				}
				e.logger.Warn("Sum over field with no numeric values",
					zap.String("label", labels[i]),
					zap.String("field", req.Field),
					zap.Int("skipped", value.Skipped))
			}
		case AggregateCountWhere:
			value = countWhere(records, req.Predicate)
		case AggregateSumBy:
			value = sumBy(records, req.Field, req.GroupBy, fields)
		}
		value.Kind = req.Kind
		result.Values[labels[i]] = value
	}

	e.logger.Debug("Computed aggregates",
		zap.Int("records", len(records)),
		zap.Int("requests", len(requests)))
	return result, nil
}

// validateRequests checks every request and returns the result keys.
func validateRequests(requests []AggregateRequest) ([]string, error) {
	labels := make([]string, len(requests))
	seen := make(map[string]struct{}, len(requests))

	for i, req := range requests {
		label := req.Label
		if label == "" {
			label = strconv.Itoa(i)
		}
		if _, dup := seen[label]; dup {
			return nil, errs.E(errs.InvalidSpec, fmt.Sprintf("duplicate aggregate label %q", label), nil)
		}
		seen[label] = struct{}{}
		labels[i] = label

		switch req.Kind {
		case AggregateCountBy, AggregateSum:
			if req.Field == "" {
				return nil, errs.E(errs.InvalidSpec, fmt.Sprintf("aggregate %q: %s requires a field", label, req.Kind), nil)
			}
		case AggregateSumBy:
			if req.Field == "" || req.GroupBy == "" {
				return nil, errs.E(errs.InvalidSpec, fmt.Sprintf("aggregate %q: sumBy requires a field and a groupBy field", label), nil)
			}
		case AggregateCountWhere:
			if req.Predicate == nil {
				return nil, errs.E(errs.InvalidSpec, fmt.Sprintf("aggregate %q: countWhere requires a predicate", label), nil)
			}
		default:
			return nil, errs.E(errs.InvalidSpec, fmt.Sprintf("aggregate %q: unknown kind %q", label, req.Kind), nil)
		}
	}
	return labels, nil
}

func countBy(records []schema.Document, field string, fields resolver) AggregateValue {
	value := AggregateValue{Counts: make(map[string]int)}
	for _, doc := range records {
		v, ok := fields.resolve(doc, field)
		if !ok {
			value.Skipped++
			continue
		}
		value.Counts[GroupKey(v)]++
		value.Count++
	}
	return value
}

func sum(records []schema.Document, field string, fields resolver) AggregateValue {
	var value AggregateValue
	total := decimal.Zero
	for _, doc := range records {
		v, _ := fields.resolve(doc, field)
		d, ok := toDecimal(v)
		if !ok {
			value.Skipped++
			continue
		}
		total = total.Add(d)
		value.Count++
	}
	value.Sum, _ = total.Float64()
	return value
}

func countWhere(records []schema.Document, predicate Predicate) AggregateValue {
	var value AggregateValue
	for _, doc := range records {
		if predicate(doc) {
			value.Count++
		}
	}
	return value
}

func sumBy(records []schema.Document, field, groupBy string, fields resolver) AggregateValue {
	value := AggregateValue{Sums: make(map[string]float64)}
	totals := make(map[string]decimal.Decimal)
	for _, doc := range records {
		group, ok := fields.resolve(doc, groupBy)
		if !ok {
			value.Skipped++
			continue
		}
		v, _ := fields.resolve(doc, field)
		d, ok := toDecimal(v)
		if !ok {
			value.Skipped++
			continue
		}
		key := GroupKey(group)
		totals[key] = totals[key].Add(d)
		value.Count++
	}
	for key, total := range totals {
		value.Sums[key], _ = total.Float64()
	}
	return value
}

// toDecimal accepts genuine numeric values only.
func toDecimal(v any) (decimal.Decimal, bool) {
	f, ok := numberOf(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// GroupKey stringifies a value for use as a countBy or sumBy key. Dates held
// as time.Time are keyed by their yyyy-mm-dd day.
func GroupKey(v any) string {
	switch val := normalizeScalar(v).(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(isoDate)
	}
	if f, ok := numberOf(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
