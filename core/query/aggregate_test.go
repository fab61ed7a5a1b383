package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
)

func TestEngine_Aggregate_Scenarios(t *testing.T) {
	e := NewEngine(nil, nil)

	t.Run("count users by kyc status", func(t *testing.T) {
		users := []schema.Document{
			{"id": "1", "kycStatus": "approved"},
			{"id": "2", "kycStatus": "pending"},
			{"id": "3", "kycStatus": "approved"},
		}
		res, err := e.Aggregate(users, []AggregateRequest{CountBy("kycStatus")})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"approved": 2, "pending": 1}, res.Get("0").Counts)
		assert.Equal(t, []string{"0"}, res.Labels)
	})

	t.Run("sum card balances", func(t *testing.T) {
		cards := []schema.Document{
			{"id": "1", "balance": 500000.0},
			{"id": "2", "balance": 250000.0},
			{"id": "3", "balance": 0.0},
		}
		res, err := e.Aggregate(cards, []AggregateRequest{Sum("balance").As("totalBalance")})
		require.NoError(t, err)
		v := res.Get("totalBalance")
		assert.Equal(t, 750000.0, v.Sum)
		assert.Equal(t, 0, v.Skipped)
		assert.Equal(t, AggregateSum, v.Kind)
	})

	t.Run("empty collections", func(t *testing.T) {
		res, err := e.Aggregate(nil, []AggregateRequest{
			CountBy("status").As("byStatus"),
			Sum("amount").As("total"),
			CountWhere(func(doc schema.Document) bool { return doc["status"] == "active" }).As("active"),
			SumBy("amount", "createdAt").As("byDay"),
		})
		require.NoError(t, err)
		assert.Empty(t, res.Get("byStatus").Counts)
		assert.NotNil(t, res.Get("byStatus").Counts)
		assert.Equal(t, 0.0, res.Get("total").Sum)
		assert.Equal(t, 0, res.Get("total").Skipped)
		assert.Equal(t, 0, res.Get("active").Count)
		assert.Empty(t, res.Get("byDay").Sums)
	})
}

func TestEngine_Aggregate_Kinds(t *testing.T) {
	e := NewEngine(nil, nil)
	now := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	txs := []schema.Document{
		{"id": "1", "amount": 0.1, "status": "completed", "kioskId": "1", "createdAt": "2024-01-30T08:00:00Z"},
		{"id": "2", "amount": 0.2, "status": "completed", "kioskId": "1", "createdAt": "2024-01-30T09:00:00Z"},
		{"id": "3", "amount": "n/a", "status": "failed", "createdAt": "2024-01-29T09:00:00Z"},
		{"id": "4", "amount": int32(5), "status": "pending", "isRefund": true, "createdAt": now},
	}

	res, err := e.Aggregate(txs, []AggregateRequest{
		CountBy("status").As("byStatus"),
		CountBy("kioskId").As("byKiosk"),
		CountBy("isRefund").As("refunds"),
		Sum("amount").As("total"),
		CountWhere(func(doc schema.Document) bool { return doc["status"] == "completed" }).As("completed"),
		SumBy("amount", "status").As("amountByStatus"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"completed": 2, "failed": 1, "pending": 1}, res.Get("byStatus").Counts)

	byKiosk := res.Get("byKiosk")
	assert.Equal(t, map[string]int{"1": 2}, byKiosk.Counts)
	assert.Equal(t, 2, byKiosk.Skipped)

	assert.Equal(t, map[string]int{"true": 1}, res.Get("refunds").Counts)

	total := res.Get("total")
	assert.Equal(t, 5.3, total.Sum, "decimal accumulation avoids float drift")
	assert.Equal(t, 1, total.Skipped)
	assert.Equal(t, 3, total.Count)

	assert.Equal(t, 2, res.Get("completed").Count)

	byStatus := res.Get("amountByStatus")
	assert.InDelta(t, 0.3, byStatus.Sums["completed"], 1e-9)
	assert.Equal(t, 5.0, byStatus.Sums["pending"])
	assert.NotContains(t, byStatus.Sums, "failed")
	assert.Equal(t, 1, byStatus.Skipped)

	assert.Equal(t, []string{"byStatus", "byKiosk", "refunds", "total", "completed", "amountByStatus"}, res.Labels)
}

func TestEngine_Aggregate_ComputedFields(t *testing.T) {
	e := NewEngine(nil, nil)
	e.RegisterComputeFunction("deviceCount", func(doc schema.Document) (any, error) {
		devices, _ := doc["posDevices"].([]any)
		return len(devices), nil
	})
	e.RegisterComputeFunction("day", func(doc schema.Document) (any, error) {
		t, ok := ToTime(doc["createdAt"])
		if !ok {
			return nil, nil
		}
		return t, nil
	})

	merchants := []schema.Document{
		{"id": "1", "posDevices": []any{map[string]any{"id": "1"}}},
		{"id": "2", "posDevices": []any{map[string]any{"id": "2"}, map[string]any{"id": "3"}}},
	}
	res, err := e.Aggregate(merchants, []AggregateRequest{Sum("deviceCount").As("devices")})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Get("devices").Sum)

	topups := []schema.Document{
		{"amount": 200000.0, "createdAt": "2024-01-30T10:00:00Z"},
		{"amount": 100000.0, "createdAt": "2024-01-30T15:00:00Z"},
		{"amount": 50000.0, "createdAt": "2024-01-29T10:00:00Z"},
	}
	res, err = e.Aggregate(topups, []AggregateRequest{SumBy("amount", "day")})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"2024-01-30": 300000, "2024-01-29": 50000}, res.Get("0").Sums)
}

func TestEngine_Aggregate_InvalidSpec(t *testing.T) {
	e := NewEngine(nil, nil)
	records := []schema.Document{{"status": "active"}}

	tests := []struct {
		name     string
		requests []AggregateRequest
	}{
		{"unknown kind", []AggregateRequest{{Kind: "median", Field: "amount"}}},
		{"countBy without field", []AggregateRequest{{Kind: AggregateCountBy}}},
		{"sum without field", []AggregateRequest{{Kind: AggregateSum}}},
		{"sumBy without group", []AggregateRequest{{Kind: AggregateSumBy, Field: "amount"}}},
		{"countWhere without predicate", []AggregateRequest{{Kind: AggregateCountWhere}}},
		{"duplicate labels", []AggregateRequest{CountBy("status").As("x"), Sum("amount").As("x")}},
		{"label collides with index", []AggregateRequest{CountBy("status").As("1"), Sum("amount")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Aggregate(records, tt.requests)
			require.Error(t, err)
			assert.True(t, errs.Is(errs.InvalidSpec, err))
		})
	}
}

func TestEngine_Aggregate_NonNumericSum(t *testing.T) {
	records := []schema.Document{{"amount": "lots"}, {"name": "x"}}

	t.Run("warns by default", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		e := NewEngine(zap.New(core), nil)

		res, err := e.Aggregate(records, []AggregateRequest{Sum("amount").As("total")})
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Get("total").Sum)
		assert.Equal(t, 2, res.Get("total").Skipped)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Sum over field with no numeric values", logs.All()[0].Message)
	})

	t.Run("fails when strict", func(t *testing.T) {
		e := NewEngine(nil, &EngineOptions{StrictSums: true})
		_, err := e.Aggregate(records, []AggregateRequest{Sum("amount")})
		require.Error(t, err)
		assert.True(t, errs.Is(errs.InvalidSpec, err))

		_, err = e.Aggregate(nil, []AggregateRequest{Sum("amount")})
		assert.NoError(t, err, "an empty collection is legitimately zero")
	})
}

func TestGroupKey(t *testing.T) {
	type role string
	assert.Equal(t, "active", GroupKey("active"))
	assert.Equal(t, "super_admin", GroupKey(role("super_admin")))
	assert.Equal(t, "false", GroupKey(false))
	assert.Equal(t, "500000", GroupKey(500000.0))
	assert.Equal(t, "0.5", GroupKey(float32(0.5)))
	assert.Equal(t, "2024-01-30", GroupKey(time.Date(2024, 1, 30, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "[a]", GroupKey([]any{"a"}))
}
