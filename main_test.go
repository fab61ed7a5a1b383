package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelpass/dashboard/config"
	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/dashboard"
)

func TestStatText(t *testing.T) {
	tests := []struct {
		name  string
		value query.AggregateValue
		want  string
	}{
		{"count", query.AggregateValue{Kind: query.AggregateCountWhere, Count: 3}, "3"},
		{"sum", query.AggregateValue{Kind: query.AggregateSum, Sum: 750000}, "750.000"},
		{"count by", query.AggregateValue{Kind: query.AggregateCountBy, Counts: map[string]int{"pending": 1, "approved": 2}}, "approved=2 pending=1"},
		{"sum by", query.AggregateValue{Kind: query.AggregateSumBy, Sums: map[string]float64{"2024-01-30": 100000}}, "2024-01-30=100.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statText(tt.value))
		})
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"id", "cardNumber"}, dedupe([]string{"id", "cardNumber", "id"}))
}

func TestWritePage(t *testing.T) {
	cfg, _, err := config.Load("")
	require.NoError(t, err)
	d, err := openDashboard(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	page, err := d.Query(context.Background(), dashboard.ScreenCards, dashboard.ViewState{
		Filters: map[string]string{"status": "active"},
	})
	require.NoError(t, err)
	screen, err := d.Screen(dashboard.ScreenCards)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writePage(&buf, d.Engine(), screen, page))
	out := buf.String()
	assert.Contains(t, out, "1 / 3")
	assert.Contains(t, out, "750.000")
	assert.Contains(t, out, "1234567890123456")
	assert.NotContains(t, out, "1234567890123457")
}
