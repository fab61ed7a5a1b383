package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/travelpass/dashboard/core/schema"
)

func TestNormalize(t *testing.T) {
	lastUsed := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	rate, err := primitive.ParseDecimal128("2.5")
	require.NoError(t, err)

	raw := bson.M{
		"_id":            primitive.NewObjectID(),
		"id":             "1",
		"commissionRate": rate,
		"status":         "active",
		"devices": bson.A{
			bson.D{
				{Key: "deviceId", Value: "POS001"},
				{Key: "lastUsed", Value: primitive.NewDateTimeFromTime(lastUsed)},
			},
		},
		"location": bson.M{"latitude": 10.772, "floor": int32(2)},
		"visits":   int64(7),
	}

	got := Normalize(raw)
	assert.Equal(t, schema.Document{
		"id":             "1",
		"commissionRate": 2.5,
		"status":         "active",
		"devices": []any{
			map[string]any{"deviceId": "POS001", "lastUsed": "2024-01-30T12:00:00Z"},
		},
		"location": map[string]any{"latitude": 10.772, "floor": 2.0},
		"visits":   7.0,
	}, got)
}

func TestNormalizeValue(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "VND", "VND"},
		{"bool", true, true},
		{"nil", nil, nil},
		{"object id", oid, oid.Hex()},
		{"time", time.Date(2024, 1, 29, 14, 30, 0, 0, time.FixedZone("ICT", 7*3600)), "2024-01-29T07:30:00Z"},
		{"plain slice", []any{int32(1), "a"}, []any{1.0, "a"}},
		{"int", 3, 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}
