package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	doc := Document{
		"name": "Kiosk Bến Thành",
		"location": map[string]any{
			"address": "Chợ Bến Thành, Quận 1, TP.HCM",
			"geo":     map[string]any{"lat": 10.772},
		},
		"userId":  nil,
		"a.b":     "flat",
		"devices": []any{"pos-1"},
	}

	tests := []struct {
		name  string
		path  string
		value any
		found bool
	}{
		{"top-level", "name", "Kiosk Bến Thành", true},
		{"nested", "location.address", "Chợ Bến Thành, Quận 1, TP.HCM", true},
		{"deeply nested", "location.geo.lat", 10.772, true},
		{"literal dotted key wins", "a.b", "flat", true},
		{"nil value is absent", "userId", nil, false},
		{"missing key", "email", nil, false},
		{"missing nested key", "location.city", nil, false},
		{"walk through non-map", "devices.0", nil, false},
		{"empty path", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := Lookup(doc, tt.path)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.value, value)
		})
	}

	_, found := Lookup(nil, "name")
	assert.False(t, found)
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected FieldType
		ok       bool
	}{
		{"nil", nil, "", false},
		{"string", "Nguyễn Văn An", FieldTypeString, true},
		{"iso timestamp", "2024-01-15T10:30:00Z", FieldTypeDateTime, true},
		{"iso date", "2024-01-30", FieldTypeDateTime, true},
		{"bool", true, FieldTypeBoolean, true},
		{"int", 3, FieldTypeInteger, true},
		{"int32", int32(3), FieldTypeInteger, true},
		{"float", 500000.0, FieldTypeNumber, true},
		{"time", time.Now(), FieldTypeDateTime, true},
		{"array", []any{1}, FieldTypeArray, true},
		{"object", map[string]any{}, FieldTypeObject, true},
		{"unsupported", struct{}{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InferType(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTime(t *testing.T) {
	ts, ok := ParseTime("2024-01-30T08:00:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 30, 8, 0, 0, 0, time.UTC), ts)

	ts, ok = ParseTime("2024-01-30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), ts)

	_, ok = ParseTime("500000")
	assert.False(t, ok)
	_, ok = ParseTime("not a date at all")
	assert.False(t, ok)
}

func TestFindFieldAndParse(t *testing.T) {
	s, err := Parse([]byte(`{
		"name": "kiosks",
		"version": "1.0.0",
		"fields": {
			"name": {"type": "string"},
			"location": {"type": "object", "schema": {"id": "location"}}
		},
		"nestedSchemas": {
			"location": {"name": "location", "fields": {"address": {"type": "string"}}}
		}
	}`))
	require.NoError(t, err)

	f := s.FindField("location.address")
	require.NotNil(t, f)
	assert.Equal(t, "address", f.Name)
	assert.Equal(t, FieldTypeString, f.Type)
	assert.Equal(t, "name", s.FindField("name").Name)
	assert.Nil(t, s.FindField("location.city"))
	assert.Nil(t, s.FindField("name.first"))

	_, err = Parse([]byte(`{"fields": {}}`))
	assert.Error(t, err)
	_, err = Parse([]byte(`{`))
	assert.Error(t, err)

	assert.True(t, FieldTypeInteger.IsNumeric())
	assert.True(t, FieldTypeDateTime.IsRangeable())
	assert.False(t, FieldTypeString.IsRangeable())
}
