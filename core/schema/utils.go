package schema

import (
	"strings"
	"time"
)

// FindField returns the definition of a top-level or dotted nested field,
// or nil when the schema does not declare it.
func (s *SchemaDefinition) FindField(name string) *FieldDefinition {
	parts := strings.Split(name, ".")
	fields := s.Fields
	for i, part := range parts {
		field, ok := fields[part]
		if !ok || field == nil {
			return nil
		}
		if i == len(parts)-1 {
			return field
		}
		if field.Type != FieldTypeObject || field.Schema == nil {
			return nil
		}
		nested, ok := s.NestedSchemas[field.Schema.ID]
		if !ok {
			return nil
		}
		fields = nested.Fields
	}
	return nil
}

// Lookup resolves a dotted path ("location.address") through nested maps.
// The boolean is false when any segment is missing or the final value is nil.
func Lookup(doc Document, path string) (any, bool) {
	if doc == nil || path == "" {
		return nil, false
	}
	if v, ok := doc[path]; ok {
		return v, v != nil
	}

	var current any = map[string]any(doc)
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		case Document:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, current != nil
}

// InferType guesses the FieldType of a runtime value. Strings that parse as
// timestamps are reported as datetime.
func InferType(value any) (FieldType, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if _, ok := ParseTime(v); ok {
			return FieldTypeDateTime, true
		}
		return FieldTypeString, true
	case bool:
		return FieldTypeBoolean, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return FieldTypeInteger, true
	case float32, float64:
		return FieldTypeNumber, true
	case time.Time:
		return FieldTypeDateTime, true
	case []any:
		return FieldTypeArray, true
	case map[string]any, Document:
		return FieldTypeObject, true
	}
	return "", false
}

// timeLayouts are tried in order when parsing timestamps held as strings.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp formats records carry.
func ParseTime(s string) (time.Time, bool) {
	if len(s) < len("2006-01-02") {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
