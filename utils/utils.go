package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// StructToMap converts a Go struct into a map[string]any.
//
// The struct is marshaled to JSON and decoded again, so `json` tags and
// `omitempty` are respected. Nested structs become map[string]any, slices
// become []any and every number becomes float64, which is exactly the record
// shape the query engine evaluates.
//
// The input `record` must be a struct or a pointer to a struct.
//
// Example:
//
//	type Location struct {
//		Address string `json:"address"`
//	}
//	type Kiosk struct {
//		ID       string   `json:"id"`
//		Location Location `json:"location"`
//	}
//	m, err := StructToMap(Kiosk{ID: "1", Location: Location{Address: "Quận 1"}})
//	// m == map[string]any{"id": "1", "location": map[string]any{"address": "Quận 1"}}
func StructToMap[T any](record T) (map[string]any, error) {
	val := reflect.ValueOf(record)

	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to unmarshal JSON to map[string]any: %w", err)
	}
	return result, nil
}

// StructsToMaps converts every element of records with StructToMap.
func StructsToMaps[T any](records []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))
	for i, record := range records {
		m, err := StructToMap(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// MapToStruct converts a `map[string]any` into a new instance of the struct
// type `T`. It is the inverse of StructToMap.
//
// If `T` is a pointer type (e.g., `*MyStruct`), a pointer to a populated
// struct is returned.
func MapToStruct[T any](input map[string]any) (T, error) {
	var zero T

	if input == nil {
		return zero, fmt.Errorf("MapToStruct: input map cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("MapToStruct: generic type T must be a struct type (or pointer to struct), got %s", typ.Kind())
	}

	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to marshal input map to JSON: %w", err)
	}

	var result T
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to unmarshal JSON to target struct: %w", err)
	}
	return result, nil
}
