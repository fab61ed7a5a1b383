package schema

import (
	"fmt"
	"reflect"
	"time"
)

// Validator checks records against a collection schema: presence of
// required fields, value types, enum membership and nested objects.
type Validator struct {
	schema *SchemaDefinition
	issues []Issue
}

// NewValidator creates a new Validator instance for a given schema.
// The returned validator can be reused for multiple validation operations.
func NewValidator(schema *SchemaDefinition) *Validator {
	return &Validator{
		schema: schema,
		issues: make([]Issue, 0),
	}
}

// Validate checks if a given record conforms to the validator's schema.
// The `loose` parameter can be used to ignore missing required fields.
func (v *Validator) Validate(data map[string]any, loose bool) (bool, []Issue) {
	v.issues = make([]Issue, 0)

	v.validateData(data, v.schema.Fields, "")

	finalIssues := v.issues
	if loose {
		filteredIssues := make([]Issue, 0, len(v.issues))
		for _, issue := range v.issues {
			if issue.Code != "REQUIRED_FIELD_MISSING" {
				filteredIssues = append(filteredIssues, issue)
			}
		}
		finalIssues = filteredIssues
	}

	return len(finalIssues) == 0, finalIssues
}

// validateData checks all fields of one level of the record.
func (v *Validator) validateData(data map[string]any, fields map[string]*FieldDefinition, path string) {
	for fieldName, fieldDef := range fields {
		fieldPath := v.buildPath(path, fieldName)
		value, exists := data[fieldName]

		if fieldDef.IsRequired() && !exists {
			v.addIssue("REQUIRED_FIELD_MISSING", fmt.Sprintf("Required field '%s' is missing", fieldName), fieldPath)
			continue
		}

		if !exists {
			continue
		}

		v.validateFieldValue(value, fieldDef, fieldPath)
	}

	for dataKey := range data {
		if _, exists := fields[dataKey]; !exists {
			v.addIssue("UNEXPECTED_FIELD", fmt.Sprintf("Unexpected field '%s' not defined in schema", dataKey), v.buildPath(path, dataKey))
		}
	}
}

// validateFieldValue validates a single field's value against its definition.
func (v *Validator) validateFieldValue(value any, fieldDef *FieldDefinition, path string) {
	if value == nil {
		if fieldDef.IsRequired() {
			v.addIssue("NULL_VALUE", "Field cannot be null", path)
		}
		return
	}

	if !v.validateFieldType(value, fieldDef.Type, path) {
		return
	}

	switch fieldDef.Type {
	case FieldTypeEnum:
		if len(fieldDef.Values) > 0 {
			v.validateEnumValue(value, fieldDef.Values, path)
		}
	case FieldTypeObject:
		v.validateObjectField(value, fieldDef, path)
	case FieldTypeArray:
		v.validateArrayField(value, fieldDef, path)
	}
}

// describe names the inferred field type of a value for issue messages.
func describe(value any) string {
	if t, ok := InferType(value); ok {
		return string(t)
	}
	return fmt.Sprintf("%T", value)
}

// validateFieldType checks if a value's type matches the expected type.
func (v *Validator) validateFieldType(value any, expectedType FieldType, path string) bool {
	switch expectedType {
	case FieldTypeString, FieldTypeEnum:
		if _, ok := value.(string); !ok {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected string, got %s", describe(value)), path)
			return false
		}
	case FieldTypeNumber, FieldTypeDecimal:
		if !isNumericType(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected number, got %s", describe(value)), path)
			return false
		}
	case FieldTypeInteger:
		if !isIntegerValue(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected integer, got %s", describe(value)), path)
			return false
		}
	case FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected boolean, got %s", describe(value)), path)
			return false
		}
	case FieldTypeDateTime:
		if !isDateTimeValue(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected datetime, got %s", describe(value)), path)
			return false
		}
	case FieldTypeArray:
		if !isArrayType(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected array, got %s", describe(value)), path)
			return false
		}
	case FieldTypeObject, FieldTypeRecord:
		if !isObjectType(value) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected object, got %s", describe(value)), path)
			return false
		}
	}
	return true
}

// validateEnumValue validates that a value is one of the allowed enum values.
func (v *Validator) validateEnumValue(value any, allowedValues []any, path string) {
	for _, allowedValue := range allowedValues {
		if reflect.DeepEqual(value, allowedValue) {
			return
		}
	}
	v.addIssue("ENUM_VIOLATION", fmt.Sprintf("Value must be one of: %v", allowedValues), path)
}

// validateObjectField validates an object field against its nested schema.
func (v *Validator) validateObjectField(value any, fieldDef *FieldDefinition, path string) {
	if fieldDef.Schema == nil {
		return
	}

	nested, exists := v.schema.NestedSchemas[fieldDef.Schema.ID]
	if !exists {
		v.addIssue("NESTED_SCHEMA_NOT_FOUND", fmt.Sprintf("Nested schema '%s' not found", fieldDef.Schema.ID), path)
		return
	}

	v.validateData(asObject(value), nested.Fields, path)
}

// validateArrayField validates every item of an array field.
func (v *Validator) validateArrayField(value any, fieldDef *FieldDefinition, path string) {
	arrayValue, ok := value.([]any)
	if !ok || fieldDef.ItemsType == nil {
		return
	}

	for i, item := range arrayValue {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		itemFieldDef := &FieldDefinition{Type: *fieldDef.ItemsType, Schema: fieldDef.Schema}
		v.validateFieldValue(item, itemFieldDef, itemPath)
	}
}

func isNumericType(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// isIntegerValue accepts integer types and whole floats, since JSON decoding
// yields float64 for every number.
func isIntegerValue(value any) bool {
	switch n := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	case float32:
		return n == float32(int64(n))
	}
	return false
}

func isDateTimeValue(value any) bool {
	switch t := value.(type) {
	case time.Time:
		return true
	case string:
		_, ok := ParseTime(t)
		return ok
	}
	return false
}

func isArrayType(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
}

func isObjectType(value any) bool {
	switch value.(type) {
	case map[string]any, Document:
		return true
	}
	return false
}

func asObject(value any) map[string]any {
	if doc, ok := value.(Document); ok {
		return doc
	}
	m, _ := value.(map[string]any)
	return m
}

// buildPath constructs a dot-separated path string for error reporting.
func (v *Validator) buildPath(basePath, fieldName string) string {
	if basePath == "" {
		return fieldName
	}
	return basePath + "." + fieldName
}

func (v *Validator) addIssue(code, message, path string) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Message:  message,
		Path:     path,
		Severity: "error",
	})
}
