// Package schema describes the shape of the records the dashboard lists. A
// SchemaDefinition is the data contract of one collection (users, cards,
// wallets, ...); the engine itself stays generic over Document.
package schema

import (
	"encoding/json"
	"fmt"
)

// Document is a single record: an opaque mapping from field name to value.
type Document map[string]any

// FieldType represents the basic field types supported by the schema system.
type FieldType string

const (
	FieldTypeString   FieldType = "string"   // Text data
	FieldTypeNumber   FieldType = "number"   // Numeric data
	FieldTypeInteger  FieldType = "integer"  // Whole numbers
	FieldTypeDecimal  FieldType = "decimal"  // Numeric data
	FieldTypeBoolean  FieldType = "boolean"  // True/false values
	FieldTypeDateTime FieldType = "datetime" // RFC 3339 timestamps or YYYY-MM-DD dates
	FieldTypeArray    FieldType = "array"    // Ordered list of items
	FieldTypeEnum     FieldType = "enum"     // One out of a set of pre-defined items
	FieldTypeObject   FieldType = "object"   // Structured data with nested fields
	FieldTypeRecord   FieldType = "record"   // Unorganized key-value object, resolves to map[string]any
)

// IsNumeric reports whether values of this type coerce to a number.
func (t FieldType) IsNumeric() bool {
	switch t {
	case FieldTypeNumber, FieldTypeInteger, FieldTypeDecimal:
		return true
	}
	return false
}

// IsRangeable reports whether a field of this type can carry a range filter.
func (t FieldType) IsRangeable() bool {
	return t.IsNumeric() || t == FieldTypeDateTime
}

// IndexType represents index types for optimizing different query patterns.
type IndexType string

const (
	IndexTypeNormal  IndexType = "normal"  // General-purpose index
	IndexTypeUnique  IndexType = "unique"  // Unique index
	IndexTypePrimary IndexType = "primary" // Primary key index (implies unique)
)

// FieldSchema references a nested schema declared on the parent definition.
type FieldSchema struct {
	// ID references a key in the parent SchemaDefinition's NestedSchemas map.
	ID string `json:"id"`
}

// FieldDefinition defines a field within a schema.
type FieldDefinition struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
	// Required indicates if the field is mandatory.
	Required *bool `json:"required,omitempty"`
	// Default provides a default value for the field.
	Default any `json:"default,omitempty"`
	// Values specifies the allowed values for an 'enum' type field.
	Values []any `json:"values,omitempty"`
	// Schema points at the nested schema of an 'object' field.
	Schema *FieldSchema `json:"schema,omitempty"`
	// ItemsType specifies the type of items in 'array' fields.
	ItemsType *FieldType `json:"itemsType,omitempty"`
	// Description provides a brief explanation of the field.
	Description *string `json:"description,omitempty"`
	// Unique indicates if the field must have unique values.
	Unique *bool `json:"unique,omitempty"`
}

// IsRequired is a nil-safe accessor for Required.
func (f *FieldDefinition) IsRequired() bool {
	return f.Required != nil && *f.Required
}

// IndexDefinition defines an index for optimizing queries or enforcing uniqueness.
type IndexDefinition struct {
	Fields      []string  `json:"fields"`
	Type        IndexType `json:"type"`
	Unique      *bool     `json:"unique,omitempty"`
	Description *string   `json:"description,omitempty"`
	Order       *string   `json:"order,omitempty"` // "asc" | "desc"
	Name        string    `json:"name"`
}

// NestedSchemaDefinition is a reusable group of fields referenced by object fields.
type NestedSchemaDefinition struct {
	Name        string                      `json:"name"`
	Description *string                     `json:"description,omitempty"`
	Fields      map[string]*FieldDefinition `json:"fields"`
}

// SchemaDefinition defines a complete schema for one collection.
type SchemaDefinition struct {
	Name          string                             `json:"name"`
	Version       string                             `json:"version"`
	Description   *string                            `json:"description,omitempty"`
	Fields        map[string]*FieldDefinition        `json:"fields"`
	NestedSchemas map[string]*NestedSchemaDefinition `json:"nestedSchemas,omitempty"`
	Indexes       []IndexDefinition                  `json:"indexes,omitempty"`
	Metadata      map[string]any                     `json:"metadata,omitempty"`
}

// Parse decodes a JSON schema definition and fills in field names omitted
// from the field objects.
func Parse(data []byte) (*SchemaDefinition, error) {
	var s SchemaDefinition
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error unmarshaling schema: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("schema must define a name")
	}
	fillNames(s.Fields)
	for _, nested := range s.NestedSchemas {
		fillNames(nested.Fields)
	}
	return &s, nil
}

func fillNames(fields map[string]*FieldDefinition) {
	for name, field := range fields {
		if field != nil && field.Name == "" {
			field.Name = name
		}
	}
}

// Issue is a single validation finding.
type Issue struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Path        string `json:"path,omitempty"`
	Severity    string `json:"severity,omitempty"` // e.g., "error", "warning"
	Description string `json:"description,omitempty"`
}

type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}
