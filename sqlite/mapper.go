package sqlite

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/travelpass/dashboard/core/schema"
)

// quoteIdentifier safely quotes an identifier, such as a table or column name,
// so names that collide with keywords or carry odd characters still work.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableName applies the configured prefix and quotes the result.
func (s *Source) tableName(collection string) string {
	return quoteIdentifier(s.options.TablePrefix + collection)
}

// sortedFields returns the top-level field names in a stable order so that
// generated DDL and INSERT statements do not depend on map iteration.
func sortedFields(sc *schema.SchemaDefinition) []string {
	names := make([]string, 0, len(sc.Fields))
	for name := range sc.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateTableSQL generates the CREATE TABLE statement for a collection. The
// primary key comes from the schema's primary index.
func (s *Source) CreateTableSQL(sc *schema.SchemaDefinition) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if s.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(s.tableName(sc.Name) + " (\n")

	var primaryKeys []string
	for _, index := range sc.Indexes {
		if index.Type == schema.IndexTypePrimary && len(index.Fields) > 0 {
			primaryKeys = index.Fields
			break
		}
	}

	columns := make([]string, 0, len(sc.Fields))
	for _, name := range sortedFields(sc) {
		columnDef, err := buildColumnDefinition(name, sc.Fields[name])
		if err != nil {
			return "", fmt.Errorf("error on field '%s': %w", name, err)
		}
		columns = append(columns, "    "+columnDef)
	}
	sb.WriteString(strings.Join(columns, ",\n"))

	if len(primaryKeys) > 0 {
		quotedPKs := make([]string, len(primaryKeys))
		for i, pk := range primaryKeys {
			quotedPKs[i] = quoteIdentifier(pk)
		}
		sb.WriteString(",\n    PRIMARY KEY (" + strings.Join(quotedPKs, ", ") + ")")
	}

	sb.WriteString("\n);")
	return sb.String(), nil
}

// buildColumnDefinition constructs the DDL for a single column, including its
// type and constraints.
func buildColumnDefinition(fieldName string, field *schema.FieldDefinition) (string, error) {
	parts := []string{quoteIdentifier(fieldName), columnType(field.Type)}

	if field.IsRequired() {
		parts = append(parts, "NOT NULL")
	}
	if field.Default != nil {
		defVal, err := formatDefaultValue(field.Default, field.Type)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+defVal)
	}
	if field.Unique != nil && *field.Unique {
		parts = append(parts, "UNIQUE")
	}
	if field.Type == schema.FieldTypeEnum && len(field.Values) > 0 {
		checkValues := make([]string, 0, len(field.Values))
		for _, v := range field.Values {
			valStr, _ := formatDefaultValue(v, schema.FieldTypeString)
			checkValues = append(checkValues, valStr)
		}
		parts = append(parts, fmt.Sprintf("CHECK(%s IN (%s))", quoteIdentifier(fieldName), strings.Join(checkValues, ", ")))
	}
	return strings.Join(parts, " "), nil
}

// columnType maps a field type to its SQLite storage class. Datetimes stay
// TEXT so the driver hands back the stored string untouched.
func columnType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeEnum, schema.FieldTypeDateTime:
		return "TEXT"
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		return "REAL"
	case schema.FieldTypeInteger, schema.FieldTypeBoolean:
		return "INTEGER"
	case schema.FieldTypeObject, schema.FieldTypeArray, schema.FieldTypeRecord:
		return "TEXT"
	default:
		return "BLOB"
	}
}

// formatDefaultValue renders a default value as an SQL literal.
func formatDefaultValue(value any, fieldType schema.FieldType) (string, error) {
	if value == nil {
		return "NULL", nil
	}
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeEnum, schema.FieldTypeDateTime:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(fmt.Sprintf("%v", value), "'", "''")), nil
	case schema.FieldTypeNumber, schema.FieldTypeInteger, schema.FieldTypeDecimal:
		return fmt.Sprintf("%v", value), nil
	case schema.FieldTypeBoolean:
		if b, ok := value.(bool); ok && b {
			return "1", nil
		}
		return "0", nil
	case schema.FieldTypeObject, schema.FieldTypeArray, schema.FieldTypeRecord:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal default value to JSON: %w", err)
		}
		return fmt.Sprintf("'%s'", strings.ReplaceAll(string(jsonBytes), "'", "''")), nil
	default:
		return "", fmt.Errorf("unsupported type for default value: %s", fieldType)
	}
}

// CreateIndexSQL generates the CREATE INDEX statement for a secondary index.
// Primary indexes are part of the table definition and yield "".
func (s *Source) CreateIndexSQL(collection string, index schema.IndexDefinition) string {
	if index.Type == schema.IndexTypePrimary {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("CREATE ")
	if (index.Unique != nil && *index.Unique) || index.Type == schema.IndexTypeUnique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX IF NOT EXISTS ")
	indexName := index.Name
	if indexName == "" {
		indexName = fmt.Sprintf("idx_%s_%s", s.options.TablePrefix+collection, strings.Join(index.Fields, "_"))
	}
	sb.WriteString(quoteIdentifier(indexName))
	sb.WriteString(fmt.Sprintf(" ON %s (", s.tableName(collection)))

	fieldParts := make([]string, 0, len(index.Fields))
	for _, field := range index.Fields {
		part := columnExpr(field)
		if index.Order != nil && strings.EqualFold(*index.Order, "desc") {
			part += " DESC"
		}
		fieldParts = append(fieldParts, part)
	}
	sb.WriteString(strings.Join(fieldParts, ", ") + ");")
	return sb.String()
}

// columnExpr addresses a field in SQL. Dotted paths reach into the JSON text
// of their top-level column.
func columnExpr(field string) string {
	head, rest, nested := strings.Cut(field, ".")
	if !nested {
		return quoteIdentifier(field)
	}
	path := "$." + rest
	return fmt.Sprintf("json_extract(%s, '%s')", quoteIdentifier(head), strings.ReplaceAll(path, "'", "''"))
}
