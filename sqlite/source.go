// Package sqlite serves dashboard collections out of a SQLite database. Each
// collection is one table with a column per top-level schema field; nested
// objects and arrays are stored as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/core/schema"
	"github.com/travelpass/dashboard/dataset"
	errs "github.com/travelpass/dashboard/errors"
)

// dbRunner abstracts the methods shared by *sql.DB and *sql.Tx.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options controls table naming and DDL generation.
type Options struct {
	TablePrefix   string `koanf:"table_prefix"`
	IfNotExists   bool   `koanf:"if_not_exists"`
	CreateIndexes bool   `koanf:"create_indexes"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		IfNotExists:   true,
		CreateIndexes: true,
	}
}

// Source is a read-side record source backed by SQLite.
type Source struct {
	db      *sql.DB
	logger  *zap.Logger
	options *Options

	mu      sync.RWMutex
	schemas map[string]*schema.SchemaDefinition
}

var _ dataset.Source = (*Source)(nil)

// Open opens a SQLite database with the registered go-sqlite3 driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// NewSource creates a Source over db. Collections become readable once they
// are created or registered.
func NewSource(db *sql.DB, logger *zap.Logger, options *Options) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}
	return &Source{
		db:      db,
		logger:  logger,
		options: options,
		schemas: make(map[string]*schema.SchemaDefinition),
	}
}

// Register makes an existing table readable under its schema.
func (s *Source) Register(sc *schema.SchemaDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[sc.Name] = sc
}

func (s *Source) schemaFor(collection string) (*schema.SchemaDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schemas[collection]
	if !ok {
		return nil, errs.UnknownCollectionErr(collection)
	}
	return sc, nil
}

// CreateCollection creates the table and secondary indexes for a schema in a
// single transaction, then registers the schema.
func (s *Source) CreateCollection(ctx context.Context, sc *schema.SchemaDefinition) error {
	stmt, err := s.CreateTableSQL(sc)
	if err != nil {
		return fmt.Errorf("failed to generate SQL for table %s: %w", sc.Name, err)
	}

	err = s.withTx(ctx, func(r dbRunner) error {
		s.logger.Debug("Creating table", zap.String("collection", sc.Name), zap.String("sql", stmt))
		if _, err := r.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
		}
		if !s.options.CreateIndexes {
			return nil
		}
		for _, index := range sc.Indexes {
			sqlIndex := s.CreateIndexSQL(sc.Name, index)
			if sqlIndex == "" {
				continue
			}
			if _, err := r.ExecContext(ctx, sqlIndex); err != nil {
				return fmt.Errorf("failed to create index %s: %w", index.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Register(sc)
	return nil
}

// CollectionExists reports whether the table of a collection exists.
func (s *Source) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?;",
		s.options.TablePrefix+collection,
	).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Import inserts documents into a created collection in one transaction.
// Fields the schema does not declare are rejected.
func (s *Source) Import(ctx context.Context, collection string, docs []schema.Document) error {
	sc, err := s.schemaFor(collection)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	columns := sortedFields(sc)
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdentifier(col)
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		s.tableName(collection), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	return s.withTx(ctx, func(r dbRunner) error {
		for i, doc := range docs {
			for key := range doc {
				if _, ok := sc.Fields[key]; !ok {
					return errs.E(errs.Invalid, fmt.Sprintf("document %d: field %q is not declared by collection %s", i, key, collection), nil)
				}
			}
			args := make([]any, len(columns))
			for j, col := range columns {
				v, err := encodeValue(doc[col])
				if err != nil {
					return fmt.Errorf("document %d field %s: %w", i, col, err)
				}
				args[j] = v
			}
			if _, err := r.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("failed to insert document %d into %s: %w", i, collection, err)
			}
		}
		s.logger.Debug("Imported documents", zap.String("collection", collection), zap.Int("count", len(docs)))
		return nil
	})
}

// ImportSnapshot creates every collection of snap from the built-in schemas
// and imports its documents.
func (s *Source) ImportSnapshot(ctx context.Context, snap dataset.Snapshot) error {
	for _, name := range dataset.Collections() {
		docs, ok := snap[name]
		if !ok {
			continue
		}
		sc, err := dataset.Schema(name)
		if err != nil {
			return err
		}
		if err := s.CreateCollection(ctx, sc); err != nil {
			return err
		}
		if err := s.Import(ctx, name, docs); err != nil {
			return err
		}
	}
	return nil
}

// Load returns every row of a collection in insertion order.
func (s *Source) Load(ctx context.Context, collection string) ([]schema.Document, error) {
	return s.LoadMatching(ctx, collection, nil)
}

// LoadMatching returns the rows whose fields equal the given values, in
// insertion order. Only scalar values can be pushed down; nil values impose
// no restriction, the same as in query.FilterCriteria.
func (s *Source) LoadMatching(ctx context.Context, collection string, exact map[string]query.FilterValue) ([]schema.Document, error) {
	sc, err := s.schemaFor(collection)
	if err != nil {
		return nil, err
	}

	where, args, err := whereClause(sc, exact)
	if err != nil {
		return nil, err
	}

	sqlQuery := fmt.Sprintf("SELECT * FROM %s%s ORDER BY rowid;", s.tableName(collection), where)
	s.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.Any("params", args))

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()
	return readRows(s.logger, sc, rows)
}

func (s *Source) withTx(ctx context.Context, fn func(r dbRunner) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}

// whereClause builds a parameterized WHERE clause from exact filters.
func whereClause(sc *schema.SchemaDefinition, exact map[string]query.FilterValue) (string, []any, error) {
	if len(exact) == 0 {
		return "", nil, nil
	}

	fields := make([]string, 0, len(exact))
	for field := range exact {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var (
		conds []string
		args  []any
	)
	for _, field := range fields {
		value := exact[field]
		if value == nil {
			continue
		}
		if sc.FindField(field) == nil {
			return "", nil, errs.E(errs.InvalidCriteria, fmt.Sprintf("field %q is not stored in collection %s", field, sc.Name), nil)
		}
		arg, ok := scalarArg(value)
		if !ok {
			return "", nil, errs.E(errs.InvalidCriteria, fmt.Sprintf("value for field %q cannot be matched in SQL", field), nil)
		}
		conds = append(conds, columnExpr(field)+" = ?")
		args = append(args, arg)
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// scalarArg converts a filter value into a driver argument. Named string and
// bool types are reduced to their underlying kind.
func scalarArg(value any) (any, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return scalarArg(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return nil, false
}

// encodeValue converts a document value into a driver argument. Objects and
// arrays are stored as JSON text.
func encodeValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch value.(type) {
	case map[string]any, schema.Document, []any:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value to JSON: %w", err)
		}
		return string(b), nil
	}
	if arg, ok := scalarArg(value); ok {
		return arg, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value to JSON: %w", err)
	}
	return string(b), nil
}

// readRows decodes rows by the schema type of each column. NULL columns are
// left out of the document, matching records where the field is absent.
func readRows(logger *zap.Logger, sc *schema.SchemaDefinition, rows *sql.Rows) ([]schema.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]schema.Document, 0)
	for rows.Next() {
		row := make(schema.Document, len(columns))
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			val := values[i]
			if val == nil {
				continue
			}

			fieldDef, ok := sc.Fields[col]
			if !ok {
				logger.Warn("Column not found in schema, using raw value", zap.String("column", col))
				row[col] = val
				continue
			}
			row[col] = decodeValue(fieldDef.Type, val)
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func decodeValue(fieldType schema.FieldType, val any) any {
	if b, ok := val.([]byte); ok {
		val = string(b)
	}

	switch fieldType {
	case schema.FieldTypeBoolean:
		if intVal, isInt := val.(int64); isInt {
			return intVal != 0
		}
	case schema.FieldTypeInteger:
		if floatVal, isFloat := val.(float64); isFloat {
			return int64(floatVal)
		}
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		if intVal, isInt := val.(int64); isInt {
			return float64(intVal)
		}
	case schema.FieldTypeDateTime:
		if t, isTime := val.(time.Time); isTime {
			return t.UTC().Format(time.RFC3339)
		}
	case schema.FieldTypeObject, schema.FieldTypeArray, schema.FieldTypeRecord:
		if s, isString := val.(string); isString {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return decoded
			}
		}
	}
	return val
}
