package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/travelpass/dashboard/core/schema"
	"github.com/travelpass/dashboard/dataset"
)

// Source is a read-side record source backed by one MongoDB database.
type Source struct {
	client   *mongo.Client
	database string
	logger   *zap.Logger
}

var _ dataset.Source = (*Source)(nil)

// NewSource creates a Source reading collections of the named database.
func NewSource(client *mongo.Client, database string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{client: client, database: database, logger: logger}
}

func (s *Source) collection(name string) *mongo.Collection {
	return s.client.Database(s.database).Collection(name)
}

// Load returns every document of a collection in natural order.
func (s *Source) Load(ctx context.Context, collection string) ([]schema.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cursor, err := s.collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := make([]schema.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document from %s: %w", collection, err)
		}
		docs = append(docs, Normalize(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", collection, err)
	}

	s.logger.Debug("Loaded documents", zap.String("collection", collection), zap.Int("count", len(docs)))
	return docs, nil
}

// Import inserts documents into a collection as one batch.
func (s *Source) Import(ctx context.Context, collection string, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]any, len(docs))
	for i, doc := range docs {
		batch[i] = map[string]any(doc)
	}
	if _, err := s.collection(collection).InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	s.logger.Debug("Imported documents", zap.String("collection", collection), zap.Int("count", len(docs)))
	return nil
}

// ImportSnapshot imports every collection of snap.
func (s *Source) ImportSnapshot(ctx context.Context, snap dataset.Snapshot) error {
	for _, name := range dataset.Collections() {
		if docs, ok := snap[name]; ok {
			if err := s.Import(ctx, name, docs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Normalize converts a decoded BSON document into the shape records have
// everywhere else: nested maps, []any arrays, float64 numbers and RFC 3339
// timestamps. The top-level _id is dropped.
func Normalize(raw bson.M) schema.Document {
	doc := make(schema.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		return normalizeSlice(val)
	case []any:
		return normalizeSlice(val)
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		f, err := decimalToFloat(val)
		if err != nil {
			return val.String()
		}
		return f
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = normalizeValue(v)
	}
	return out
}

func decimalToFloat(d primitive.Decimal128) (float64, error) {
	dec, err := decimal.NewFromString(d.String())
	if err != nil {
		return 0, err
	}
	return dec.InexactFloat64(), nil
}
