package dataset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/travelpass/dashboard/core/schema"
	errs "github.com/travelpass/dashboard/errors"
	"github.com/travelpass/dashboard/utils"
)

// Source supplies record collections. Every call returns a fresh snapshot.
type Source interface {
	Load(ctx context.Context, collection string) ([]schema.Document, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, collection string) ([]schema.Document, error)

func (f SourceFunc) Load(ctx context.Context, collection string) ([]schema.Document, error) {
	return f(ctx, collection)
}

// SeedSource serves the built-in fixture records from memory.
type SeedSource struct {
	logger *zap.Logger
}

// NewSeedSource creates a new SeedSource instance.
func NewSeedSource(logger *zap.Logger) *SeedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedSource{logger: logger}
}

// Load returns the seed records of one collection.
func (s *SeedSource) Load(ctx context.Context, collection string) ([]schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		docs []map[string]any
		err  error
	)
	switch collection {
	case Users:
		docs, err = utils.StructsToMaps(SeedUsers())
	case Cards:
		docs, err = utils.StructsToMaps(SeedCards())
	case Wallets:
		docs, err = utils.StructsToMaps(SeedWallets())
	case Transactions:
		docs, err = utils.StructsToMaps(SeedTransactions())
	case TopUps:
		docs, err = utils.StructsToMaps(SeedTopUps())
	case ExchangeRates:
		docs, err = utils.StructsToMaps(SeedExchangeRates())
	case Kiosks:
		docs, err = utils.StructsToMaps(SeedKiosks())
	case Merchants:
		docs, err = utils.StructsToMaps(SeedMerchants())
	case Admins:
		docs, err = utils.StructsToMaps(SeedAdmins())
	default:
		return nil, errs.UnknownCollectionErr(collection)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s seed records: %w", collection, err)
	}

	s.logger.Debug("Loaded seed records", zap.String("collection", collection), zap.Int("count", len(docs)))
	return ToDocuments(docs), nil
}

// ToDocuments converts plain maps to documents without copying them.
func ToDocuments(maps []map[string]any) []schema.Document {
	out := make([]schema.Document, len(maps))
	for i, m := range maps {
		out[i] = schema.Document(m)
	}
	return out
}

// Snapshot is a set of collections loaded together.
type Snapshot map[string][]schema.Document

// LoadSnapshot loads the given collections, or all of them when none are
// named, from src.
func LoadSnapshot(ctx context.Context, src Source, collections ...string) (Snapshot, error) {
	if len(collections) == 0 {
		collections = Collections()
	}
	snap := make(Snapshot, len(collections))
	for _, name := range collections {
		docs, err := src.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
		}
		snap[name] = docs
	}
	return snap, nil
}

// Validate checks every record against its collection schema and returns the
// issues keyed by collection, with the record index prefixed to each path.
// Collections without a schema are reported as NotFound.
func (s Snapshot) Validate() (map[string][]schema.Issue, error) {
	report := make(map[string][]schema.Issue)
	for name, docs := range s {
		sc, err := Schema(name)
		if err != nil {
			return nil, err
		}
		validator := schema.NewValidator(sc)
		for i, doc := range docs {
			ok, issues := validator.Validate(doc, false)
			if ok {
				continue
			}
			for _, issue := range issues {
				issue.Path = fmt.Sprintf("[%d].%s", i, issue.Path)
				report[name] = append(report[name], issue)
			}
		}
	}
	if len(report) > 0 {
		ve := errs.ValidationErrs()
		for name, issues := range report {
			for _, issue := range issues {
				ve.Add(name+issue.Path, issue.Message)
			}
		}
		return report, errs.ValidationFailedErr(ve.Err())
	}
	return report, nil
}

// Decode converts filtered documents back to typed models.
func Decode[T any](docs []schema.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		v, err := utils.MapToStruct[T](doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
