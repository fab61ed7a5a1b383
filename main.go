package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"

	"github.com/travelpass/dashboard/config"
	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/core/schema"
	"github.com/travelpass/dashboard/dashboard"
	"github.com/travelpass/dashboard/dataset"
	"github.com/travelpass/dashboard/mongodb"
	"github.com/travelpass/dashboard/sqlite"
)

var (
	app        = kingpin.New("travelpass", "TravelPass back-office record browser.")
	configPath = app.Flag("config", "Path to the application config file").Short('c').String()
	sourceKind = app.Flag("source", "Record source, overrides the config file").Enum(config.Sources()...)

	listCmd     = app.Command("list", "Filter the records of a screen and print its stats.")
	listScreen  = listCmd.Arg("screen", "Screen to query").Required().Enum(dashboard.ScreenNames()...)
	listSearch  = listCmd.Flag("search", "Free-text search").Short('s').String()
	listFilters = listCmd.Flag("filter", "Dropdown filter as field=value").Short('f').StringMap()
	listMin     = listCmd.Flag("min", "Lower range bound as field=value").StringMap()
	listMax     = listCmd.Flag("max", "Upper range bound as field=value").StringMap()
	listFlags   = listCmd.Flag("flag", "Toggle a screen flag").Strings()
	listJSON    = listCmd.Flag("json", "Print the page as JSON").Bool()

	overviewCmd = app.Command("overview", "Print the home page numbers.")

	seedCmd = app.Command("seed", "Import the built-in fixtures into sqlite or mongodb.")
)

func newLogger(cfg *config.Config) *zap.Logger {
	zc := zap.NewProductionConfig()
	zc.Encoding = "logfmt"
	_ = zc.Level.UnmarshalText([]byte(cfg.Logger.Level))
	zc.InitialFields = make(map[string]any)
	zc.InitialFields["host"], _ = os.Hostname()
	zc.InitialFields["service"] = cfg.Application
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	return logger
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *sourceKind != "" {
		cfg.Source = *sourceKind
	}
	if err = cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(cfg)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case listCmd.FullCommand():
		err = runList(ctx, cfg, logger, os.Stdout)
	case overviewCmd.FullCommand():
		err = runOverview(ctx, cfg, logger, os.Stdout)
	case seedCmd.FullCommand():
		err = runSeed(ctx, cfg, logger)
	}
	if err != nil {
		logger.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

// openSource returns the configured record source and a function releasing
// its connection.
func openSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (dataset.Source, func(), error) {
	switch cfg.Source {
	case config.SourceSQLite:
		db, err := sqlite.Open(cfg.SQLite.DSN)
		if err != nil {
			return nil, nil, err
		}
		src := sqlite.NewSource(db, logger.Named("sqlite"), &cfg.SQLite.Options)
		for _, name := range dataset.Collections() {
			src.Register(dataset.MustSchema(name))
		}
		return src, func() { _ = db.Close() }, nil
	case config.SourceMongoDB:
		client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create mongo client: %w", err)
		}
		src := mongodb.NewSource(client, cfg.Mongo.Database, logger.Named("mongodb"))
		return src, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return dataset.NewSeedSource(logger.Named("seed")), func() {}, nil
	}
}

func openDashboard(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dashboard.Dashboard, error) {
	src, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	snap, err := dataset.LoadSnapshot(ctx, src)
	if err != nil {
		return nil, err
	}
	engine := cfg.Engine
	return dashboard.New(snap, &dashboard.Options{Logger: logger, Engine: &engine})
}

func viewState() dashboard.ViewState {
	state := dashboard.ViewState{
		Search:  *listSearch,
		Filters: *listFilters,
		Flags:   *listFlags,
		Ranges:  make(map[string]dashboard.RangeState),
	}
	for field, v := range *listMin {
		r := state.Ranges[field]
		r.Min = v
		state.Ranges[field] = r
	}
	for field, v := range *listMax {
		r := state.Ranges[field]
		r.Max = v
		state.Ranges[field] = r
	}
	return state
}

func runList(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	// screens resolve names across collections, so load them all
	d, err := openDashboard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	page, err := d.Query(ctx, *listScreen, viewState())
	if err != nil {
		return err
	}
	if *listJSON {
		return writeJSON(out, page)
	}

	screen, err := d.Screen(*listScreen)
	if err != nil {
		return err
	}
	return writePage(out, d.Engine(), screen, page)
}

func writePage(out io.Writer, engine *query.Engine, screen *dashboard.Screen, page *dashboard.Page) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%d / %d\n", screen.Title, page.MatchedCount, page.Total)
	for _, label := range page.Stats.Labels {
		fmt.Fprintf(w, "%s\t%s\n", label, statText(page.Stats.Get(label)))
	}
	fmt.Fprintln(w)

	columns := append([]string{"id"}, screen.SearchFields...)
	columns = dedupe(append(columns, screen.Ranges...))
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, doc := range page.Items {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			v, ok := engine.Resolve(doc, col)
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, cellText(screen, col, v))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func cellText(screen *dashboard.Screen, field string, v any) string {
	def := screen.Schema.FindField(field)
	switch {
	case def == nil:
	case def.Type == schema.FieldTypeDateTime:
		if t, ok := query.ToTime(v); ok {
			return query.FormatDate(t)
		}
	case def.Type.IsNumeric():
		if f, ok := query.ToFloat64(v); ok {
			return query.FormatNumber(f)
		}
	}
	return fmt.Sprint(v)
}

func statText(v query.AggregateValue) string {
	switch v.Kind {
	case query.AggregateSum:
		return query.FormatNumber(v.Sum)
	case query.AggregateCountBy:
		return groupText(v.Counts, func(n int) string { return fmt.Sprint(n) })
	case query.AggregateSumBy:
		return groupText(v.Sums, query.FormatNumber)
	default:
		return fmt.Sprint(v.Count)
	}
}

func groupText[V any](groups map[string]V, format func(V) string) string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + format(groups[k])
	}
	return strings.Join(parts, " ")
}

func dedupe(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func runOverview(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	d, err := openDashboard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	ov, err := d.Overview(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, ov)
}

func runSeed(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	snap, err := dataset.LoadSnapshot(ctx, dataset.NewSeedSource(logger.Named("seed")))
	if err != nil {
		return err
	}
	if _, err := snap.Validate(); err != nil {
		return err
	}

	src, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	switch s := src.(type) {
	case *sqlite.Source:
		err = s.ImportSnapshot(ctx, snap)
	case *mongodb.Source:
		err = s.ImportSnapshot(ctx, snap)
	default:
		return fmt.Errorf("source %q cannot be seeded, pick sqlite or mongodb", cfg.Source)
	}
	if err != nil {
		return err
	}
	logger.Info("Seeded fixtures", zap.String("source", cfg.Source), zap.Int("collections", len(snap)))
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
