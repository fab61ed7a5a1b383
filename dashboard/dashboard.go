package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travelpass/dashboard/core/query"
	"github.com/travelpass/dashboard/core/schema"
	"github.com/travelpass/dashboard/dataset"
	errs "github.com/travelpass/dashboard/errors"
)

// QueryEventType names the lifecycle events of a screen query.
type QueryEventType string

const (
	QueryStart   QueryEventType = "query:start"
	QuerySuccess QueryEventType = "query:success"
	QueryFailed  QueryEventType = "query:failed"
)

// QueryEvent is emitted around every Dashboard.Query call.
type QueryEvent struct {
	Type         QueryEventType `json:"type"`
	Timestamp    int64          `json:"timestamp"`
	Screen       string         `json:"screen"`
	State        ViewState      `json:"state"`
	MatchedCount *int           `json:"matchedCount,omitempty"`
	Total        *int           `json:"total,omitempty"`
	Error        *string        `json:"error,omitempty"`
	Duration     *int64         `json:"duration,omitempty"`
}

// QueryCallback receives query events.
type QueryCallback func(ctx context.Context, event QueryEvent) error

// SubscriptionInfo describes a registered callback.
type SubscriptionInfo struct {
	ID          string         `json:"id"`
	Event       QueryEventType `json:"event"`
	Label       string         `json:"label,omitempty"`
	Unsubscribe func()         `json:"-"`
}

// Options configures a Dashboard.
type Options struct {
	Logger *zap.Logger
	// Clock supplies "now" for time-relative stats such as recent logins.
	Clock  func() time.Time
	Engine *query.EngineOptions
}

// Dashboard serves the list screens and the overview over one snapshot.
type Dashboard struct {
	snapshot dataset.Snapshot
	engine   *query.Engine
	screens  map[string]*Screen
	order    []string
	now      func() time.Time
	logger   *zap.Logger

	bus           *events.TypedEventBus[QueryEvent]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// New builds the dashboard screens over snap.
func New(snap dataset.Snapshot, opts *Options) (*Dashboard, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	bus, err := events.NewTypedEventBus[QueryEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	engine := query.NewEngine(logger.Named("query"), opts.Engine)
	engine.RegisterComputeFunctions(computeFunctions(snap))

	d := &Dashboard{
		snapshot:      snap,
		engine:        engine,
		screens:       make(map[string]*Screen),
		now:           now,
		logger:        logger,
		bus:           bus,
		subscriptions: make(map[string]*SubscriptionInfo),
	}

	flagSets := presetFlags(now)
	for _, s := range presets(now) {
		sc, err := dataset.Schema(s.Collection)
		if err != nil {
			return nil, err
		}
		s.Schema = sc
		s.engine = engine
		set := flagSets[s.Name]
		for name, p := range set {
			engine.RegisterPredicate(s.flagKey(name), p)
		}
		s.Flags = set.names()
		d.screens[s.Name] = s
		d.order = append(d.order, s.Name)
	}

	return d, nil
}

// Engine exposes the query engine the screens share.
func (d *Dashboard) Engine() *query.Engine {
	return d.engine
}

// Screen returns the named screen.
func (d *Dashboard) Screen(name string) (*Screen, error) {
	s, ok := d.screens[name]
	if !ok {
		return nil, errs.E(errs.NotFound, fmt.Sprintf("unknown screen %q", name), nil)
	}
	return s, nil
}

// Screens returns every screen in sidebar order.
func (d *Dashboard) Screens() []*Screen {
	out := make([]*Screen, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.screens[name])
	}
	return out
}

func (d *Dashboard) records(collection string) ([]schema.Document, error) {
	docs, ok := d.snapshot[collection]
	if !ok {
		return nil, errs.E(errs.NotFound, fmt.Sprintf("collection %q is not loaded", collection), nil)
	}
	return docs, nil
}

// Query runs a screen against the snapshot, emitting start, success and
// failed events.
func (d *Dashboard) Query(ctx context.Context, name string, state ViewState) (*Page, error) {
	start := time.Now()
	d.emit(QueryEvent{Type: QueryStart, Timestamp: start.UnixMilli(), Screen: name, State: state})

	page, err := d.query(ctx, name, state)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		msg := err.Error()
		d.emit(QueryEvent{
			Type: QueryFailed, Timestamp: time.Now().UnixMilli(), Screen: name, State: state,
			Error: &msg, Duration: &duration,
		})
		d.logger.Debug("Screen query failed", zap.String("screen", name), zap.Error(err))
		return nil, err
	}

	d.emit(QueryEvent{
		Type: QuerySuccess, Timestamp: time.Now().UnixMilli(), Screen: name, State: state,
		MatchedCount: &page.MatchedCount, Total: &page.Total, Duration: &duration,
	})
	d.logger.Debug("Screen query",
		zap.String("screen", name),
		zap.Int("matched", page.MatchedCount),
		zap.Int("total", page.Total))
	return page, nil
}

func (d *Dashboard) query(ctx context.Context, name string, state ViewState) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := d.Screen(name)
	if err != nil {
		return nil, err
	}
	records, err := d.records(s.Collection)
	if err != nil {
		return nil, err
	}
	return s.Query(records, state)
}

func (d *Dashboard) emit(event QueryEvent) {
	if d.bus != nil {
		d.bus.Emit(string(event.Type), event)
	}
}

// Subscribe registers a callback for one query event type and returns the
// subscription id.
func (d *Dashboard) Subscribe(event QueryEventType, label string, callback QueryCallback) string {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	unsubscribe := d.bus.Subscribe(string(event), callback)
	id := uuid.New().String()
	d.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       event,
		Label:       label,
		Unsubscribe: unsubscribe,
	}
	return id
}

// Unsubscribe removes a subscription by its id.
func (d *Dashboard) Unsubscribe(id string) {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	if info, ok := d.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(d.subscriptions, id)
	}
}

// Subscriptions lists the active subscriptions.
func (d *Dashboard) Subscriptions() []SubscriptionInfo {
	d.subMu.RLock()
	defer d.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(d.subscriptions))
	for _, sub := range d.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
