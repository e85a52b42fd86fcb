package scanner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/inspector"
	"gitlab.com/phishker/scanner/monitor"
	"gitlab.com/phishker/scanner/page"
	"gitlab.com/phishker/scanner/report"
)

// ErrNoPage returned when starting before a page was loaded
var ErrNoPage = errors.New("no page loaded")

// Snapshotter is a change source that can serialize its current document.
// Detection re-enabled on such a source inspects the page as it is now
// instead of as it was loaded.
type Snapshotter interface {
	Snapshot() (*page.Context, error)
}

// Engine runs detection for one page at a time. Load, Start and Run must be
// called from the same goroutine, every RiskState write happens on it.
type Engine struct {
	cfg       *phishk.Config
	settings  phishk.Settings
	reporter  phishk.Reporter
	inspector *inspector.Inspector

	page    *page.Context
	risk    *phishk.RiskState
	monitor *monitor.Monitor
	enabled bool
}

// Option configures an Engine
type Option func(e *Engine)

// WithInspector overrides the default inspector
func WithInspector(insp *inspector.Inspector) Option {
	return func(e *Engine) {
		e.inspector = insp
	}
}

// New engine, a nil reporter logs reports
func New(cfg *phishk.Config, settings phishk.Settings, reporter phishk.Reporter, opts ...Option) *Engine {
	if reporter == nil {
		reporter = report.NewLogReporter()
	}
	e := &Engine{
		cfg:       cfg,
		settings:  settings,
		reporter:  reporter,
		inspector: inspector.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetReporter overrides the reporter
func (e *Engine) SetReporter(reporter phishk.Reporter) *Engine {
	e.reporter = reporter
	return e
}

// Load starts a new page lifetime. Any running monitor is stopped and the
// page gets a fresh RiskState.
func (e *Engine) Load(pg *page.Context) {
	e.stopMonitor()
	e.page = pg
	e.risk = phishk.NewRiskState(pg.Href, pg.Hostname)
	log.Info().Str("session", e.risk.ID).Str("url", pg.Href).Msg("page loaded")
}

// Risk state of the current page
func (e *Engine) Risk() *phishk.RiskState {
	return e.risk
}

// Enabled returns the last known value of the enable flag
func (e *Engine) Enabled() bool {
	return e.enabled
}

// MonitorState of the current monitor, Idle when none was started
func (e *Engine) MonitorState() monitor.State {
	if e.monitor == nil {
		return monitor.Idle
	}
	return e.monitor.State()
}

// Start reads the enable flag and, when enabled, runs a full pass and
// watches src for changes. A nil src only runs the full pass. Failing to
// read the flag is treated as enabled.
func (e *Engine) Start(ctx context.Context, src phishk.ChangeSource) error {
	if e.page == nil {
		return ErrNoPage
	}

	enabled, err := e.settings.Enabled(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read enabled flag, detection stays enabled")
		enabled = true
	}
	e.enabled = enabled

	if !enabled {
		log.Info().Str("session", e.risk.ID).Msg("detection disabled")
		return nil
	}
	return e.startDetection(src)
}

func (e *Engine) startDetection(src phishk.ChangeSource) error {
	mark := e.risk.Mark()
	e.inspector.FullPass(e.page, e.risk)
	if r := e.risk.Evaluate(mark); r != nil {
		e.reporter.Report(r)
	}

	if src == nil {
		return nil
	}

	e.stopMonitor()
	e.monitor = monitor.New(e.page, e.risk, e.inspector, e.reporter)
	return errors.Wrap(e.monitor.Watch(src), "starting monitor")
}

func (e *Engine) stopMonitor() {
	if e.monitor != nil {
		e.monitor.Stop()
	}
}

// Run starts detection and then processes change events and enable flag
// changes on the calling goroutine until ctx is done
func (e *Engine) Run(ctx context.Context, src phishk.ChangeSource) error {
	if e.page == nil {
		return ErrNoPage
	}

	var fwd *forwarder
	if src != nil {
		fwd = newForwarder(ctx, src)
	}

	toggles := make(chan bool, 8)
	err := e.settings.WatchEnabled(ctx, func(enabled bool) {
		select {
		case toggles <- enabled:
		case <-ctx.Done():
		}
	})
	if err != nil {
		log.Warn().Err(err).Msg("unable to watch enabled flag")
	}

	if err := e.startWith(ctx, fwd); err != nil {
		return err
	}
	defer e.stopMonitor()

	var events <-chan queuedEvent
	if fwd != nil {
		events = fwd.events
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("session", e.risk.ID).Msg("engine stopped due to context complete")
			return nil
		case q := <-events:
			q.handler(q.evt)
		case enabled := <-toggles:
			if err := e.toggle(enabled, fwd); err != nil {
				log.Error().Err(err).Msg("failed to restart detection")
			}
		}
	}
}

// startWith keeps a nil forwarder from becoming a non nil interface
func (e *Engine) startWith(ctx context.Context, fwd *forwarder) error {
	if fwd == nil {
		return e.Start(ctx, nil)
	}
	return e.Start(ctx, fwd)
}

func (e *Engine) toggle(enabled bool, fwd *forwarder) error {
	if enabled == e.enabled {
		return nil
	}
	e.enabled = enabled

	if !enabled {
		log.Info().Str("session", e.risk.ID).Msg("detection disabled, stopping monitor")
		e.stopMonitor()
		return nil
	}

	log.Info().Str("session", e.risk.ID).Msg("detection enabled, running full pass")
	if fwd == nil {
		return e.startDetection(nil)
	}
	e.refresh(fwd.src)
	return e.startDetection(fwd)
}

// refresh replaces the page with a current snapshot of src when it has one,
// the risk state is kept
func (e *Engine) refresh(src phishk.ChangeSource) {
	snap, ok := src.(Snapshotter)
	if !ok {
		return
	}
	pg, err := snap.Snapshot()
	if err != nil {
		log.Warn().Err(err).Str("session", e.risk.ID).Msg("failed to snapshot page, inspecting the last known document")
		return
	}
	e.page = pg
}

type queuedEvent struct {
	handler phishk.ChangeHandler
	evt     *phishk.ChangeEvent
}

// forwarder moves change events from the source's goroutine onto the engine
// goroutine, preserving arrival order
type forwarder struct {
	ctx    context.Context
	src    phishk.ChangeSource
	events chan queuedEvent
}

func newForwarder(ctx context.Context, src phishk.ChangeSource) *forwarder {
	return &forwarder{ctx: ctx, src: src, events: make(chan queuedEvent, 64)}
}

func (f *forwarder) Subscribe(handler phishk.ChangeHandler) (phishk.Subscription, error) {
	return f.src.Subscribe(func(evt *phishk.ChangeEvent) {
		select {
		case f.events <- queuedEvent{handler: handler, evt: evt}:
		case <-f.ctx.Done():
		}
	})
}
