// Package monitor re-runs targeted checks as a page changes after load
package monitor

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/inspector"
	"gitlab.com/phishker/scanner/page"
)

// State of a Monitor
type State int8

// revive:disable:var-naming
const (
	Idle State = iota
	Watching
	Stopped
)

// revive:enable:var-naming

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Watching:
		return "watching"
	case Stopped:
		return "stopped"
	}
	return ""
}

// ErrNotIdle returned when Watch is called more than once
var ErrNotIdle = errors.New("monitor is not idle")

// Monitor watches one page for the lifetime of one subscription. A stopped
// monitor is never restarted, callers build a new one.
type Monitor struct {
	lock      sync.Mutex
	state     State
	sub       phishk.Subscription
	page      *page.Context
	risk      *phishk.RiskState
	inspector *inspector.Inspector
	reporter  phishk.Reporter
}

// New monitor for pg that appends to risk and reports through reporter
func New(pg *page.Context, risk *phishk.RiskState, insp *inspector.Inspector, reporter phishk.Reporter) *Monitor {
	return &Monitor{
		state:     Idle,
		page:      pg,
		risk:      risk,
		inspector: insp,
		reporter:  reporter,
	}
}

// State of the monitor
func (m *Monitor) State() State {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.state
}

// Watch subscribes Handle to src and moves to Watching
func (m *Monitor) Watch(src phishk.ChangeSource) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.state != Idle {
		return ErrNotIdle
	}

	sub, err := src.Subscribe(m.Handle)
	if err != nil {
		return errors.Wrap(err, "subscribing to page changes")
	}
	m.sub = sub
	m.state = Watching
	log.Debug().Str("session", m.risk.ID).Msg("monitor watching")
	return nil
}

// Stop releases the subscription. Safe to call more than once or before
// Watch.
func (m *Monitor) Stop() {
	m.lock.Lock()
	sub := m.sub
	m.sub = nil
	m.state = Stopped
	m.lock.Unlock()

	if sub != nil {
		sub.Release()
		log.Debug().Str("session", m.risk.ID).Msg("monitor stopped")
	}
}

// Handle a single change event as one pass. Events arriving while not
// Watching are dropped.
func (m *Monitor) Handle(evt *phishk.ChangeEvent) {
	if evt == nil || evt.Element == nil || evt.Element.Length() == 0 {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.state != Watching {
		return
	}

	el := evt.Element.First()
	// sources that re-serialize the page deliver elements of a newer document
	m.page = m.page.ForElement(el)

	mark := m.risk.Mark()
	if !m.dispatch(evt.Type, el) {
		return
	}

	if report := m.risk.Evaluate(mark); report != nil {
		m.reporter.Report(report)
	}
}

// dispatch runs the check for the event, returns false if it was not relevant
func (m *Monitor) dispatch(evtType phishk.ChangeEventType, el *goquery.Selection) bool {
	switch evtType {
	case phishk.EvtElementAdded:
		switch phishk.ElementTypeOf(goquery.NodeName(el)) {
		case phishk.FORM:
			m.inspector.CheckForm(m.page, el, m.risk)
		case phishk.INPUT:
			m.inspector.CheckInputSecurity(m.page, el, m.risk)
		case phishk.A:
			m.inspector.CheckLink(m.page, el, m.risk)
		default:
			return false
		}
	case phishk.EvtInput:
		if !inspector.IsSensitiveInput(el) {
			return false
		}
		m.inspector.CheckInputSecurity(m.page, el, m.risk)
	default:
		return false
	}
	return true
}
