// Package browser drives chrome over the devtools protocol to inspect pages
// as they are rendered and mutated
package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"

	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/page"
)

var (
	// ErrNavigating returned when chrome reports a navigation error
	ErrNavigating = errors.New("error navigating")
	// ErrNavigationTimedOut returned when the load event never fires
	ErrNavigationTimedOut = errors.New("navigation timed out")
	// ErrPageClosed returned when using a closed page
	ErrPageClosed = errors.New("page closed")
)

// LivePage is a chrome tab whose DOM mutations and input events are
// delivered as change events
type LivePage struct {
	leaser       Leaser
	port         string
	browser      *gcd.Gcd
	t            *gcd.ChromeTarget
	pollInterval time.Duration
	loadTimeout  time.Duration

	lock     sync.Mutex
	handlers map[int]phishk.ChangeHandler
	nextID   int

	navigationCh chan struct{}
	exitCh       chan struct{}
	closeOnce    sync.Once
}

// NewLivePage starts chrome and opens a tab
func NewLivePage(cfg *phishk.BrowserConfig, leaser Leaser) (*LivePage, error) {
	b, port, err := leaser.Acquire()
	if err != nil {
		return nil, err
	}

	target, err := b.NewTab()
	if err != nil {
		leaser.Return(port)
		return nil, errors.Wrap(err, "opening tab")
	}

	p := &LivePage{
		leaser:       leaser,
		port:         port,
		browser:      b,
		t:            target,
		pollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		loadTimeout:  time.Duration(cfg.LoadTimeoutMS) * time.Millisecond,
		handlers:     make(map[int]phishk.ChangeHandler),
		navigationCh: make(chan struct{}, 1),
		exitCh:       make(chan struct{}),
	}
	if p.pollInterval <= 0 {
		p.pollInterval = 250 * time.Millisecond
	}
	if p.loadTimeout <= 0 {
		p.loadTimeout = 30 * time.Second
	}
	p.subscribeBrowserEvents()
	return p, nil
}

func (p *LivePage) subscribeBrowserEvents() {
	p.t.DOM.Enable()
	p.t.Page.Enable()

	p.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		select {
		case p.navigationCh <- struct{}{}:
		default:
		}
	})

	p.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		log.Warn().Str("payload", string(payload)).Msg("tab detached")
	})
}

// Navigate loads url, installs the change observer and returns a snapshot
// of the rendered page
func (p *LivePage) Navigate(ctx context.Context, url string) (*page.Context, error) {
	if p.closed() {
		return nil, ErrPageClosed
	}

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := p.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return nil, errors.Wrap(err, "navigating")
	}
	if errText != "" {
		return nil, errors.Wrap(ErrNavigating, errText)
	}

	select {
	case <-p.navigationCh:
	case <-time.After(p.loadTimeout):
		return nil, ErrNavigationTimedOut
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.exitCh:
		return nil, ErrPageClosed
	}

	if _, err := p.evaluate(observerScript); err != nil {
		return nil, errors.Wrap(err, "installing observer")
	}

	return p.Snapshot()
}

// Snapshot serializes the current DOM into a page context
func (p *LivePage) Snapshot() (*page.Context, error) {
	source, err := p.serializeDOM()
	if err != nil {
		return nil, err
	}
	return page.ParseString(p.currentURL(), source)
}

// Subscribe to change events, implements phishk.ChangeSource. Events are
// delivered from the poll goroutine in page order.
func (p *LivePage) Subscribe(handler phishk.ChangeHandler) (phishk.Subscription, error) {
	if p.closed() {
		return nil, ErrPageClosed
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.nextID++
	p.handlers[p.nextID] = handler
	return &liveSubscription{page: p, id: p.nextID}, nil
}

type liveSubscription struct {
	page *LivePage
	id   int
}

func (s *liveSubscription) Release() {
	s.page.lock.Lock()
	defer s.page.lock.Unlock()
	delete(s.page.handlers, s.id)
}

// Poll collects observer events every poll interval until ctx is done or the
// page is closed
func (p *LivePage) Poll(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.exitCh:
			return
		case <-ticker.C:
			if err := p.pollOnce(); err != nil {
				log.Warn().Err(err).Msg("failed to collect page changes")
			}
		}
	}
}

func (p *LivePage) pollOnce() error {
	raw, err := p.evaluate(drainScript)
	if err != nil {
		return err
	}

	events, err := decodeEvents(raw)
	if err != nil || len(events) == 0 {
		return err
	}

	snapshot, err := p.Snapshot()
	if err != nil {
		return err
	}

	changes := resolveEvents(snapshot.Doc, events)
	log.Debug().Int("observed", len(events)).Int("resolved", len(changes)).Msg("page changes")

	p.lock.Lock()
	handlers := make([]phishk.ChangeHandler, 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.lock.Unlock()

	for _, change := range changes {
		for _, h := range handlers {
			h(change)
		}
	}
	return nil
}

// evaluate a script in the global context and return its value
func (p *LivePage) evaluate(script string) (interface{}, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:    script,
		ObjectGroup:   "phishker",
		Silent:        true,
		ReturnByValue: true,
		Timeout:       1000,
	}
	r, exp, err := p.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return nil, errors.Wrap(err, "evaluating script")
	}
	if exp != nil {
		return nil, errors.Errorf("script exception: %s", exp.Text)
	}
	return r.Value, nil
}

func (p *LivePage) serializeDOM() (string, error) {
	node, err := p.t.DOM.GetDocument(-1, true)
	if err != nil {
		return "", errors.Wrap(err, "getting document")
	}
	html, err := p.t.DOM.GetOuterHTMLWithParams(&gcdapi.DOMGetOuterHTMLParams{
		NodeId: node.NodeId,
	})
	return html, errors.Wrap(err, "getting outer html")
}

// currentURL by looking at the navigation history
func (p *LivePage) currentURL() string {
	current, entries, err := p.t.Page.GetNavigationHistory()
	if err != nil || current < 0 || current >= len(entries) {
		return ""
	}
	return strings.TrimSpace(entries[current].Url)
}

func (p *LivePage) closed() bool {
	select {
	case <-p.exitCh:
		return true
	default:
		return false
	}
}

// Close the tab and stop chrome
func (p *LivePage) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.exitCh)
		err = p.leaser.Return(p.port)
	})
	return err
}
