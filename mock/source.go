package mock

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/page"
)

// ChangeSource lets tests emit change events by hand
type ChangeSource struct {
	lock     sync.Mutex
	handlers map[int]phishk.ChangeHandler
	next     int
	released int

	SubscribeFn     func(handler phishk.ChangeHandler) (phishk.Subscription, error)
	SubscribeCalled int
}

type subscription struct {
	src *ChangeSource
	id  int
}

func (s *subscription) Release() {
	s.src.lock.Lock()
	defer s.src.lock.Unlock()
	if _, ok := s.src.handlers[s.id]; ok {
		delete(s.src.handlers, s.id)
		s.src.released++
	}
}

// Subscribe calls SubscribeFn
func (c *ChangeSource) Subscribe(handler phishk.ChangeHandler) (phishk.Subscription, error) {
	c.lock.Lock()
	c.SubscribeCalled++
	c.lock.Unlock()
	return c.SubscribeFn(handler)
}

// Emit delivers evt to every live subscriber
func (c *ChangeSource) Emit(evt *phishk.ChangeEvent) {
	c.lock.Lock()
	handlers := make([]phishk.ChangeHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.lock.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}

// Added emits an element added event for sel
func (c *ChangeSource) Added(sel *goquery.Selection) {
	c.Emit(&phishk.ChangeEvent{Type: phishk.EvtElementAdded, Element: sel})
}

// Input emits an input event for sel
func (c *ChangeSource) Input(sel *goquery.Selection) {
	c.Emit(&phishk.ChangeEvent{Type: phishk.EvtInput, Element: sel})
}

// Live number of subscriptions not yet released
func (c *ChangeSource) Live() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.handlers)
}

// Released number of subscriptions released
func (c *ChangeSource) Released() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.released
}

// MakeMockChangeSource that keeps subscribers until they are released
func MakeMockChangeSource() *ChangeSource {
	c := &ChangeSource{handlers: make(map[int]phishk.ChangeHandler)}
	c.SubscribeFn = func(handler phishk.ChangeHandler) (phishk.Subscription, error) {
		c.lock.Lock()
		defer c.lock.Unlock()
		c.next++
		c.handlers[c.next] = handler
		return &subscription{src: c, id: c.next}, nil
	}
	return c
}

// SnapshotSource is a ChangeSource that also serializes its current page
type SnapshotSource struct {
	*ChangeSource

	lock           sync.Mutex
	SnapshotFn     func() (*page.Context, error)
	SnapshotCalled int
}

// Snapshot calls SnapshotFn
func (s *SnapshotSource) Snapshot() (*page.Context, error) {
	s.lock.Lock()
	s.SnapshotCalled++
	s.lock.Unlock()
	return s.SnapshotFn()
}

// Snapshots number of times Snapshot was called
func (s *SnapshotSource) Snapshots() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.SnapshotCalled
}

// MakeMockSnapshotSource returning pg from every Snapshot
func MakeMockSnapshotSource(pg *page.Context) *SnapshotSource {
	s := &SnapshotSource{ChangeSource: MakeMockChangeSource()}
	s.SnapshotFn = func() (*page.Context, error) {
		return pg, nil
	}
	return s
}

// AppendHTML appends fragment to the first element matching selector and
// returns the new top level elements
func AppendHTML(doc *goquery.Document, selector, fragment string) *goquery.Selection {
	parent := doc.Find(selector).First()
	before := parent.Children().Length()
	parent.AppendHtml(fragment)
	return parent.Children().Slice(before, goquery.ToEnd)
}
