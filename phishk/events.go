package phishk

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// ChangeEventType of a live page change
type ChangeEventType int8

const (
	// EvtElementAdded an element was inserted into the document
	EvtElementAdded ChangeEventType = iota + 1
	// EvtInput the user typed into an element
	EvtInput
)

var changeEventNames = map[ChangeEventType]string{
	EvtElementAdded: "element_added",
	EvtInput:        "input",
}

func (e ChangeEventType) String() string {
	if s, ok := changeEventNames[e]; ok {
		return s
	}
	return ""
}

// ChangeEvent delivered by a ChangeSource. Element must belong to the
// document of the page being monitored so ancestors can be resolved.
type ChangeEvent struct {
	Type    ChangeEventType
	Element *goquery.Selection
}

// ChangeHandler is called for every change, in delivery order
type ChangeHandler func(evt *ChangeEvent)

// Subscription to a ChangeSource. After Release returns the handler is never
// called again.
type Subscription interface {
	Release()
}

// ChangeSource delivers DOM mutations and input events for a page
type ChangeSource interface {
	Subscribe(handler ChangeHandler) (Subscription, error)
}

// Settings holds the persistent enable flag
type Settings interface {
	// Enabled reads the flag, callers must treat errors as enabled
	Enabled(ctx context.Context) (bool, error)
	// WatchEnabled calls fn with every new value until ctx is done
	WatchEnabled(ctx context.Context, fn func(enabled bool)) error
}
