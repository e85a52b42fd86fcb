package browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"gitlab.com/phishker/phishk"
)

// elementIDAttr tags elements reported by the page observer
const elementIDAttr = "data-phishker-id"

// observerScript records added elements and input targets in page order.
// Installing it twice is a no-op.
const observerScript = `(function () {
  if (window.__phishker) { return true; }
  var state = { seq: 0, events: [] };
  window.__phishker = state;
  function tag(el) {
    if (!el.hasAttribute('` + elementIDAttr + `')) {
      el.setAttribute('` + elementIDAttr + `', String(++state.seq));
    }
    return Number(el.getAttribute('` + elementIDAttr + `'));
  }
  new MutationObserver(function (mutations) {
    mutations.forEach(function (m) {
      m.addedNodes.forEach(function (n) {
        if (n.nodeType === 1) { state.events.push({ type: 'added', id: tag(n) }); }
      });
    });
  }).observe(document.body, { childList: true, subtree: true });
  document.addEventListener('input', function (e) {
    if (e.target && e.target.nodeType === 1) { state.events.push({ type: 'input', id: tag(e.target) }); }
  }, true);
  return true;
})()`

// drainScript returns and clears the queued observer events as json
const drainScript = `JSON.stringify(window.__phishker ? window.__phishker.events.splice(0) : [])`

type observedEvent struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

func decodeEvents(raw interface{}) ([]observedEvent, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errors.Errorf("unexpected observer result type %T", raw)
	}

	events := make([]observedEvent, 0)
	if err := json.Unmarshal([]byte(s), &events); err != nil {
		return nil, errors.Wrap(err, "decoding observer events")
	}
	return events, nil
}

// resolveEvents maps observed events onto elements of doc. Events whose
// element is no longer in the document are dropped.
func resolveEvents(doc *goquery.Document, events []observedEvent) []*phishk.ChangeEvent {
	changes := make([]*phishk.ChangeEvent, 0, len(events))
	for _, evt := range events {
		var evtType phishk.ChangeEventType
		switch strings.ToLower(evt.Type) {
		case "added":
			evtType = phishk.EvtElementAdded
		case "input":
			evtType = phishk.EvtInput
		default:
			continue
		}

		el := doc.Find(fmt.Sprintf(`[%s="%d"]`, elementIDAttr, evt.ID)).First()
		if el.Length() == 0 {
			continue
		}
		changes = append(changes, &phishk.ChangeEvent{Type: evtType, Element: el})
	}
	return changes
}
