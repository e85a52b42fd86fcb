package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/phishker/phishk"
)

// ErrUnexpectedStatus returned when the host does not accept a report
var ErrUnexpectedStatus = errors.New("unexpected status from report endpoint")

// HTTPReporter posts reports to the host threat endpoint. Every report is sent
// from its own goroutine, failures are logged and dropped.
type HTTPReporter struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	sent     chan error
	inflight sync.WaitGroup
}

// HTTPOption configures an HTTPReporter
type HTTPOption func(h *HTTPReporter)

// WithClient uses client for dispatch
func WithClient(client *http.Client) HTTPOption {
	return func(h *HTTPReporter) {
		h.client = client
	}
}

// WithResults delivers the outcome of every dispatch to results, used to
// wait on delivery in tests
func WithResults(results chan error) HTTPOption {
	return func(h *HTTPReporter) {
		h.sent = results
	}
}

// NewHTTPReporter sending to endpoint, each dispatch bounded by timeout
func NewHTTPReporter(endpoint string, timeout time.Duration, opts ...HTTPOption) *HTTPReporter {
	h := &HTTPReporter{
		endpoint: endpoint,
		timeout:  timeout,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Report dispatches without blocking the caller
func (h *HTTPReporter) Report(report *phishk.Report) {
	if report == nil {
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode report")
		h.done(err)
		return
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		err := h.send(body)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", h.endpoint).Msg("report dropped")
		}
		h.done(err)
	}()
}

// Wait for reports already dispatched, for at most the dispatch timeout.
// Returns false if some were still in flight.
func (h *HTTPReporter) Wait() bool {
	finished := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return true
	case <-time.After(h.timeout):
		log.Warn().Str("endpoint", h.endpoint).Msg("reports still in flight")
		return false
	}
}

func (h *HTTPReporter) done(err error) {
	if h.sent != nil {
		h.sent <- err
	}
}

func (h *HTTPReporter) send(body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building report request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending report")
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrUnexpectedStatus, "status %d", resp.StatusCode)
	}
	return nil
}
