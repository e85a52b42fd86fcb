// Package report delivers risk reports to logs, the host service and
// in-memory collections
package report

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gitlab.com/phishker/phishk"
)

// Collector keeps the latest report per domain along with how many times
// each threat kind was reported for it
type Collector struct {
	lock    sync.RWMutex
	reports map[string]*phishk.Report
	kinds   map[string]map[string]int
}

// NewCollector returns an empty collector
func NewCollector() *Collector {
	return &Collector{
		reports: make(map[string]*phishk.Report),
		kinds:   make(map[string]map[string]int),
	}
}

// Report replaces the latest report for the report's domain
func (c *Collector) Report(report *phishk.Report) {
	if report == nil || report.Data == nil {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	domain := report.Data.Domain
	c.reports[domain] = report

	// threats are cumulative so the latest report carries every kind
	counts := make(map[string]int)
	for _, threat := range report.Data.Threats {
		counts[threat.Kind]++
	}
	c.kinds[domain] = counts
}

// Latest report for domain, nil if none
func (c *Collector) Latest(domain string) *phishk.Report {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.reports[domain]
}

// Kinds returns the number of threats of each kind reported for domain
func (c *Collector) Kinds(domain string) map[string]int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	counts := make(map[string]int, len(c.kinds[domain]))
	for k, v := range c.kinds[domain] {
		counts[k] = v
	}
	return counts
}

// Domains with at least one report, sorted
func (c *Collector) Domains() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	domains := make([]string, 0, len(c.reports))
	for domain := range c.reports {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}

// Print a plain text summary of every domain to writer
func (c *Collector) Print(writer io.Writer) {
	for _, domain := range c.Domains() {
		report := c.Latest(domain)
		fmt.Fprintf(writer, "%s severity=%s score=%d url=%s\n", domain, report.Data.Severity, report.Data.Score, report.Data.URL)
		for _, threat := range report.Data.Threats {
			fmt.Fprintf(writer, "  %-26s %s\n", threat.Kind, threat.Message)
		}
	}
}

// Multi fans every report out to each reporter in order
type Multi []phishk.Reporter

// NewMulti reporter, nil reporters are skipped
func NewMulti(reporters ...phishk.Reporter) Multi {
	m := make(Multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

// Report to every reporter
func (m Multi) Report(report *phishk.Report) {
	for _, r := range m {
		r.Report(report)
	}
}

// Waiter is a reporter that can wait on its pending dispatches
type Waiter interface {
	Wait() bool
}

// Wait on every reporter that dispatches in the background, returns false if
// any of them gave up
func (m Multi) Wait() bool {
	ok := true
	for _, r := range m {
		if w, isWaiter := r.(Waiter); isWaiter {
			ok = w.Wait() && ok
		}
	}
	return ok
}
