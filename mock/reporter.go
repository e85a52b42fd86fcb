package mock

import (
	"sync"

	"gitlab.com/phishker/phishk"
)

// Reporter records every report it receives
type Reporter struct {
	lock    sync.Mutex
	reports []*phishk.Report

	ReportFn     func(report *phishk.Report)
	ReportCalled bool
}

// Report records the report and calls ReportFn if set
func (r *Reporter) Report(report *phishk.Report) {
	r.lock.Lock()
	r.ReportCalled = true
	r.reports = append(r.reports, report)
	fn := r.ReportFn
	r.lock.Unlock()

	if fn != nil {
		fn(report)
	}
}

// Reports returns a copy of the recorded reports
func (r *Reporter) Reports() []*phishk.Report {
	r.lock.Lock()
	defer r.lock.Unlock()
	reports := make([]*phishk.Report, len(r.reports))
	copy(reports, r.reports)
	return reports
}

// Last report or nil
func (r *Reporter) Last() *phishk.Report {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.reports) == 0 {
		return nil
	}
	return r.reports[len(r.reports)-1]
}

// MakeMockReporter that only records
func MakeMockReporter() *Reporter {
	return &Reporter{}
}
