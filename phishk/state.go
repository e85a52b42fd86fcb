package phishk

import (
	uuid "github.com/satori/go.uuid"
)

// RiskState accumulates threats for a single page load. It is owned by
// exactly one engine and is not safe for concurrent writers.
type RiskState struct {
	ID       string
	URL      string
	Domain   string
	threats  []Threat
	score    int
	reported Severity
}

// NewRiskState for the page at url with hostname domain
func NewRiskState(url, domain string) *RiskState {
	return &RiskState{
		ID:      uuid.NewV4().String(),
		URL:     url,
		Domain:  domain,
		threats: make([]Threat, 0),
	}
}

// AddThreat appends the threat and adds its weight. Identical threats are
// never merged.
func (r *RiskState) AddThreat(threat Threat) {
	r.threats = append(r.threats, threat)
	r.score += threat.Kind.Weight()
}

// Score is the sum of the weights of every threat added so far
func (r *RiskState) Score() int {
	return r.score
}

// Len number of threats recorded
func (r *RiskState) Len() int {
	return len(r.threats)
}

// Severity derived from the current score
func (r *RiskState) Severity() Severity {
	return Classify(r.score)
}

// Mark returns the position to pass to Evaluate once a pass has run
func (r *RiskState) Mark() int {
	return len(r.threats)
}

// Threats returns a copy of the threats in the order they were found
func (r *RiskState) Threats() []Threat {
	threats := make([]Threat, len(r.threats))
	copy(threats, r.threats)
	return threats
}

// Evaluate the state after a pass that started at mark. Returns a report
// when the severity is reportable and either the pass recorded a threat or
// the severity moved since the last report, otherwise nil.
func (r *RiskState) Evaluate(mark int) *Report {
	severity := r.Severity()
	if !severity.Reportable() {
		return nil
	}

	if len(r.threats) <= mark && severity == r.reported {
		return nil
	}
	r.reported = severity
	return r.Snapshot()
}

// Snapshot the full state as a report
func (r *RiskState) Snapshot() *Report {
	threats := make([]ReportThreat, len(r.threats))
	for i, t := range r.threats {
		threats[i] = ReportThreat{Kind: t.Kind.String(), Message: t.Message}
	}

	return &Report{
		Action: ReportAction,
		Data: &ReportData{
			Severity: r.Severity().String(),
			Score:    r.score,
			Threats:  threats,
			URL:      r.URL,
			Domain:   r.Domain,
		},
	}
}
