package phishk

// Severity of the cumulative risk for a page
type Severity int8

const (
	// SeverityNone nothing found, never reported
	SeverityNone Severity = iota
	// SeverityLow at least one threat
	SeverityLow
	// SeverityMedium score in [30, 50)
	SeverityMedium
	// SeverityHigh score of 50 or more
	SeverityHigh
)

const (
	highThreshold   = 50
	mediumThreshold = 30
)

var severityNames = map[Severity]string{
	SeverityNone:   "none",
	SeverityLow:    "low",
	SeverityMedium: "medium",
	SeverityHigh:   "high",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "none"
}

// Reportable returns true for low, medium and high
func (s Severity) Reportable() bool {
	return s > SeverityNone
}

// Classify a cumulative score. Boundaries are inclusive at 30 and 50.
func Classify(score int) Severity {
	switch {
	case score >= highThreshold:
		return SeverityHigh
	case score >= mediumThreshold:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	}
	return SeverityNone
}
