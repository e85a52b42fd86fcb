package report

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/phishker/phishk"
)

// LogReporter writes every report as a structured log event
type LogReporter struct {
	logger *zerolog.Logger
}

// NewLogReporter writing to the global logger
func NewLogReporter() *LogReporter {
	return &LogReporter{logger: &log.Logger}
}

// NewLogReporterWith writes to logger
func NewLogReporterWith(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: &logger}
}

// Report logs the severity, score and threat kinds. High risk pages are
// logged at warn.
func (l *LogReporter) Report(report *phishk.Report) {
	if report == nil || report.Data == nil {
		return
	}

	evt := l.logger.Info()
	if report.Data.Severity == phishk.SeverityHigh.String() {
		evt = l.logger.Warn()
	}

	kinds := make([]string, len(report.Data.Threats))
	for i, threat := range report.Data.Threats {
		kinds[i] = threat.Kind
	}

	evt.Str("action", report.Action).
		Str("severity", report.Data.Severity).
		Int("score", report.Data.Score).
		Str("domain", report.Data.Domain).
		Str("url", report.Data.URL).
		Strs("threats", kinds).
		Msg("phishing risk detected")
}
