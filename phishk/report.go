package phishk

// ReportAction sent to the host for every report
const ReportAction = "threatDetected"

// ReportThreat is the wire form of a Threat
type ReportThreat struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ReportData details of the current risk state of a page
type ReportData struct {
	Severity string         `json:"severity"`
	Score    int            `json:"score"`
	Threats  []ReportThreat `json:"threats"`
	URL      string         `json:"url"`
	Domain   string         `json:"domain"`
}

// Report message delivered to the host
type Report struct {
	Action string      `json:"action"`
	Data   *ReportData `json:"data"`
}

// Reporter receives reports. Implementations must not block the caller
// and do not acknowledge delivery.
type Reporter interface {
	Report(report *Report)
}
