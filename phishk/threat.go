package phishk

// ThreatKind of a finding produced by a page check
type ThreatKind int8

// revive:disable:var-naming
const (
	SuspiciousDomainThreat ThreatKind = iota + 1
	TyposquattingThreat
	NoSSLThreat
	InsecureFormThreat
	SuspiciousFormThreat
	HiddenElementThreat
	BrandMisuseThreat
	SuspiciousLinkThreat
	IframeDetectedThreat
	SuspiciousPasswordFieldThreat
	InsecureInputThreat
)

// revive:enable:var-naming

var threatKindNames = map[ThreatKind]string{
	SuspiciousDomainThreat:        "suspicious_domain",
	TyposquattingThreat:           "typosquatting",
	NoSSLThreat:                   "no_ssl",
	InsecureFormThreat:            "insecure_form",
	SuspiciousFormThreat:          "suspicious_form",
	HiddenElementThreat:           "hidden_element",
	BrandMisuseThreat:             "brand_misuse",
	SuspiciousLinkThreat:          "suspicious_link",
	IframeDetectedThreat:          "iframe_detected",
	SuspiciousPasswordFieldThreat: "suspicious_password_field",
	InsecureInputThreat:           "insecure_input",
}

func (k ThreatKind) String() string {
	if s, ok := threatKindNames[k]; ok {
		return s
	}
	return ""
}

// Weight this kind contributes to the cumulative score
func (k ThreatKind) Weight() int {
	if k == IframeDetectedThreat {
		return IframeWeight
	}
	if factor, ok := kindFactors[k]; ok {
		return int(factor)
	}
	return 0
}

// ParseThreatKind from its wire name, returns false if unknown
func ParseThreatKind(name string) (ThreatKind, bool) {
	for k, v := range threatKindNames {
		if v == name {
			return k, true
		}
	}
	return 0, false
}

// RiskFactor named weight
type RiskFactor int

// Risk factor table, process wide and read only
const (
	SuspiciousDomain   RiskFactor = 30
	InsecureForm       RiskFactor = 25
	NoSSL              RiskFactor = 20
	SuspiciousRedirect RiskFactor = 15
	HiddenElement      RiskFactor = 10
	BrandMismatch      RiskFactor = 10
	SuspiciousInput    RiskFactor = 5
)

// IframeWeight is fixed and not part of the named factor table
const IframeWeight = 5

var kindFactors = map[ThreatKind]RiskFactor{
	SuspiciousDomainThreat:        SuspiciousDomain,
	TyposquattingThreat:           SuspiciousDomain,
	NoSSLThreat:                   NoSSL,
	InsecureFormThreat:            InsecureForm,
	SuspiciousFormThreat:          SuspiciousInput,
	HiddenElementThreat:           HiddenElement,
	BrandMisuseThreat:             BrandMismatch,
	SuspiciousLinkThreat:          SuspiciousRedirect,
	SuspiciousPasswordFieldThreat: SuspiciousInput,
	InsecureInputThreat:           InsecureForm,
}

// Threat found on a page. Treat as immutable once created.
type Threat struct {
	Kind    ThreatKind
	Message string
}

// NewThreat of kind with a message
func NewThreat(kind ThreatKind, message string) Threat {
	return Threat{Kind: kind, Message: message}
}
