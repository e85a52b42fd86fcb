package host

import (
	"net/url"
	"strings"

	"gitlab.com/phishker/scanner/page"
	"gitlab.com/phishker/scanner/pattern"
)

// Status of a domain check
type Status string

// Domain check statuses
const (
	StatusBlocked    Status = "blocked"
	StatusTrusted    Status = "trusted"
	StatusSuspicious Status = "suspicious"
	StatusUnknown    Status = "unknown"
)

var statusMessages = map[Status]string{
	StatusBlocked:    "Domain is blacklisted",
	StatusTrusted:    "Domain is trusted",
	StatusSuspicious: "Potential phishing site detected",
	StatusUnknown:    "No immediate threats detected",
}

// CheckResult returned for a domain check
type CheckResult struct {
	Domain  string `json:"domain"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// ExtractDomain returns the hostname of uri without a leading www. Values
// that do not parse as a URL with a host are returned as given.
func ExtractDomain(uri string) string {
	trimmed := strings.TrimSpace(uri)
	candidate := trimmed
	if strings.HasPrefix(candidate, "//") {
		candidate = "http:" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return trimmed
	}
	return strings.TrimPrefix(page.NormalizeHost(u.Hostname()), "www.")
}

// DomainChecker classifies domains against the block and trust lists and
// the brand lookalike patterns
type DomainChecker struct {
	matcher *pattern.Matcher
	lists   map[Status]map[string]struct{}
}

// NewDomainChecker with empty lists
func NewDomainChecker(matcher *pattern.Matcher) *DomainChecker {
	return &DomainChecker{
		matcher: matcher,
		lists: map[Status]map[string]struct{}{
			StatusBlocked: make(map[string]struct{}),
			StatusTrusted: make(map[string]struct{}),
		},
	}
}

// AddDomains to the list for status, only blocked and trusted are kept
func (c *DomainChecker) AddDomains(inputs []string, status Status) {
	set, ok := c.lists[status]
	if !ok {
		return
	}
	for _, domain := range inputs {
		set[strings.ToLower(domain)] = struct{}{}
	}
}

func (c *DomainChecker) in(status Status, domain string) bool {
	_, ok := c.lists[status][strings.ToLower(domain)]
	return ok
}

// Check the domain of uri
func (c *DomainChecker) Check(uri string) *CheckResult {
	return c.CheckDomain(ExtractDomain(uri))
}

// CheckDomain first checks if it is blocked, then trusted, then whether it
// looks like a brand. The generic keyword pattern is not considered here.
func (c *DomainChecker) CheckDomain(domain string) *CheckResult {
	status := StatusUnknown
	if c.in(StatusBlocked, domain) {
		status = StatusBlocked
	} else if c.in(StatusTrusted, domain) {
		status = StatusTrusted
	} else if c.matcher.IsBrandLookalike(domain) {
		status = StatusSuspicious
	}
	return &CheckResult{Domain: domain, Status: status, Message: statusMessages[status]}
}
