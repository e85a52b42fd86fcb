// Package pattern holds the static suspicious domain and keyword tables
package pattern

import (
	"regexp"
	"strings"

	"gitlab.com/phishker/phishk"
)

// Entry of the suspicious domain table. Brand is empty for the generic
// keyword pattern.
type Entry struct {
	Pattern *regexp.Regexp
	Brand   string
}

// a brand name followed somewhere by .com and then a letter, e.g.
// paypal.com-secure.example but not paypal.com itself
func brandSuffixRe(brand string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + brand + `.*\.com[a-z]`)
}

// GenericKeywordRe whole word credential/banking vocabulary
var GenericKeywordRe = regexp.MustCompile(`(?i)\b(bank|banking|secure|login|signin|verify|account|update|confirm)\b`)

// SuspiciousDomains table, evaluated in order
var SuspiciousDomains = []Entry{
	{Pattern: brandSuffixRe("paypal"), Brand: "paypal"},
	{Pattern: brandSuffixRe("amazon"), Brand: "amazon"},
	{Pattern: brandSuffixRe("apple"), Brand: "apple"},
	{Pattern: brandSuffixRe("google"), Brand: "google"},
	{Pattern: brandSuffixRe("microsoft"), Brand: "microsoft"},
	{Pattern: brandSuffixRe("facebook"), Brand: "facebook"},
	{Pattern: brandSuffixRe("netflix"), Brand: "netflix"},
	{Pattern: GenericKeywordRe},
}

// SensitiveTerms that mark a name or id as collecting credentials or
// financial data
var SensitiveTerms = []string{
	"password",
	"pass",
	"pwd",
	"creditcard",
	"credit-card",
	"card-number",
	"cardnumber",
	"ccv",
	"cvc",
	"cvv",
	"ssn",
	"bank",
	"account",
	"routing",
	"swift",
	"iban",
}

// Matcher over the static tables
type Matcher struct {
	entries []Entry
}

// New matcher using the package tables
func New() *Matcher {
	return &Matcher{entries: SuspiciousDomains}
}

// FirstSuspiciousMatch returns the first table entry matching host
func (m *Matcher) FirstSuspiciousMatch(host string) (Entry, bool) {
	for _, e := range m.entries {
		if e.Pattern.MatchString(host) {
			return e, true
		}
	}
	return Entry{}, false
}

// IsSuspiciousDomain returns true if any entry matches host
func (m *Matcher) IsSuspiciousDomain(host string) bool {
	_, ok := m.FirstSuspiciousMatch(host)
	return ok
}

// IsBrandLookalike only considers brand entries, skipping the generic keyword
func (m *Matcher) IsBrandLookalike(host string) bool {
	for _, e := range m.entries {
		if e.Brand != "" && e.Pattern.MatchString(host) {
			return true
		}
	}
	return false
}

// MatchesKnownBrandKeywords returns true if the lower cased page text
// contains any of the brand's keywords
func (m *Matcher) MatchesKnownBrandKeywords(pageText string, brand *phishk.KnownBrand) bool {
	lowered := strings.ToLower(pageText)
	for _, keyword := range brand.Keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// ContainsSensitiveTerm case insensitive substring match against SensitiveTerms
func ContainsSensitiveTerm(s string) bool {
	if s == "" {
		return false
	}
	lowered := strings.ToLower(s)
	for _, term := range SensitiveTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
