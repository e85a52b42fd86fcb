// Package inspector runs the heuristic phishing checks over a page
package inspector

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/page"
	"gitlab.com/phishker/scanner/pattern"
	"gitlab.com/phishker/scanner/similarity"
)

// HiddenSelector matches elements hidden inline or with the hidden attribute
const HiddenSelector = `[style*="display: none"], [style*="visibility: hidden"], [hidden]`

// Inspector checks a page and records threats into a RiskState
type Inspector struct {
	matcher *pattern.Matcher
	brands  []*phishk.KnownBrand
}

// New inspector using the static pattern and brand tables
func New() *Inspector {
	return &Inspector{matcher: pattern.New(), brands: phishk.KnownBrands}
}

// FullPass runs every page check once, in order
func (i *Inspector) FullPass(pg *page.Context, state *phishk.RiskState) {
	mark := state.Mark()
	i.CheckDomain(pg, state)
	i.CheckTyposquat(pg, state)
	i.CheckSSL(pg, state)
	i.CheckForms(pg, state)
	i.CheckHiddenElements(pg, state)
	i.CheckBrandMisuse(pg, state)
	i.CheckExternalLinks(pg, state)
	i.AnalyzeDOMStructure(pg, state)
	log.Debug().Str("session", state.ID).Str("host", pg.Hostname).Int("found", state.Len()-mark).Int("score", state.Score()).Msg("full pass complete")
}

// CheckDomain records at most one threat for the first suspicious pattern the
// hostname matches
func (i *Inspector) CheckDomain(pg *page.Context, state *phishk.RiskState) {
	if _, ok := i.matcher.FirstSuspiciousMatch(pg.Hostname); ok {
		state.AddThreat(phishk.NewThreat(phishk.SuspiciousDomainThreat, "Suspicious domain pattern detected"))
	}
}

// CheckTyposquat records at most one threat for the first brand domain the
// hostname nearly matches
func (i *Inspector) CheckTyposquat(pg *page.Context, state *phishk.RiskState) {
	for _, brand := range i.brands {
		if similarity.IsTyposquat(pg.Hostname, brand.CanonicalDomain) {
			state.AddThreat(phishk.NewThreat(phishk.TyposquattingThreat, fmt.Sprintf("Possible typosquatting of %s", brand.CanonicalDomain)))
			return
		}
	}
}

// CheckSSL flags sensitive inputs on a page not served over https
func (i *Inspector) CheckSSL(pg *page.Context, state *phishk.RiskState) {
	if pg.IsSecure() {
		return
	}
	if anySensitive(pg.Inputs()) {
		state.AddThreat(phishk.NewThreat(phishk.NoSSLThreat, "Sensitive information being collected without SSL"))
	}
}

// CheckForms runs CheckForm against every form in the document
func (i *Inspector) CheckForms(pg *page.Context, state *phishk.RiskState) {
	pg.Forms().Each(func(_ int, form *goquery.Selection) {
		i.CheckForm(pg, form, state)
	})
}

// CheckForm flags a form collecting sensitive data that submits to a non
// https target or disables autocomplete
func (i *Inspector) CheckForm(pg *page.Context, form *goquery.Selection, state *phishk.RiskState) {
	if !anySensitive(form.Find("input")) {
		return
	}

	if !strings.HasPrefix(pg.FormAction(form), "https://") {
		state.AddThreat(phishk.NewThreat(phishk.InsecureFormThreat, "Sensitive form submitting to insecure endpoint"))
	}

	if autocomplete, _ := form.Attr("autocomplete"); autocomplete == "off" {
		state.AddThreat(phishk.NewThreat(phishk.SuspiciousFormThreat, "Form prevents password manager usage"))
	}
}

// CheckHiddenElements flags hidden elements that are themselves sensitive
// inputs. Sensitive inputs nested under a hidden container are not matched.
func (i *Inspector) CheckHiddenElements(pg *page.Context, state *phishk.RiskState) {
	pg.Doc.Find(HiddenSelector).Each(func(_ int, s *goquery.Selection) {
		if IsSensitiveInput(s) {
			state.AddThreat(phishk.NewThreat(phishk.HiddenElementThreat, "Hidden sensitive input detected"))
		}
	})
}

// CheckBrandMisuse records one threat per brand whose keywords appear in the
// page text while the hostname does not carry the brand name
func (i *Inspector) CheckBrandMisuse(pg *page.Context, state *phishk.RiskState) {
	text := pg.BodyText()
	host := strings.ToLower(pg.Hostname)
	for _, brand := range i.brands {
		if !i.matcher.MatchesKnownBrandKeywords(text, brand) {
			continue
		}
		if strings.Contains(host, brand.PrimaryName()) {
			continue
		}
		state.AddThreat(phishk.NewThreat(phishk.BrandMisuseThreat, fmt.Sprintf("Possible %s brand misuse", brand.CanonicalDomain)))
	}
}

// CheckExternalLinks runs CheckLink against every anchor with an href
func (i *Inspector) CheckExternalLinks(pg *page.Context, state *phishk.RiskState) {
	pg.Anchors().Each(func(_ int, a *goquery.Selection) {
		i.CheckLink(pg, a, state)
	})
}

// CheckLink flags an anchor leading off the current host to a suspicious
// domain. Links that do not resolve are skipped.
func (i *Inspector) CheckLink(pg *page.Context, anchor *goquery.Selection, state *phishk.RiskState) {
	host, err := pg.LinkHost(anchor)
	if err != nil {
		log.Debug().Err(err).Msg("skipping link")
		return
	}

	if host == pg.Hostname || !i.matcher.IsSuspiciousDomain(host) {
		return
	}
	state.AddThreat(phishk.NewThreat(phishk.SuspiciousLinkThreat, fmt.Sprintf("Suspicious external link to %s", host)))
}

// AnalyzeDOMStructure flags iframes once and every password input that is
// not part of a form with at least one other input
func (i *Inspector) AnalyzeDOMStructure(pg *page.Context, state *phishk.RiskState) {
	if pg.IframeCount() > 0 {
		state.AddThreat(phishk.NewThreat(phishk.IframeDetectedThreat, "Page contains iframes which might be used for clickjacking"))
	}

	pg.PasswordInputs().Each(func(_ int, input *goquery.Selection) {
		form := page.EnclosingForm(input)
		if form.Length() == 0 || form.Find("input").Length() < 2 {
			state.AddThreat(phishk.NewThreat(phishk.SuspiciousPasswordFieldThreat, "Isolated password field detected"))
		}
	})
}

// CheckInputSecurity flags a sensitive input that has no form or whose form
// does not submit over https
func (i *Inspector) CheckInputSecurity(pg *page.Context, input *goquery.Selection, state *phishk.RiskState) {
	if !IsSensitiveInput(input) {
		return
	}

	form := page.EnclosingForm(input)
	if form.Length() == 0 || !strings.HasPrefix(pg.FormAction(form), "https://") {
		state.AddThreat(phishk.NewThreat(phishk.InsecureInputThreat, "Sensitive data being collected insecurely"))
	}
}

// IsSensitiveInput returns true for form controls of type password or whose
// name or id carries credential or payment vocabulary. Elements without a
// DOM type are never sensitive.
func IsSensitiveInput(s *goquery.Selection) bool {
	if s == nil || s.Length() == 0 {
		return false
	}
	s = s.First()

	inputType := page.InputType(s)
	if inputType == "" {
		return false
	}
	if inputType == "password" {
		return true
	}

	name, _ := s.Attr("name")
	id, _ := s.Attr("id")
	return pattern.ContainsSensitiveTerm(name) || pattern.ContainsSensitiveTerm(id)
}

func anySensitive(s *goquery.Selection) bool {
	found := false
	s.EachWithBreak(func(_ int, input *goquery.Selection) bool {
		found = IsSensitiveInput(input)
		return !found
	})
	return found
}
