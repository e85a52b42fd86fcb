package phishk_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"gitlab.com/phishker/phishk"
)

func TestClassify(t *testing.T) {
	var inputs = []struct {
		score    int
		expected phishk.Severity
	}{
		{0, phishk.SeverityNone},
		{5, phishk.SeverityLow},
		{29, phishk.SeverityLow},
		{30, phishk.SeverityMedium},
		{49, phishk.SeverityMedium},
		{50, phishk.SeverityHigh},
		{180, phishk.SeverityHigh},
	}

	for _, in := range inputs {
		if got := phishk.Classify(in.score); got != in.expected {
			t.Fatalf("Classify(%d) expected %s got %s\n", in.score, in.expected, got)
		}
	}
}

func TestThreatKindWeights(t *testing.T) {
	var inputs = []struct {
		kind   phishk.ThreatKind
		name   string
		weight int
	}{
		{phishk.SuspiciousDomainThreat, "suspicious_domain", 30},
		{phishk.TyposquattingThreat, "typosquatting", 30},
		{phishk.NoSSLThreat, "no_ssl", 20},
		{phishk.InsecureFormThreat, "insecure_form", 25},
		{phishk.SuspiciousFormThreat, "suspicious_form", 5},
		{phishk.HiddenElementThreat, "hidden_element", 10},
		{phishk.BrandMisuseThreat, "brand_misuse", 10},
		{phishk.SuspiciousLinkThreat, "suspicious_link", 15},
		{phishk.IframeDetectedThreat, "iframe_detected", 5},
		{phishk.SuspiciousPasswordFieldThreat, "suspicious_password_field", 5},
		{phishk.InsecureInputThreat, "insecure_input", 25},
	}

	for _, in := range inputs {
		if in.kind.String() != in.name || in.kind.Weight() != in.weight {
			t.Fatalf("expected %s/%d got %s/%d\n", in.name, in.weight, in.kind, in.kind.Weight())
		}
		parsed, ok := phishk.ParseThreatKind(in.name)
		if !ok || parsed != in.kind {
			t.Fatalf("ParseThreatKind(%s) got %v %v\n", in.name, parsed, ok)
		}
	}

	if _, ok := phishk.ParseThreatKind("clickjacking"); ok {
		t.Fatalf("unknown kinds must not parse")
	}
}

func TestRiskStateAccumulates(t *testing.T) {
	state := phishk.NewRiskState("http://mybank-login.example/", "mybank-login.example")
	if state.ID == "" || state.Severity() != phishk.SeverityNone {
		t.Fatalf("unexpected new state %s\n", spew.Sdump(state))
	}

	threat := phishk.NewThreat(phishk.InsecureFormThreat, "Form submits to non-HTTPS endpoint")
	state.AddThreat(threat)
	state.AddThreat(threat)
	if state.Len() != 2 || state.Score() != 50 || state.Severity() != phishk.SeverityHigh {
		t.Fatalf("identical threats must both count %s\n", spew.Sdump(state.Threats()))
	}

	threats := state.Threats()
	threats[0].Message = "changed"
	if state.Threats()[0].Message == "changed" {
		t.Fatalf("Threats must return a copy")
	}
}

func TestRiskStateEvaluate(t *testing.T) {
	state := phishk.NewRiskState("http://shop.example/", "shop.example")

	mark := state.Mark()
	if state.Evaluate(mark) != nil {
		t.Fatalf("score 0 must not be reported")
	}

	state.AddThreat(phishk.NewThreat(phishk.HiddenElementThreat, "Hidden sensitive input field detected"))
	report := state.Evaluate(mark)
	if report == nil || report.Action != phishk.ReportAction || report.Data.Severity != "low" || report.Data.Score != 10 {
		t.Fatalf("unexpected report %s\n", spew.Sdump(report))
	}

	// nothing new and same severity
	if r := state.Evaluate(state.Mark()); r != nil {
		t.Fatalf("expected no report got %s\n", spew.Sdump(r))
	}

	mark = state.Mark()
	state.AddThreat(phishk.NewThreat(phishk.SuspiciousFormThreat, "Form with sensitive fields has autocomplete disabled"))
	report = state.Evaluate(mark)
	if report == nil || len(report.Data.Threats) != 2 || report.Data.Threats[1].Kind != "suspicious_form" {
		t.Fatalf("expected full state in report %s\n", spew.Sdump(report))
	}
}

func TestPrimaryName(t *testing.T) {
	if name := phishk.KnownBrands[0].PrimaryName(); name != "paypal" {
		t.Fatalf("expected paypal got %s\n", name)
	}
	bank := phishk.KnownBrands[len(phishk.KnownBrands)-1]
	if bank.PrimaryName() != "bank" {
		t.Fatalf("expected bank got %s\n", bank.PrimaryName())
	}
}

func TestElementTypeOf(t *testing.T) {
	if phishk.ElementTypeOf("form") != phishk.FORM || phishk.ElementTypeOf("x-widget") != phishk.CUSTOM {
		t.Fatalf("unexpected element types")
	}
	if !phishk.ElementTypeOf("select").IsFormControl() || phishk.ElementTypeOf("a").IsFormControl() {
		t.Fatalf("unexpected form control classification")
	}
}
