package host_test

import (
	"testing"

	"gitlab.com/phishker/host"
	"gitlab.com/phishker/scanner/pattern"
)

func TestExtractDomain(t *testing.T) {
	var inputs = []struct {
		in       string
		expected string
	}{
		{"https://www.Example.com/login", "example.com"},
		{"http://sub.www.example.com/", "sub.www.example.com"},
		{"//www.cdn.example/x", "cdn.example"},
		{"not a url", "not a url"},
		{"http://[::1", "http://[::1"},
	}

	for _, in := range inputs {
		if got := host.ExtractDomain(in.in); got != in.expected {
			t.Fatalf("ExtractDomain(%q) expected %q got %q\n", in.in, in.expected, got)
		}
	}
}

func TestDomainChecker(t *testing.T) {
	c := host.NewDomainChecker(pattern.New())
	c.AddDomains([]string{"Evil.example"}, host.StatusBlocked)
	c.AddDomains([]string{"evil.example", "bank.example"}, host.StatusTrusted)
	c.AddDomains([]string{"ignored.example"}, host.StatusUnknown)

	var inputs = []struct {
		in       string
		expected host.Status
	}{
		{"https://www.evil.example/", host.StatusBlocked},
		{"https://bank.example/", host.StatusTrusted},
		{"https://paypal.comsecure.example/", host.StatusSuspicious},
		// generic keywords are left to the page checks
		{"https://secure-login.example/", host.StatusUnknown},
		{"https://ignored.example/", host.StatusUnknown},
	}

	for _, in := range inputs {
		result := c.Check(in.in)
		if result.Status != in.expected {
			t.Fatalf("Check(%q) expected %s got %s\n", in.in, in.expected, result.Status)
		}
		if result.Message == "" {
			t.Fatalf("expected a message for %s\n", in.in)
		}
	}
}

func TestCheckDomainCase(t *testing.T) {
	c := host.NewDomainChecker(pattern.New())
	c.AddDomains([]string{"bank.example", "bank.example"}, host.StatusTrusted)

	if result := c.CheckDomain("Bank.Example"); result.Status != host.StatusTrusted {
		t.Fatalf("expected trusted got %s\n", result.Status)
	}
	if result := c.CheckDomain("other.example"); result.Status != host.StatusUnknown {
		t.Fatalf("expected unknown got %s\n", result.Status)
	}
}
