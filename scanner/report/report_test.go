package report_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gitlab.com/phishker/mock"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner/report"
)

func makeReport(domain string, kinds ...phishk.ThreatKind) *phishk.Report {
	state := phishk.NewRiskState("http://"+domain+"/", domain)
	for _, k := range kinds {
		state.AddThreat(phishk.NewThreat(k, k.String()))
	}
	return state.Snapshot()
}

func testServer(t *testing.T, status int, received chan *phishk.Report) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/threats", func(c *gin.Context) {
		r := &phishk.Report{}
		if err := c.BindJSON(r); err != nil {
			t.Logf("bad report body: %s\n", err)
			return
		}
		received <- r
		c.Status(status)
	})
	return httptest.NewServer(router)
}

func TestHTTPReporter(t *testing.T) {
	received := make(chan *phishk.Report, 1)
	srv := testServer(t, http.StatusOK, received)
	defer srv.Close()

	results := make(chan error, 1)
	h := report.NewHTTPReporter(srv.URL+"/threats", time.Second*2, report.WithResults(results))
	sent := makeReport("mybank-login.example", phishk.SuspiciousDomainThreat, phishk.NoSSLThreat, phishk.InsecureFormThreat)
	h.Report(sent)

	select {
	case err := <-results:
		if err != nil {
			t.Fatalf("error sending report: %s\n", err)
		}
	case <-time.After(time.Second * 5):
		t.Fatalf("timed out waiting for dispatch")
	}

	got := <-received
	if got.Action != "threatDetected" || got.Data.Severity != "high" || got.Data.Score != 75 {
		t.Fatalf("unexpected report %s\n", spew.Sdump(got))
	}
	if len(got.Data.Threats) != 3 || got.Data.Threats[2].Kind != "insecure_form" {
		t.Fatalf("unexpected threats %s\n", spew.Sdump(got.Data.Threats))
	}
}

func TestHTTPReporterDropsFailures(t *testing.T) {
	received := make(chan *phishk.Report, 1)
	srv := testServer(t, http.StatusInternalServerError, received)
	defer srv.Close()

	results := make(chan error, 1)
	h := report.NewHTTPReporter(srv.URL+"/threats", time.Second*2, report.WithResults(results))
	h.Report(makeReport("secure.example", phishk.SuspiciousDomainThreat))

	select {
	case err := <-results:
		if err == nil || !strings.Contains(err.Error(), "status 500") {
			t.Fatalf("expected status error got %v\n", err)
		}
	case <-time.After(time.Second * 5):
		t.Fatalf("timed out waiting for dispatch")
	}
}

func TestHTTPReporterTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	release := make(chan struct{})
	router.POST("/threats", func(c *gin.Context) {
		<-release
		c.Status(http.StatusOK)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()
	defer close(release)

	results := make(chan error, 1)
	h := report.NewHTTPReporter(srv.URL+"/threats", time.Millisecond*50, report.WithResults(results))

	start := time.Now()
	h.Report(makeReport("secure.example", phishk.SuspiciousDomainThreat))
	if time.Since(start) > time.Millisecond*40 {
		t.Fatalf("Report must not block the caller")
	}

	select {
	case err := <-results:
		if err == nil {
			t.Fatalf("expected timeout error")
		}
	case <-time.After(time.Second * 5):
		t.Fatalf("timed out waiting for dispatch")
	}
}

func TestHTTPReporterWait(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var delivered int32
	router.POST("/threats", func(c *gin.Context) {
		time.Sleep(time.Millisecond * 100)
		atomic.AddInt32(&delivered, 1)
		c.Status(http.StatusOK)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	h := report.NewHTTPReporter(srv.URL+"/threats", time.Second*2)
	m := report.NewMulti(report.NewCollector(), h)
	m.Report(makeReport("mybank-login.example", phishk.SuspiciousDomainThreat))

	if !m.Wait() {
		t.Fatalf("expected dispatch to finish within the timeout")
	}
	if n := atomic.LoadInt32(&delivered); n != 1 {
		t.Fatalf("expected the report delivered once Wait returns got %d\n", n)
	}
}

func TestHTTPReporterWaitTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	release := make(chan struct{})
	router.POST("/threats", func(c *gin.Context) {
		<-release
		c.Status(http.StatusOK)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()
	defer close(release)

	h := report.NewHTTPReporter(srv.URL+"/threats", time.Millisecond*50)
	h.Report(makeReport("secure.example", phishk.SuspiciousDomainThreat))

	start := time.Now()
	h.Wait()
	if time.Since(start) > time.Second*2 {
		t.Fatalf("Wait must be bounded by the dispatch timeout")
	}
}

func TestCollector(t *testing.T) {
	c := report.NewCollector()
	c.Report(makeReport("b.example", phishk.SuspiciousLinkThreat))
	c.Report(makeReport("a.example", phishk.InsecureFormThreat))
	c.Report(makeReport("a.example", phishk.InsecureFormThreat, phishk.InsecureFormThreat, phishk.NoSSLThreat))
	c.Report(nil)

	domains := c.Domains()
	if len(domains) != 2 || domains[0] != "a.example" || domains[1] != "b.example" {
		t.Fatalf("unexpected domains %v\n", domains)
	}

	latest := c.Latest("a.example")
	if latest.Data.Score != 70 {
		t.Fatalf("expected latest report with score 70 got %d\n", latest.Data.Score)
	}
	kinds := c.Kinds("a.example")
	if kinds["insecure_form"] != 2 || kinds["no_ssl"] != 1 {
		t.Fatalf("unexpected kind counts %v\n", kinds)
	}

	buf := &bytes.Buffer{}
	c.Print(buf)
	out := buf.String()
	if !strings.Contains(out, "a.example severity=high score=70") || !strings.Contains(out, "suspicious_link") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestMultiAndLog(t *testing.T) {
	buf := &bytes.Buffer{}
	first := mock.MakeMockReporter()
	second := mock.MakeMockReporter()
	m := report.NewMulti(first, nil, report.NewLogReporterWith(zerolog.New(buf)), second)
	if len(m) != 3 {
		t.Fatalf("expected nil reporter to be skipped got %d\n", len(m))
	}

	m.Report(makeReport("mybank-login.example", phishk.SuspiciousDomainThreat, phishk.NoSSLThreat))
	if len(first.Reports()) != 1 || len(second.Reports()) != 1 {
		t.Fatalf("expected each reporter to receive the report")
	}

	out := buf.String()
	for _, expected := range []string{`"level":"warn"`, `"severity":"high"`, `"score":50`, `"threats":["suspicious_domain","no_ssl"]`} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected %s in log output %s\n", expected, out)
		}
	}
}
