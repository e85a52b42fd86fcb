package host_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"gitlab.com/phishker/host"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/store"
)

type notification struct {
	title, message string
}

func testService(t *testing.T) (*host.Service, *store.Store, *[]notification) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := store.New("")
	if err := s.Init(); err != nil {
		t.Fatalf("error init store: %s\n", err)
	}
	var lock sync.Mutex
	sent := make([]notification, 0)
	svc := host.New(s, func(title, message string) {
		lock.Lock()
		defer lock.Unlock()
		sent = append(sent, notification{title, message})
	})
	return svc, s, &sent
}

func do(t *testing.T, svc *host.Service, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("error encoding body: %s\n", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)
	return rec
}

func threatReport(uri string) *phishk.Report {
	return &phishk.Report{
		Action: phishk.ReportAction,
		Data: &phishk.ReportData{
			Severity: "high",
			Score:    75,
			URL:      uri,
			Domain:   "mybank-login.example",
			Threats: []phishk.ReportThreat{
				{Kind: "suspicious_domain", Message: "Suspicious domain pattern detected"},
			},
		},
	}
}

func TestHandleThreat(t *testing.T) {
	svc, s, sent := testService(t)
	defer s.Close()

	rec := do(t, svc, http.MethodPost, "/threats", threatReport("http://www.mybank-login.example/signin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d %s\n", rec.Code, rec.Body.String())
	}

	blocked, err := s.Lists().Get(store.Blacklist)
	if err != nil || len(blocked) != 1 || blocked[0] != "mybank-login.example" {
		t.Fatalf("expected domain blacklisted got %v %v\n", blocked, err)
	}
	if len(*sent) != 1 || (*sent)[0].message != "mybank-login.example has been blocked for your protection." {
		t.Fatalf("expected one notification %s\n", spew.Sdump(*sent))
	}

	// already blocked, recorded but not counted again
	do(t, svc, http.MethodPost, "/threats", threatReport("http://mybank-login.example/other"))
	count, _ := s.Counters().Get(store.ThreatCount)
	if count != 1 || len(*sent) != 1 {
		t.Fatalf("expected threat count 1 got %d\n", count)
	}

	rec = do(t, svc, http.MethodGet, "/threats", nil)
	records := make([]*store.ThreatRecord, 0)
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("error decoding history: %s\n", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected both reports in history %s\n", spew.Sdump(records))
	}
}

func TestHandleThreatConcurrentReports(t *testing.T) {
	svc, s, sent := testService(t)
	defer s.Close()

	var wg sync.WaitGroup
	codes := make(chan int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- do(t, svc, http.MethodPost, "/threats", threatReport("http://mybank-login.example/signin")).Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		if code != http.StatusOK {
			t.Fatalf("expected 200 got %d\n", code)
		}
	}
	count, _ := s.Counters().Get(store.ThreatCount)
	if count != 1 || len(*sent) != 1 {
		t.Fatalf("expected one counted threat got %d %s\n", count, spew.Sdump(*sent))
	}
	blocked, _ := s.Lists().Get(store.Blacklist)
	if len(blocked) != 1 {
		t.Fatalf("expected one blacklist entry got %v\n", blocked)
	}
}

func TestHandleThreatBadAction(t *testing.T) {
	svc, s, _ := testService(t)
	defer s.Close()

	report := threatReport("http://mybank-login.example/")
	report.Action = "somethingElse"
	if rec := do(t, svc, http.MethodPost, "/threats", report); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d\n", rec.Code)
	}
}

func TestCheckDomain(t *testing.T) {
	svc, s, _ := testService(t)
	defer s.Close()

	if err := s.Lists().Set(store.Whitelist, []string{"example.com"}); err != nil {
		t.Fatalf("error setting whitelist: %s\n", err)
	}
	if err := s.Lists().Set(store.Blacklist, []string{"example.com", "bad.example"}); err != nil {
		t.Fatalf("error setting blacklist: %s\n", err)
	}

	var inputs = []struct {
		uri      string
		expected host.Status
	}{
		{"https://www.example.com/", host.StatusBlocked},
		{"https://bad.example/", host.StatusBlocked},
		{"https://paypal.comsecure.example/", host.StatusSuspicious},
		{"https://recipes.example/", host.StatusUnknown},
	}

	for _, in := range inputs {
		rec := do(t, svc, http.MethodGet, "/check?url="+in.uri, nil)
		result := &host.CheckResult{}
		if err := json.Unmarshal(rec.Body.Bytes(), result); err != nil {
			t.Fatalf("error decoding result: %s\n", err)
		}
		if result.Status != in.expected {
			t.Fatalf("%s expected %s got %s\n", in.uri, in.expected, spew.Sdump(result))
		}
	}

	checked, _ := s.Counters().Get(store.SitesChecked)
	if checked != int64(len(inputs)) {
		t.Fatalf("expected %d sites checked got %d\n", len(inputs), checked)
	}

	if rec := do(t, svc, http.MethodGet, "/check", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without url got %d\n", rec.Code)
	}
}

func TestListRoutes(t *testing.T) {
	svc, s, _ := testService(t)
	defer s.Close()

	var inputs = []struct {
		method   string
		path     string
		body     interface{}
		expected int
	}{
		{http.MethodPut, "/lists/whitelist", map[string][]string{"domains": {"Example.com", "shop.example"}}, http.StatusOK},
		{http.MethodPost, "/lists/whitelist", map[string]string{"domain": "bank.example"}, http.StatusCreated},
		{http.MethodPost, "/lists/whitelist", map[string]string{"domain": "bank.example"}, http.StatusConflict},
		{http.MethodPost, "/lists/whitelist", map[string]string{"domain": "not a domain"}, http.StatusBadRequest},
		{http.MethodPost, "/lists/whitelist", map[string]string{"domain": "co.uk"}, http.StatusBadRequest},
		{http.MethodPost, "/lists/greylist", map[string]string{"domain": "bank.example"}, http.StatusNotFound},
		{http.MethodDelete, "/lists/whitelist/shop.example", nil, http.StatusNoContent},
		{http.MethodDelete, "/lists/whitelist/shop.example", nil, http.StatusNotFound},
	}

	for _, in := range inputs {
		if rec := do(t, svc, in.method, in.path, in.body); rec.Code != in.expected {
			t.Fatalf("%s %s expected %d got %d %s\n", in.method, in.path, in.expected, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, svc, http.MethodGet, "/lists/whitelist", nil)
	body := struct {
		Domains []string `json:"domains"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error decoding list: %s\n", err)
	}
	if len(body.Domains) != 2 || body.Domains[0] != "example.com" || body.Domains[1] != "bank.example" {
		t.Fatalf("unexpected list %s\n", spew.Sdump(body))
	}

	rec = do(t, svc, http.MethodGet, "/lists/whitelist?q=BANK", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error decoding search: %s\n", err)
	}
	if len(body.Domains) != 1 || body.Domains[0] != "bank.example" {
		t.Fatalf("unexpected search result %s\n", spew.Sdump(body))
	}
}

func TestStats(t *testing.T) {
	svc, s, _ := testService(t)
	defer s.Close()

	do(t, svc, http.MethodGet, "/check?url=https://recipes.example/", nil)
	do(t, svc, http.MethodPost, "/threats", threatReport("http://mybank-login.example/"))

	rec := do(t, svc, http.MethodGet, "/stats", nil)
	stats := make(map[string]int64)
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("error decoding stats: %s\n", err)
	}
	if stats[store.ThreatCount] != 1 || stats[store.SitesChecked] != 1 {
		t.Fatalf("unexpected stats %s\n", spew.Sdump(stats))
	}
}
