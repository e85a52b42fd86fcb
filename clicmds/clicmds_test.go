package clicmds_test

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/clicmds"
	"gitlab.com/phishker/mock"
	"gitlab.com/phishker/store"
)

func TestDecodeConfig(t *testing.T) {
	data := `
url = "https://mybank-login.example/"

[engine]
enabled_default = false

[report]
endpoint = "http://127.0.0.1:8087/threats"

[browser]
poll_interval_ms = 100
`
	cfg, err := clicmds.DecodeConfig(data)
	if err != nil {
		t.Fatalf("error decoding: %s\n", err)
	}
	if cfg.URL != "https://mybank-login.example/" || cfg.Engine.EnabledDefault {
		t.Fatalf("unexpected config %#v\n", cfg)
	}
	if cfg.Report.Endpoint != "http://127.0.0.1:8087/threats" || cfg.Report.TimeoutMS != 3000 {
		t.Fatalf("unexpected report config %#v\n", cfg.Report)
	}
	if cfg.Browser.PollIntervalMS != 100 || cfg.Browser.LoadTimeoutMS != 30000 {
		t.Fatalf("defaults must survive a partial file %#v\n", cfg.Browser)
	}

	if _, err := clicmds.DecodeConfig("url = "); err == nil {
		t.Fatalf("expected error for invalid toml")
	}
}

func testApp() *cli.App {
	app := cli.NewApp()
	app.Flags = clicmds.GlobalFlags()
	app.Commands = []*cli.Command{
		{
			Name:   "scan",
			Action: clicmds.Scan,
			Flags:  clicmds.ScanFlags(),
		},
		clicmds.ListsCommand(),
		{
			Name:   "toggle",
			Action: clicmds.Toggle,
		},
	}
	return app
}

func TestScanFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "phishker")
	if err != nil {
		t.Fatalf("error creating temp dir: %s\n", err)
	}
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, "login.html")
	if err := ioutil.WriteFile(source, []byte(mock.PhishingLoginHTML), 0600); err != nil {
		t.Fatalf("error writing page: %s\n", err)
	}

	datadir := filepath.Join(dir, "data")
	err = testApp().Run([]string{"app", "--datadir", datadir, "scan", "--url", "http://mybank-login.example/", "--file", source})
	if err != nil {
		t.Fatalf("err: %s\n", err)
	}
}

func TestScanDeliversReport(t *testing.T) {
	dir, err := ioutil.TempDir("", "phishker")
	if err != nil {
		t.Fatalf("error creating temp dir: %s\n", err)
	}
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, "login.html")
	if err := ioutil.WriteFile(source, []byte(mock.PhishingLoginHTML), 0600); err != nil {
		t.Fatalf("error writing page: %s\n", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	var received int32
	router.POST("/threats", func(c *gin.Context) {
		time.Sleep(time.Millisecond * 50)
		atomic.AddInt32(&received, 1)
		c.Status(http.StatusOK)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	args := []string{"app", "--datadir", filepath.Join(dir, "data"), "scan",
		"--url", "http://mybank-login.example/", "--file", source, "--endpoint", srv.URL + "/threats"}
	if err := testApp().Run(args); err != nil {
		t.Fatalf("err: %s\n", err)
	}
	if n := atomic.LoadInt32(&received); n != 1 {
		t.Fatalf("expected the report delivered before scan returns got %d\n", n)
	}
}

func TestListsAndToggle(t *testing.T) {
	dir, err := ioutil.TempDir("", "phishker")
	if err != nil {
		t.Fatalf("error creating temp dir: %s\n", err)
	}
	defer os.RemoveAll(dir)

	app := testApp()
	if err := app.Run([]string{"app", "--datadir", dir, "lists", "add", "blacklist", "Evil.example"}); err != nil {
		t.Fatalf("error adding: %s\n", err)
	}
	if err := app.Run([]string{"app", "--datadir", dir, "lists", "add", "greylist", "evil.example"}); err == nil {
		t.Fatalf("expected unknown list error")
	}
	if err := app.Run([]string{"app", "--datadir", dir, "toggle", "false"}); err != nil {
		t.Fatalf("error toggling: %s\n", err)
	}

	s := store.New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("error opening store: %s\n", err)
	}
	defer s.Close()

	blocked, _ := s.Lists().Get(store.Blacklist)
	if len(blocked) != 1 || blocked[0] != "evil.example" {
		t.Fatalf("unexpected blacklist %v\n", blocked)
	}
	if enabled, _ := s.Settings(true).Enabled(context.Background()); enabled {
		t.Fatalf("expected detection disabled")
	}
}
