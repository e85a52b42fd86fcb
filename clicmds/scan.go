package clicmds

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/scanner"
	"gitlab.com/phishker/scanner/page"
	"gitlab.com/phishker/scanner/report"
)

// ScanFlags for the static scan command
func ScanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "url of the page, also used as the document url for --file",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "read the page source from a file instead of fetching url",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "host threat intake to send reports to",
			Value: "",
		},
	}
}

// Scan runs a single full pass over a fetched or saved page and prints the
// result
func Scan(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.String("url") != "" {
		cfg.URL = ctx.String("url")
	}
	if cfg.URL == "" {
		return errors.New("--url is required")
	}

	pg, err := loadPage(cfg.URL, ctx.String("file"), time.Duration(cfg.Browser.LoadTimeoutMS)*time.Millisecond)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	collector := report.NewCollector()
	reporter := reporterFor(cfg, collector)
	engine := scanner.New(cfg, s.Settings(cfg.Engine.EnabledDefault), reporter)
	engine.Load(pg)
	err = engine.Start(context.Background(), nil)
	// the process exits after this, let background dispatches finish
	reporter.Wait()
	if err != nil {
		return err
	}

	if !engine.Enabled() {
		fmt.Fprintln(os.Stdout, "detection is disabled")
		return nil
	}
	if len(collector.Domains()) == 0 {
		fmt.Fprintf(os.Stdout, "%s no threats detected\n", pg.Hostname)
		return nil
	}
	collector.Print(os.Stdout)
	return nil
}

// reporterFor adds the http reporter when an endpoint is configured
func reporterFor(cfg *phishk.Config, reporters ...phishk.Reporter) report.Multi {
	if cfg.Report.Endpoint != "" {
		timeout := time.Duration(cfg.Report.TimeoutMS) * time.Millisecond
		reporters = append(reporters, report.NewHTTPReporter(cfg.Report.Endpoint, timeout))
	}
	return report.NewMulti(reporters...)
}

func loadPage(rawURL, file string, timeout time.Duration) (*page.Context, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return page.Parse(rawURL, f)
	}

	log.Info().Str("url", rawURL).Msg("fetching page")
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetching page")
	}
	defer resp.Body.Close()

	// redirects land on a different document
	return page.Parse(resp.Request.URL.String(), resp.Body)
}
