package clicmds

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/scanner"
	"gitlab.com/phishker/scanner/browser"
	"gitlab.com/phishker/scanner/report"
)

// LiveFlags for the live command
func LiveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "url to open",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "host threat intake to send reports to",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "path to chrome",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "leaser",
			Usage: "unix socket of a browser leasing service",
			Value: "",
		},
	}
}

// Live opens the url in chrome and keeps monitoring it until interrupted
func Live(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.String("url") != "" {
		cfg.URL = ctx.String("url")
	}
	if cfg.URL == "" {
		return cli.Exit("--url is required", 1)
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var leaser browser.Leaser = browser.NewLocalLeaser(cfg.Browser.Chrome)
	if cfg.Browser.LeaserSocket != "" {
		leaser = browser.NewSocketLeaser(cfg.Browser.LeaserSocket)
	}
	defer leaser.Cleanup()

	live, err := browser.NewLivePage(&cfg.Browser, leaser)
	if err != nil {
		return err
	}
	defer live.Close()

	runCtx, cancel := signalContext()
	defer cancel()

	pg, err := live.Navigate(runCtx, cfg.URL)
	if err != nil {
		return err
	}

	reporter := reporterFor(cfg, report.NewLogReporter())
	defer reporter.Wait()

	engine := scanner.New(cfg, s.Settings(cfg.Engine.EnabledDefault), reporter)
	engine.Load(pg)

	go live.Poll(runCtx)
	log.Info().Str("url", pg.Href).Msg("monitoring page")
	return engine.Run(runCtx, live)
}
