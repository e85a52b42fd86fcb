package clicmds

import (
	"context"
	"io/ioutil"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/phishk"
	"gitlab.com/phishker/store"
)

// GlobalFlags shared by every command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml config to use",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory for settings, lists and history",
			Value: "",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
			Value: false,
		},
	}
}

// Before sets up logging for every command
func Before(ctx *cli.Context) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if ctx.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}

// DecodeConfig reads toml data over the default config
func DecodeConfig(data string) (*phishk.Config, error) {
	cfg := phishk.DefaultConfig()
	if err := toml.NewDecoder(strings.NewReader(data)).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}

// loadConfig from --config if given, then applies flag values
func loadConfig(ctx *cli.Context) (*phishk.Config, error) {
	cfg := phishk.DefaultConfig()

	if ctx.String("config") != "" {
		data, err := ioutil.ReadFile(ctx.String("config"))
		if err != nil {
			return nil, err
		}
		if cfg, err = DecodeConfig(string(data)); err != nil {
			return nil, err
		}
	}

	if ctx.String("datadir") != "" {
		cfg.Store.DataPath = ctx.String("datadir")
	}
	if ctx.IsSet("endpoint") {
		cfg.Report.Endpoint = ctx.String("endpoint")
	}
	if ctx.IsSet("addr") {
		cfg.Server.Addr = ctx.String("addr")
	}
	if ctx.IsSet("chrome") {
		cfg.Browser.Chrome = ctx.String("chrome")
	}
	if ctx.IsSet("leaser") {
		cfg.Browser.LeaserSocket = ctx.String("leaser")
	}
	return cfg, nil
}

func openStore(cfg *phishk.Config) (*store.Store, error) {
	s := store.New(cfg.Store.DataPath)
	if err := s.Init(); err != nil {
		return nil, errors.Wrap(err, "opening store")
	}
	return s, nil
}

// signalContext is cancelled on ctrl-c or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-c:
			log.Info().Msg("Ctrl-C Pressed, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
	}()
	return ctx, cancel
}
