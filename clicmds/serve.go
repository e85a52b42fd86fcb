package clicmds

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/host"
)

// ServeFlags for the host service
func ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "address to listen on",
			Value: "127.0.0.1:8087",
		},
	}
}

// Serve runs the host service until interrupted
func Serve(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runCtx, cancel := signalContext()
	defer cancel()
	return host.New(s, host.LogNotifier).Serve(runCtx, cfg.Server.Addr)
}
