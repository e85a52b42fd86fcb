package clicmds

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/store"
)

// ListsCommand manages the blacklist and whitelist
func ListsCommand() *cli.Command {
	return &cli.Command{
		Name:  "lists",
		Usage: "view and edit the blacklist and whitelist",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "print a list",
				ArgsUsage: "<blacklist|whitelist>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "only show domains containing this term"},
				},
				Action: withLists(func(ctx *cli.Context, lists *store.Lists) error {
					var domains []string
					var err error
					if q := ctx.String("q"); q != "" {
						domains, err = lists.Search(ctx.Args().First(), q)
					} else {
						domains, err = lists.Get(ctx.Args().First())
					}
					if err != nil {
						return err
					}
					for _, d := range domains {
						fmt.Fprintln(os.Stdout, d)
					}
					return nil
				}),
			},
			{
				Name:      "add",
				Usage:     "add a domain to a list",
				ArgsUsage: "<blacklist|whitelist> <domain>",
				Action: withLists(func(ctx *cli.Context, lists *store.Lists) error {
					return lists.Add(ctx.Args().Get(0), ctx.Args().Get(1))
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove a domain from a list",
				ArgsUsage: "<blacklist|whitelist> <domain>",
				Action: withLists(func(ctx *cli.Context, lists *store.Lists) error {
					return lists.Remove(ctx.Args().Get(0), ctx.Args().Get(1))
				}),
			},
		},
	}
}

func withLists(fn func(ctx *cli.Context, lists *store.Lists) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, s.Lists())
	}
}

// Toggle sets the enable flag, with no argument it prints the current value
func Toggle(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	settings := s.Settings(cfg.Engine.EnabledDefault)
	if ctx.Args().Len() == 0 {
		enabled, err := settings.Enabled(ctx.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "enabled=%v\n", enabled)
		return nil
	}

	enabled, err := strconv.ParseBool(ctx.Args().First())
	if err != nil {
		return cli.Exit("expected true or false", 1)
	}
	return settings.SetEnabled(enabled)
}

// Stats prints the host counters
func Stats(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	all, err := s.Counters().All()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "threats blocked: %d\nsites checked:   %d\n", all[store.ThreatCount], all[store.SitesChecked])
	return nil
}
