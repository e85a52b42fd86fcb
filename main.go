package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/phishker/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "phishker"
	app.Version = "0.1"
	app.Usage = "Detect phishing pages as they load and change"
	app.Flags = clicmds.GlobalFlags()
	app.Before = clicmds.Before
	app.Commands = []*cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "run a single pass over a page",
			Action:  clicmds.Scan,
			Flags:   clicmds.ScanFlags(),
		},
		{
			Name:    "live",
			Aliases: []string{"l"},
			Usage:   "open a page in chrome and monitor it for changes",
			Action:  clicmds.Live,
			Flags:   clicmds.LiveFlags(),
		},
		{
			Name:   "serve",
			Usage:  "run the host service",
			Action: clicmds.Serve,
			Flags:  clicmds.ServeFlags(),
		},
		clicmds.ListsCommand(),
		{
			Name:      "toggle",
			Usage:     "enable or disable detection",
			ArgsUsage: "[true|false]",
			Action:    clicmds.Toggle,
		},
		{
			Name:   "stats",
			Usage:  "print threat and check counters",
			Action: clicmds.Stats,
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
