package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.3.0"

func main() {
	app := &cli.App{
		Name:    "nword-counter",
		Usage:   "Guild word counter service: message ingest, vote verification and leaderboards",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "nword_counter.toml",
				EnvVars: []string{"NWC_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			tokenCommand(),
			configCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
