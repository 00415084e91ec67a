package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/p3nGu1nZz/moltbook-daemon/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "moltd",
		Usage:   "Moltbook agent daemon: replies to comments and posts project updates",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
		},
		Commands: []*cli.Command{
			cmd.ReplyCommand(),
			cmd.DaemonCommand(),
			cmd.PostCommand(),
			cmd.ConfigCommand(),
			cmd.AuthorizeCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
