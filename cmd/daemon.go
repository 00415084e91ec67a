package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/bot"
)

// DaemonCommand returns the daemon command
func DaemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Run the periodic loop: heartbeat, replies, project updates",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single pass and exit",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Override the loop interval",
			},
			&cli.StringFlag{
				Name:  "submolt",
				Usage: "Submolt for project update posts",
				Value: "general",
			},
			&cli.BoolFlag{
				Name:  "force-post",
				Usage: "Publish update posts even inside the cooldown window",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Draft and render everything without sending",
			},
		},
		Action: runDaemon,
	}
}

func runDaemon(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	interval := a.cfg.Daemon.Interval
	if v := c.Duration("interval"); v > 0 {
		interval = v
	}

	d := bot.NewDaemon(a.newReplyService(bot.Config{}), a.reader, a.store, bot.DaemonConfig{
		Submolt:      c.String("submolt"),
		Interval:     interval,
		PostCooldown: a.cfg.Daemon.PostCooldown,
		ForcePost:    c.Bool("force-post"),
	}, log.Logger)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Bool("once") {
		return d.Tick(ctx)
	}
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
