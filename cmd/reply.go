package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/bot"
)

// ReplyCommand returns the reply command
func ReplyCommand() *cli.Command {
	return &cli.Command{
		Name:  "reply",
		Usage: "Reply to unanswered comments on the agent's posts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "post-id",
				Usage: "Only reply on this post",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Scan all of the agent's recent posts",
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "Override the per-run reply budget",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Generate and draft replies without sending anything",
			},
			&cli.BoolFlag{
				Name:  "draft-only",
				Usage: "Write reply drafts to disk and stop before sending",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Comment sort order when scanning posts",
				Value: "new",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "How many comments to fetch per post",
				Value: 100,
			},
		},
		Action: runReply,
	}
}

func runReply(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := a.newReplyService(bot.Config{
		MaxPerRun:    c.Int("max"),
		DraftOnly:    c.Bool("draft-only"),
		CommentSort:  c.String("sort"),
		CommentLimit: c.Int("limit"),
	})

	res, err := svc.Run(c.Context, bot.RunRequest{
		PostID: c.String("post-id"),
		All:    c.Bool("all"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %d comments considered, %d skipped, %d replies sent\n",
		res.RunID, res.Considered, res.Skipped, res.Sent())
	for _, rep := range res.Replies {
		fmt.Printf("  [%s] %s -> %s (%s)\n", rep.Outcome, rep.CommentID, rep.DraftPath, rep.Status)
	}
	return nil
}
