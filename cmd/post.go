package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/bot"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/moltbook"
)

// PostCommand returns the post command
func PostCommand() *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Publish a post, or a generated project status post",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "submolt",
				Usage: "Submolt to post in",
				Value: "general",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Post title",
			},
			&cli.StringFlag{
				Name:  "content",
				Usage: "Post body",
			},
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Generate title and body from the project directory",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Render the post without publishing it",
			},
		},
		Action: runPost,
	}
}

func runPost(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	title := c.String("title")
	content := c.String("content")

	if c.Bool("status") {
		if a.reader == nil {
			return fmt.Errorf("no project directory configured, cannot generate a status post")
		}
		title, content = bot.RenderStatusPost(a.reader)
	}
	if title == "" {
		return fmt.Errorf("a post needs a title; pass --title or --status")
	}

	payload, err := a.client.CreatePost(c.Context, c.String("submolt"), title, content)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}
	if moltbook.IsDryRun(payload) {
		fmt.Printf("Dry run. Would post to m/%s:\n\n%s\n\n%s\n", c.String("submolt"), title, content)
		return nil
	}

	fmt.Printf("Posted %q to m/%s\n", title, c.String("submolt"))
	return nil
}
