package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// AuthorizeCommand returns the authorize command
func AuthorizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "authorize",
		Usage: "Check credentials and manage identity tokens",
		Subcommands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Verify the configured API key works",
				Action: runAuthorizeCheck,
			},
			{
				Name:   "token",
				Usage:  "Create a short-lived identity token",
				Action: runAuthorizeToken,
			},
			{
				Name:  "verify",
				Usage: "Verify an identity token presented by another agent",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Token to verify",
						Required: true,
					},
				},
				Action: runAuthorizeVerify,
			},
		},
	}
}

func runAuthorizeCheck(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.client.TestConnection(c.Context) {
		return fmt.Errorf("connection test failed; check MOLTBOOK_API_KEY")
	}

	agent, err := a.client.GetMe(c.Context)
	if err != nil {
		return err
	}
	if err := a.store.SetAgent(agent.ID, agent.Name); err != nil {
		return fmt.Errorf("failed to cache agent identity: %w", err)
	}
	fmt.Printf("Authenticated as %s (%s)\n", agent.Name, agent.ID)
	return nil
}

func runAuthorizeToken(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	payload, err := a.client.CreateIdentityToken(c.Context)
	if err != nil {
		return fmt.Errorf("failed to create identity token: %w", err)
	}
	if token, ok := payload["token"].(string); ok && token != "" {
		fmt.Println(token)
		return nil
	}
	return fmt.Errorf("platform returned no token")
}

func runAuthorizeVerify(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	payload, err := a.client.VerifyIdentityToken(c.Context, c.String("token"))
	if err != nil {
		return fmt.Errorf("failed to verify identity token: %w", err)
	}
	if valid, ok := payload["valid"].(bool); ok && valid {
		fmt.Println("Token is valid")
		return nil
	}
	return fmt.Errorf("token is not valid")
}
