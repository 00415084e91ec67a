package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/config"
)

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize a new configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "moltd.toml",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: runConfigValidate,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: runConfigShow,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if err := config.InitConfig(outputPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Created configuration file at %s\n", outputPath)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("Configuration is valid")
	return nil
}

func runConfigShow(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("api.base_url     = %s\n", cfg.API.BaseURL)
	fmt.Printf("api.key          = %s\n", maskKey(cfg.API.Key))
	fmt.Printf("api.dry_run      = %t\n", cfg.API.DryRun)
	fmt.Printf("agent.name       = %s\n", cfg.Agent.Name)
	fmt.Printf("agent.persona    = %s\n", cfg.Agent.Persona)
	fmt.Printf("project.dir      = %s\n", cfg.Project.Dir)
	fmt.Printf("reply.max_per_run = %d\n", cfg.Reply.MaxPerRun)
	fmt.Printf("daemon.interval  = %s\n", cfg.Daemon.Interval)
	fmt.Printf("paths.state_db   = %s\n", cfg.Paths.StateDB)
	fmt.Printf("paths.draft_dir  = %s\n", cfg.Paths.DraftDir)
	fmt.Printf("log.level        = %s\n", cfg.Log.Level)
	return nil
}

// maskKey hides all but the key prefix so logs and terminals never
// carry a usable credential.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:12] + strings.Repeat("*", 6)
}
