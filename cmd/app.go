// Package cmd wires the moltd CLI commands.
package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/bot"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/config"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/drafts"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/logging"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/moltbook"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/project"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/reply"
	"github.com/p3nGu1nZz/moltbook-daemon/internal/state"
)

// app bundles everything a command needs after configuration is loaded.
type app struct {
	cfg     *config.Config
	cfgPath string
	client  *moltbook.Client
	store   *state.Store
	reader  *project.Reader
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// loadConfig reads and validates configuration for a CLI invocation.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.Bool("dry-run") {
		cfg.API.DryRun = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newPlatformClient(cfg *config.Config) *moltbook.Client {
	return moltbook.NewClient(moltbook.Options{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		DryRun:  cfg.API.DryRun,
		Logger:  log.Logger,
	})
}

// newApp builds the client, state store and optional project reader
// from configuration. Callers must Close it.
func newApp(c *cli.Context) (*app, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	if _, err := logging.Setup(cfg.Log.Level, cfg.Paths.LogFile); err != nil {
		return nil, err
	}

	store, err := state.Open(cfg.Paths.StateDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	a := &app{
		cfg:     cfg,
		cfgPath: c.String("config"),
		client:  newPlatformClient(cfg),
		store:   store,
	}

	if cfg.Project.Dir != "" {
		reader, err := project.NewReader(cfg.Project.Dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.Project.Dir).
				Msg("project directory unavailable, replies will carry no documentation hints")
		} else {
			a.reader = reader
		}
	}
	return a, nil
}

// newReplyService assembles the reply workflow from an app. Non-zero
// fields in overrides win over the file configuration.
func (a *app) newReplyService(overrides bot.Config) *bot.Service {
	persona := reply.ParsePersona(a.cfg.Agent.Persona)

	gen := &reply.Generator{Persona: persona, MaxKeywords: a.cfg.Reply.MaxKeywords}
	if a.reader != nil {
		gen.Project = a.reader.Name()
		gen.Searcher = project.NewSearcher(a.reader.Dir())
	}

	svcCfg := bot.Config{
		MaxPerRun:    a.cfg.Reply.MaxPerRun,
		PacePerMin:   a.cfg.Reply.PacePerMin,
		DraftOnly:    overrides.DraftOnly,
		CommentSort:  overrides.CommentSort,
		CommentLimit: overrides.CommentLimit,
	}
	if overrides.MaxPerRun > 0 {
		svcCfg.MaxPerRun = overrides.MaxPerRun
	}

	cfgPath := a.cfgPath
	svcCfg.Reauth = func() (*moltbook.Client, error) {
		// Credentials may have been rotated on disk; reload them.
		fresh, err := config.LoadConfig(cfgPath)
		if err != nil {
			return nil, err
		}
		return newPlatformClient(fresh), nil
	}

	return bot.NewService(a.client, a.store, gen, drafts.NewWriter(a.cfg.Paths.DraftDir), svcCfg, log.Logger)
}
