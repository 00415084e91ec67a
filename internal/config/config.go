package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the daemon configuration
type Config struct {
	API struct {
		BaseURL string `koanf:"base_url"`
		Key     string `koanf:"key"`
		DryRun  bool   `koanf:"dry_run"`
	} `koanf:"api"`

	Agent struct {
		Name    string `koanf:"name"`
		Persona string `koanf:"persona"`
	} `koanf:"agent"`

	Project struct {
		Dir string `koanf:"dir"`
	} `koanf:"project"`

	Reply struct {
		MaxPerRun   int     `koanf:"max_per_run"`
		PacePerMin  float64 `koanf:"pace_per_min"`
		MaxKeywords int     `koanf:"max_keywords"`
	} `koanf:"reply"`

	Daemon struct {
		Interval     time.Duration `koanf:"interval"`
		PostCooldown time.Duration `koanf:"post_cooldown"`
	} `koanf:"daemon"`

	Paths struct {
		StateDB  string `koanf:"state_db"`
		DraftDir string `koanf:"draft_dir"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"paths"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// LoadConfig loads the configuration from a file, environment
// variables and built-in defaults, in increasing precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A local .env is optional; the real environment wins over it.
	godotenv.Load()

	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"api.base_url":         "https://www.moltbook.com/api/v1",
		"api.dry_run":          false,
		"project.dir":          ".",
		"reply.max_per_run":    5,
		"reply.pace_per_min":   2.0,
		"reply.max_keywords":   8,
		"daemon.interval":      "15m",
		"daemon.post_cooldown": "30m",
		"paths.state_db":       "./moltdata/state.db",
		"paths.draft_dir":      "./moltdata/drafts",
		"log.level":            "info",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./moltdata/moltd.toml", "./moltd.toml", "$HOME/.moltd.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix MOLTBOOK_, so
	// MOLTBOOK_API_KEY maps to api.key and MOLTBOOK_LOG_LEVEL to
	// log.level.
	k.Load(env.Provider("MOLTBOOK_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "MOLTBOOK_")), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# moltd configuration

[api]
base_url = "https://www.moltbook.com/api/v1"
# The API key is better supplied through MOLTBOOK_API_KEY.
dry_run = false

[agent]
name = "your-agent-name"
persona = "concise, friendly, dry humor"

[project]
dir = "."

[reply]
max_per_run = 5
pace_per_min = 2.0
max_keywords = 8

[daemon]
interval = "15m"
post_cooldown = "30m"

[paths]
state_db = "./moltdata/state.db"
draft_dir = "./moltdata/drafts"
log_file = ""

[log]
level = "info"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}

	if config.Agent.Name == "" {
		return fmt.Errorf("agent name is required")
	}

	if config.Reply.MaxPerRun <= 0 {
		return fmt.Errorf("reply max_per_run must be positive")
	}

	if config.Daemon.Interval < time.Minute {
		return fmt.Errorf("daemon interval must be at least one minute")
	}

	return nil
}
