package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/gambit-engine/internal/domain"
	"github.com/anthropics/gambit-engine/internal/logging"
)

// AgentConfig selects and tunes the move generator's backing model.
type AgentConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	BaseURL     string  `json:"base_url"`
	APIKey      string  `json:"api_key"`
}

// Config holds the engine's runtime configuration.
type Config struct {
	DBPath   string         `json:"db_path"`
	GamesDir string         `json:"games_dir"`
	Goal     string         `json:"goal"`
	MaxTurns int            `json:"max_turns"`
	Agent    AgentConfig    `json:"agent"`
	Logging  logging.Config `json:"logging"`
}

// Load reads a JSON config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GamesDir == "" {
		c.GamesDir = "games"
	}
	if c.Goal == "" {
		c.Goal = "Win the game by checkmate"
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = 200
	}
	if c.Agent.Provider == "" {
		c.Agent.Provider = "ollama"
	}
	if c.Agent.Temperature == 0 {
		c.Agent.Temperature = 0.2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "db_path is required")
	}
	if c.Agent.Model == "" {
		problems = append(problems, "agent.model is required")
	}
	switch c.Agent.Provider {
	case "ollama", "openai", "anthropic":
	default:
		problems = append(problems, fmt.Sprintf("agent.provider %q is not supported", c.Agent.Provider))
	}
	if c.MaxTurns < 0 {
		problems = append(problems, "max_turns must not be negative")
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}
