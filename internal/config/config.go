// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alienxp03/panelist/internal/core"
	"github.com/alienxp03/panelist/internal/provider"
)

// Config represents the application configuration.
type Config struct {
	Defaults  DefaultsConfig            `yaml:"defaults"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Personas  []PersonaConfig           `yaml:"personas,omitempty"`
	Server    ServerConfig              `yaml:"server,omitempty"`
	Storage   StorageConfig             `yaml:"storage,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DefaultsConfig holds default session settings.
type DefaultsConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Rounds      int    `yaml:"rounds"`
	Concurrency int    `yaml:"concurrency"`
}

// ProviderConfig holds provider-specific settings.
type ProviderConfig struct {
	Command      string        `yaml:"command"`
	Args         []string      `yaml:"args,omitempty"`
	DefaultModel string        `yaml:"default_model,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	Enabled      bool          `yaml:"enabled"`
}

// PersonaConfig holds custom persona definitions layered on top of the
// built-in roster.
type PersonaConfig struct {
	ID                   string  `yaml:"id"`
	Name                 string  `yaml:"name"`
	Avatar               string  `yaml:"avatar,omitempty"`
	Role                 string  `yaml:"role"`
	Goal                 string  `yaml:"goal,omitempty"`
	Backstory            string  `yaml:"backstory,omitempty"`
	SentimentBias        float64 `yaml:"sentiment_bias"`
	EngagementLevel      float64 `yaml:"engagement_level"`
	ControversyTolerance float64 `yaml:"controversy_tolerance"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Provider:    "claude",
			Model:       "",
			Rounds:      3,
			Concurrency: 4,
		},
		Server: ServerConfig{
			Port: 8183,
		},
		Providers: map[string]ProviderConfig{
			"claude": {
				Command: "claude",
				Args:    []string{"--print"},
				Timeout: 5 * time.Minute,
				Enabled: true,
			},
			"gemini": {
				Command: "gemini",
				Timeout: 5 * time.Minute,
				Enabled: true,
			},
			"codex": {
				Command: "codex",
				Timeout: 5 * time.Minute,
				Enabled: true,
			},
			"mock": {
				Timeout: 1 * time.Minute,
				Enabled: true,
			},
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Merge with defaults for any missing providers
	defaultCfg := Default()
	for name, defaultProvider := range defaultCfg.Providers {
		if _, exists := cfg.Providers[name]; !exists {
			cfg.Providers[name] = defaultProvider
		}
	}

	// Apply .env overrides if file exists
	if env, err := LoadEnv(".env"); err == nil {
		ApplyEnvOverrides(cfg, env)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetProvider returns the configuration for a provider.
func (c *Config) GetProvider(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// CustomPersonas converts the configured persona entries into profiles to
// layer over the built-in roster.
func (c *Config) CustomPersonas() []core.PersonaProfile {
	profiles := make([]core.PersonaProfile, 0, len(c.Personas))
	for _, p := range c.Personas {
		profiles = append(profiles, core.PersonaProfile{
			ID:                   p.ID,
			DisplayName:          p.Name,
			Avatar:               p.Avatar,
			Role:                 p.Role,
			Goal:                 p.Goal,
			Backstory:            p.Backstory,
			SentimentBias:        p.SentimentBias,
			EngagementLevel:      p.EngagementLevel,
			ControversyTolerance: p.ControversyTolerance,
		})
	}
	return profiles
}

// createGeneratorFromName creates a generator instance based on the
// provider name.
func createGeneratorFromName(name string, cfg ProviderConfig, model string) provider.Generator {
	if name == "mock" {
		return provider.NewMockGenerator()
	}
	if model == "" {
		model = cfg.DefaultModel
	}
	return provider.NewCLIGenerator(provider.Config{
		Name:    name,
		Command: cfg.Command,
		Args:    cfg.Args,
		Model:   model,
		Timeout: cfg.Timeout,
	})
}

// CreateGenerator creates a generator from this configuration, wrapped in
// the configured concurrency throttle.
func (c *Config) CreateGenerator(name, model string) (provider.Generator, error) {
	provCfg, ok := c.GetProvider(name)
	if !ok {
		return nil, fmt.Errorf("provider %s not found in config", name)
	}
	if !provCfg.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", name)
	}

	gen := createGeneratorFromName(name, provCfg, model)
	if c.Defaults.Concurrency > 0 {
		return provider.NewThrottle(gen, c.Defaults.Concurrency), nil
	}
	return gen, nil
}

// CreateRegistry creates a provider registry from this configuration.
func (c *Config) CreateRegistry() *provider.Registry {
	registry := provider.NewRegistry()
	for name, provCfg := range c.Providers {
		if !provCfg.Enabled {
			continue
		}
		registry.Register(createGeneratorFromName(name, provCfg, ""))
	}
	return registry
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "panelist.yaml"
	}
	return filepath.Join(home, ".panelist", "config.yaml")
}

// DefaultDBPath returns the default sqlite database path, honoring an
// explicit storage path from the config.
func (c *Config) DefaultDBPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "panelist.db"
	}
	return filepath.Join(home, ".panelist", "panelist.db")
}

// GenerateExample generates an example configuration file.
func GenerateExample() string {
	example := `# panelist configuration file
# Place this file at ~/.panelist/config.yaml

defaults:
  provider: claude          # Default generation provider
  model: ""                 # Default model (empty = provider default)
  rounds: 3                 # Default discussion rounds for focus groups
  concurrency: 4            # Max concurrent generation calls

server:
  port: 8183

providers:
  claude:
    command: claude
    args: ["--print"]
    default_model: ""       # e.g., "sonnet", "opus", "haiku"
    timeout: 5m
    enabled: true

  gemini:
    command: gemini
    default_model: ""
    timeout: 5m
    enabled: true

  codex:
    command: codex
    default_model: ""
    timeout: 5m
    enabled: true

# Custom personas layered over the built-in roster (optional)
personas:
  - id: security-auditor
    name: Security Auditor
    avatar: "🔒"
    role: application security engineer
    goal: Find the risks everyone else glosses over
    backstory: Ten years of breaking things before attackers do.
    sentiment_bias: -0.4
    engagement_level: 0.8
    controversy_tolerance: 0.9
`
	return example
}
