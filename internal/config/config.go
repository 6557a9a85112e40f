// Package config loads the tool configuration from YAML. The loaded struct
// is immutable by convention: it is built once at startup and passed down
// into the loop, never mutated.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config location relative to the working directory.
const DefaultPath = ".tabtidy/config.yaml"

// Config is the full tool configuration.
type Config struct {
	// MaxPasses is the convergence loop ceiling.
	MaxPasses int `yaml:"max_passes"`

	// FixTimeout bounds one corrective invocation, e.g. "30m".
	FixTimeout string `yaml:"fix_timeout"`

	// MaxViolations caps the violation list handed to the fixer per pass.
	MaxViolations int `yaml:"max_violations"`

	// FreshnessWindow skips targets whose working copy changed this
	// recently, e.g. "10m".
	FreshnessWindow string `yaml:"freshness_window"`

	// Fixer selects the corrective collaborator: "agent" or "api".
	Fixer string `yaml:"fixer"`

	// AgentCommand is the coding-agent binary for the agent fixer.
	AgentCommand string `yaml:"agent_command"`

	// SkipPermissions passes the agent's permission-bypass flag.
	SkipPermissions bool `yaml:"skip_permissions"`

	// Model overrides the API fixer's model.
	Model string `yaml:"model,omitempty"`

	// LedgerPath is the run ledger database location.
	LedgerPath string `yaml:"ledger_path"`

	// Targets lists workbooks to clean when the clean command is run
	// without arguments.
	Targets []string `yaml:"targets,omitempty"`
}

// DefaultConfig returns the standard settings.
func DefaultConfig() *Config {
	return &Config{
		MaxPasses:       10,
		FixTimeout:      "30m",
		MaxViolations:   50,
		FreshnessWindow: "10m",
		Fixer:           "agent",
		AgentCommand:    "claude",
		SkipPermissions: true,
		LedgerPath:      ".tabtidy/runs.db",
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists, otherwise the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Validate checks field values and durations.
func (c *Config) Validate() error {
	if c.MaxPasses < 1 {
		return fmt.Errorf("max_passes must be at least 1, got %d", c.MaxPasses)
	}
	if c.Fixer != "agent" && c.Fixer != "api" {
		return fmt.Errorf("fixer must be %q or %q, got %q", "agent", "api", c.Fixer)
	}
	if _, err := c.ParseFixTimeout(); err != nil {
		return fmt.Errorf("invalid fix_timeout %q: %w", c.FixTimeout, err)
	}
	if _, err := c.ParseFreshnessWindow(); err != nil {
		return fmt.Errorf("invalid freshness_window %q: %w", c.FreshnessWindow, err)
	}
	return nil
}

// ParseFixTimeout returns the fix timeout as a duration; empty means zero.
func (c *Config) ParseFixTimeout() (time.Duration, error) {
	if c.FixTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.FixTimeout)
}

// ParseFreshnessWindow returns the freshness window; empty means zero.
func (c *Config) ParseFreshnessWindow() (time.Duration, error) {
	if c.FreshnessWindow == "" {
		return 0, nil
	}
	return time.ParseDuration(c.FreshnessWindow)
}

// Save writes the config to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
