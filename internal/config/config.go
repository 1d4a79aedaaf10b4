// Package config provides configuration loading and persistence for shepherd.
//
// Configuration is loaded from:
// 1. ~/.shepherd/config.json (file)
// 2. Environment variables (override file values)
//
// Environment variables:
//   - SHEPHERD_CLAUDE_ARGS: space-separated extra args passed to claude
//   - SHEPHERD_WORKFLOWS_PATH: base directory for per-repo worktrees
//   - SHEPHERD_CONFIG_DIR: override config directory (for testing)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all user preferences for shepherd.
type Config struct {
	// ClaudeCommand is the assistant binary to spawn per session.
	ClaudeCommand string `json:"claude_command"`

	// ClaudeArgs are extra arguments passed to every claude invocation.
	ClaudeArgs []string `json:"claude_args"`

	// WorkflowsPath is the base directory under which per-repo worktrees
	// are created (workflows_path/<repo>/<session>).
	WorkflowsPath string `json:"workflows_path"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	if homeDir == "" {
		homeDir = "."
	}

	return &Config{
		ClaudeCommand: "claude",
		ClaudeArgs:    []string{},
		WorkflowsPath: filepath.Join(homeDir, "shepherd-worktrees"),
	}
}

// Dir returns the configuration directory path, creating it if necessary.
// Respects SHEPHERD_CONFIG_DIR environment variable for testing.
func Dir() (string, error) {
	if testDir := os.Getenv("SHEPHERD_CONFIG_DIR"); testDir != "" {
		if err := os.MkdirAll(testDir, 0700); err != nil {
			return "", fmt.Errorf("could not create config directory: %w", err)
		}
		return testDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".shepherd")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return dir, nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from file and applies environment variable
// overrides. A missing file writes the defaults so the user has something
// to edit; a corrupt file is an error so a typo never silently reverts the
// user to defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if args := os.Getenv("SHEPHERD_CLAUDE_ARGS"); args != "" {
		c.ClaudeArgs = strings.Fields(args)
	}
	if wp := os.Getenv("SHEPHERD_WORKFLOWS_PATH"); wp != "" {
		c.WorkflowsPath = wp
	}
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
