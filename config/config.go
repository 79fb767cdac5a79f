// Copyright © 2026 Xolmis contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Configuration loading from ~/.config/xolmis/config.json

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dandavison/xolmis/linkify"
	"github.com/dandavison/xolmis/rules"
)

// Config holds the wrapper configuration.
type Config struct {
	// Shell is the command to wrap. Empty means $SHELL, then /bin/bash.
	Shell string `json:"shell"`

	// URLTemplate is the hyperlink scheme with {abs_path} and optional
	// {line} placeholders.
	URLTemplate string `json:"urlTemplate"`

	// Rules lists enabled recognition rules by name, in priority order.
	// Empty means the full baseline set.
	Rules []string `json:"rules"`

	// RequireExistingPath gates matches on filesystem existence.
	RequireExistingPath bool `json:"requireExistingPath"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		URLTemplate:         linkify.DefaultURLTemplate,
		RequireExistingPath: true,
	}
}

// Load loads configuration from ~/.config/xolmis/config.json.
// If the file doesn't exist, returns default config.
// Command-line flags override config file values.
func Load() (*Config, error) {
	cfg := Default()

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Config: Failed to get user config dir: %v", err)
		return cfg, nil
	}

	configPath := filepath.Join(configDir, "xolmis", "config.json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config: No config file at %s, using defaults", configPath)
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", configPath, err)
	}

	log.Printf("Config: Loaded from %s", configPath)
	return cfg, nil
}

// Validate checks the template and rule names without building a pipeline.
func (c *Config) Validate() error {
	if c.URLTemplate != "" {
		if _, err := linkify.ParseURLTemplate(c.URLTemplate); err != nil {
			return err
		}
	}
	if len(c.Rules) > 0 {
		if _, ok := rules.ByName(c.Rules); !ok {
			return fmt.Errorf("unknown rule name in %v", c.Rules)
		}
	}
	return nil
}

// RuleSet resolves the configured rule names to the rule list, defaulting
// to the full baseline set.
func (c *Config) RuleSet() []rules.Rule {
	if len(c.Rules) == 0 {
		return rules.Baseline()
	}
	rs, ok := rules.ByName(c.Rules)
	if !ok {
		log.Printf("Config: unknown rule name in %v, using baseline set", c.Rules)
		return rules.Baseline()
	}
	return rs
}

// Save saves the configuration to ~/.config/xolmis/config.json.
func (c *Config) Save() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return err
	}

	xolmisDir := filepath.Join(configDir, "xolmis")
	if err := os.MkdirAll(xolmisDir, 0755); err != nil {
		return err
	}

	configPath := filepath.Join(xolmisDir, "config.json")

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return err
	}

	log.Printf("Config: Saved to %s", configPath)
	return nil
}
