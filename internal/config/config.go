// Package config provides YAML-file configuration loading with
// environment-variable overrides for tlsrpt-extractor.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	IMAP   IMAPConfig   `yaml:"imap"`
	Output OutputConfig `yaml:"output"`
}

// IMAPConfig holds the mailbox session settings.
type IMAPConfig struct {
	Server             string `yaml:"server"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	Mailbox            string `yaml:"mailbox"`
	ReadOnly           bool   `yaml:"read_only"`
	UnseenOnly         bool   `yaml:"unseen_only"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// OutputConfig holds the record output settings. OwnerUID and OwnerGID of -1
// disable the post-write ownership change.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	OwnerUID int    `yaml:"owner_uid"`
	OwnerGID int    `yaml:"owner_gid"`
}

// Load loads configuration from environment variables with defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer, then
// overrides with environment variables.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()

	return cfg, nil
}

// Validate checks that the settings required for a mailbox session are set.
func (c *Config) Validate() error {
	if c.IMAP.Server == "" {
		return fmt.Errorf("imap server is required")
	}
	if c.IMAP.Username == "" || c.IMAP.Password == "" {
		return fmt.Errorf("imap credentials are required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.IMAP.Mailbox = "INBOX"
	c.IMAP.ReadOnly = true
	c.IMAP.UnseenOnly = true
	c.Output.Dir = "records"
	c.Output.OwnerUID = -1
	c.Output.OwnerGID = -1
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("TLSRPT_IMAP_SERVER"); v != "" {
		c.IMAP.Server = v
	}
	if v := os.Getenv("TLSRPT_IMAP_USERNAME"); v != "" {
		c.IMAP.Username = v
	}
	if v := os.Getenv("TLSRPT_IMAP_PASSWORD"); v != "" {
		c.IMAP.Password = v
	}
	if v := os.Getenv("TLSRPT_IMAP_MAILBOX"); v != "" {
		c.IMAP.Mailbox = v
	}
	if v := os.Getenv("TLSRPT_IMAP_READ_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IMAP.ReadOnly = b
		}
	}
	if v := os.Getenv("TLSRPT_IMAP_UNSEEN_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IMAP.UnseenOnly = b
		}
	}
	if v := os.Getenv("TLSRPT_IMAP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IMAP.InsecureSkipVerify = b
		}
	}

	if v := os.Getenv("TLSRPT_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("TLSRPT_OUTPUT_OWNER_UID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Output.OwnerUID = id
		}
	}
	if v := os.Getenv("TLSRPT_OUTPUT_OWNER_GID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Output.OwnerGID = id
		}
	}
}
