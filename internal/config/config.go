// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the server configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags or environment variables.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Paths
	DataDir      string `json:"data_dir,omitempty"`      // Project and embedding storage
	OutputDir    string `json:"output_dir,omitempty"`    // Generated PDFs
	TemplatesDir string `json:"templates_dir,omitempty"` // LaTeX templates

	// Credentials
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	GitHubToken string `json:"github_token,omitempty"` // Optional, raises the GitHub rate limit
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Scrape behavior
	IncludeForks    bool `json:"include_forks,omitempty"`    // Ingest forked repositories too
	IncludeArchived bool `json:"include_archived,omitempty"` // Ingest archived repositories too
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Only the
// credential fields have environment equivalents.
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// Validate checks that the configuration has valid values.
// Required fields are checked later, after merging with flags and env.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.TemplatesDir != "" {
		if _, err := os.Stat(c.TemplatesDir); os.IsNotExist(err) {
			return fmt.Errorf("config error: templates directory not found: %s", c.TemplatesDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags and environment variables.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.TemplatesDir == "" {
		result.TemplatesDir = defaults.TemplatesDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GitHubToken == "" {
		result.GitHubToken = defaults.GitHubToken
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
