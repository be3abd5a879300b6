// Package config handles configuration loading and validation for annoforge.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/annoforge/annoforge/internal/core/item"
)

// Config holds the application configuration.
type Config struct {
	PluginDir         string      `yaml:"plugin_dir"`
	DefaultPromptType string      `yaml:"default_prompt_type"`
	ImagePatterns     []string    `yaml:"image_patterns"`
	Queue             QueueConfig `yaml:"queue"`
	Model             ModelConfig `yaml:"model"`
	DataDir           string      `yaml:"-"` // set by caller, not from config file
}

// QueueConfig tunes the task queue.
type QueueConfig struct {
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// ModelConfig points the model assistant at its inference backend.
type ModelConfig struct {
	Endpoint      string `yaml:"endpoint"`
	CheckpointDir string `yaml:"checkpoint_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPromptType: "Caption",
		ImagePatterns:     item.DefaultPatterns,
		Queue: QueueConfig{
			PollIntervalMS: 100,
		},
		Model: ModelConfig{
			Endpoint: "http://127.0.0.1:8000",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DefaultPromptType == "" {
		c.DefaultPromptType = defaults.DefaultPromptType
	}
	if len(c.ImagePatterns) == 0 {
		c.ImagePatterns = defaults.ImagePatterns
	}
	if c.Queue.PollIntervalMS == 0 {
		c.Queue.PollIntervalMS = defaults.Queue.PollIntervalMS
	}
	if c.Model.Endpoint == "" {
		c.Model.Endpoint = defaults.Model.Endpoint
	}
}
