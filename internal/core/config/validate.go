package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("plugin_dir", c.PluginDir, isDirectoryOrNotExist),
		criterio.Run("model.checkpoint_dir", c.Model.CheckpointDir, isDirectoryOrNotExist),
		c.validatePatterns(),
		c.validateQueue(),
	)
}

func (c *Config) validatePatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.ImagePatterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("image_patterns[%d]", i), fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) validateQueue() error {
	if c.Queue.PollIntervalMS < 1 {
		return criterio.NewFieldErrors("queue.poll_interval_ms", fmt.Errorf("must be at least 1"))
	}
	return nil
}

func notEmpty(value string) error {
	if value == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
