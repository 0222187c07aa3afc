package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if filepath.Clean(c.Paths.DownloadDir) == filepath.Clean(c.Paths.LibraryDir) {
		return errors.New("paths.download_dir and paths.library_dir must differ")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind %q must be host:port: %w", c.API.Bind, err)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Mode {
	case "", classifierModeRules:
		return nil
	case classifierModeLLM:
		if !c.LLMEnabled() {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("llm.api_key is required when classifier.mode is %q. Set SHELVER_LLM_API_KEY or edit %s (create with 'shelver config init')", classifierModeLLM, defaultPath)
		}
		return nil
	default:
		return fmt.Errorf("classifier.mode must be %q or %q, got %q", classifierModeLLM, classifierModeRules, c.Classifier.Mode)
	}
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
