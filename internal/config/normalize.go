package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeLLM()
	c.normalizeTMDB()
	c.normalizeClassifier()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.download_dir", &c.Paths.DownloadDir, defaultDownloadDir},
		{"paths.library_dir", &c.Paths.LibraryDir, defaultLibraryDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.def
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		c.API.Token = firstEnv("SHELVER_API_TOKEN")
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = firstEnv("SHELVER_LLM_API_KEY", "OPENROUTER_API_KEY", "GROK_KEY")
	}
	c.LLM.BaseURL = orDefault(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = orDefault(c.LLM.Model, defaultLLMModel)
	c.LLM.Referer = orDefault(c.LLM.Referer, defaultLLMReferer)
	c.LLM.Title = orDefault(c.LLM.Title, defaultLLMTitle)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		c.TMDB.APIKey = firstEnv("TMDB_API_KEY")
	}
	c.TMDB.BaseURL = orDefault(c.TMDB.BaseURL, defaultTMDBBaseURL)
	c.TMDB.Language = orDefault(c.TMDB.Language, defaultTMDBLanguage)
}

func (c *Config) normalizeClassifier() {
	c.Classifier.Mode = strings.ToLower(strings.TrimSpace(c.Classifier.Mode))
	if c.Classifier.Mode == "" {
		if c.LLMEnabled() {
			c.Classifier.Mode = classifierModeLLM
		} else {
			c.Classifier.Mode = classifierModeRules
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = firstEnv("SHELVER_NTFY_TOPIC")
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case logFormatJSON:
	default:
		c.Logging.Format = logFormatConsole
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
