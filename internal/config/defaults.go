package config

const (
	defaultConfigPath   = "~/.config/shelver/config.toml"
	defaultDownloadDir  = "~/downloads"
	defaultLibraryDir   = "~/library"
	defaultStateDir     = "~/.local/share/shelver"
	defaultLogDir       = "~/.local/share/shelver/logs"
	defaultAPIBind      = "127.0.0.1:7610"
	defaultLLMBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel     = "google/gemini-3-flash-preview"
	defaultLLMReferer   = "https://github.com/shelver/shelver"
	defaultLLMTitle     = "Shelver"
	defaultLLMTimeout   = 60
	defaultTMDBLanguage = "en-US"
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultNtfyTimeout  = 10
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	classifierModeLLM   = "llm"
	classifierModeRules = "rules"
	logFormatConsole    = "console"
	logFormatJSON       = "json"
)

// Classifier modes accepted in [classifier] mode.
const (
	ClassifierLLM   = classifierModeLLM
	ClassifierRules = classifierModeRules
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LibraryDir:  defaultLibraryDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Classifier: Classifier{
			Search:   true,
			Fallback: true,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Execution: Execution{
			VerifyCopies: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
