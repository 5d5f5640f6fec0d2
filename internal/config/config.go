// Package config assembles application settings from defaults, an
// optional TOML file and environment variables, in that order of
// precedence (environment wins). A .env file in the working directory
// is loaded into the environment first, so local development and the
// documented EMAIL_ID/APP_PASSWORD workflow both work unchanged.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/logger"
)

// fileConfig mirrors the optional TOML config file layout.
type fileConfig struct {
	EmailID        string  `toml:"email_id"`
	AppPassword    string  `toml:"app_password"`
	IMAPHost       string  `toml:"imap_host"`
	IMAPPort       string  `toml:"imap_port"`
	StartDate      string  `toml:"start_date"`
	EndDate        string  `toml:"end_date"`
	Provider       string  `toml:"provider"`
	BaseURL        string  `toml:"base_url"`
	LLMModel       string  `toml:"llm_model"`
	EmbeddingModel string  `toml:"embedding_model"`
	Temperature    float64 `toml:"temperature"`
	IndexDir       string  `toml:"index_dir"`
	Collection     string  `toml:"collection"`
	RetrievalCount int     `toml:"retrieval_count"`
}

// DefaultPath returns the default config file location,
// ~/.epistle/config.toml. Returns an empty string when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".epistle", "config.toml")
}

// Load builds the settings from defaults, the TOML file at path (the
// default location when path is empty; a missing file is not an error)
// and environment variables. The result is not validated; callers run
// Settings.Validate before using it.
func Load(path string) (domain.Settings, error) {
	// Best effort: a missing .env file is the normal case.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	settings := domain.DefaultSettings()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := applyFile(&settings, path); err != nil {
			return domain.Settings{}, err
		}
	}

	applyEnv(&settings)

	return settings, nil
}

// applyFile overlays values from the TOML file at path, if it exists.
func applyFile(settings *domain.Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidConfig, path, err)
	}
	logger.Debug("loaded config file %s", path)

	setString(&settings.EmailID, fc.EmailID)
	setString(&settings.AppPassword, fc.AppPassword)
	setString(&settings.IMAPHost, fc.IMAPHost)
	setString(&settings.IMAPPort, fc.IMAPPort)
	setString(&settings.StartDate, fc.StartDate)
	setString(&settings.EndDate, fc.EndDate)
	if fc.Provider != "" {
		settings.Provider = domain.AIProvider(fc.Provider)
	}
	setString(&settings.BaseURL, fc.BaseURL)
	setString(&settings.LLMModel, fc.LLMModel)
	setString(&settings.EmbeddingModel, fc.EmbeddingModel)
	if fc.Temperature != 0 {
		settings.Temperature = fc.Temperature
	}
	setString(&settings.IndexDir, fc.IndexDir)
	setString(&settings.Collection, fc.Collection)
	if fc.RetrievalCount != 0 {
		settings.RetrievalCount = fc.RetrievalCount
	}

	return nil
}

// applyEnv overlays values from environment variables.
func applyEnv(settings *domain.Settings) {
	setEnvString(&settings.EmailID, "EMAIL_ID")
	setEnvString(&settings.AppPassword, "APP_PASSWORD")
	setEnvString(&settings.IMAPHost, "IMAP_HOST")
	setEnvString(&settings.IMAPPort, "IMAP_PORT")
	setEnvString(&settings.StartDate, "START_DATE")
	setEnvString(&settings.EndDate, "END_DATE")
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		settings.Provider = domain.AIProvider(v)
	}
	setEnvString(&settings.BaseURL, "OLLAMA_BASE_URL")
	setEnvString(&settings.LLMModel, "OLLAMA_LLM_MODEL")
	setEnvString(&settings.EmbeddingModel, "OLLAMA_EMBEDDING_MODEL")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			settings.Temperature = f
		} else {
			logger.Warn("ignoring malformed LLM_TEMPERATURE %q", v)
		}
	}
	setEnvString(&settings.IndexDir, "INDEX_DIR")
	setEnvString(&settings.Collection, "COLLECTION_NAME")
	if v := os.Getenv("DEFAULT_RETRIEVAL_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.RetrievalCount = n
		} else {
			logger.Warn("ignoring malformed DEFAULT_RETRIEVAL_COUNT %q", v)
		}
	}

	// Cloud provider keys. The provider selection decides which one is
	// actually used.
	switch settings.Provider {
	case domain.AIProviderOpenAI:
		setEnvString(&settings.APIKey, "OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		setEnvString(&settings.APIKey, "ANTHROPIC_API_KEY")
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setEnvString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
