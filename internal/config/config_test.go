package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// clearEnv unsets every variable the loader reads so host environment
// leakage cannot skew the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EMAIL_ID", "APP_PASSWORD", "IMAP_HOST", "IMAP_PORT",
		"START_DATE", "END_DATE", "AI_PROVIDER",
		"OLLAMA_BASE_URL", "OLLAMA_LLM_MODEL", "OLLAMA_EMBEDDING_MODEL",
		"LLM_TEMPERATURE", "INDEX_DIR", "COLLECTION_NAME",
		"DEFAULT_RETRIEVAL_COUNT", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// missingFile returns a config path that does not exist.
func missingFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

func TestLoad_DefaultsWhenNothingSet(t *testing.T) {
	clearEnv(t)

	settings, err := Load(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMAIL_ID", "user@example.com")
	t.Setenv("APP_PASSWORD", "secret")
	t.Setenv("START_DATE", "2025-01-01")
	t.Setenv("END_DATE", "2025-02-01")
	t.Setenv("OLLAMA_BASE_URL", "http://models.internal:11434")
	t.Setenv("OLLAMA_LLM_MODEL", "mistral")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("DEFAULT_RETRIEVAL_COUNT", "10")
	t.Setenv("COLLECTION_NAME", "work-mail")

	settings, err := Load(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", settings.EmailID)
	assert.Equal(t, "secret", settings.AppPassword)
	assert.Equal(t, "2025-01-01", settings.StartDate)
	assert.Equal(t, "2025-02-01", settings.EndDate)
	assert.Equal(t, "http://models.internal:11434", settings.BaseURL)
	assert.Equal(t, "mistral", settings.LLMModel)
	assert.Equal(t, 0.7, settings.Temperature)
	assert.Equal(t, 10, settings.RetrievalCount)
	assert.Equal(t, "work-mail", settings.Collection)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
email_id = "file@example.com"
llm_model = "llama3.2"
retrieval_count = 25
`), 0600))

	settings, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "file@example.com", settings.EmailID)
	assert.Equal(t, "llama3.2", settings.LLMModel)
	assert.Equal(t, 25, settings.RetrievalCount)
	// Untouched fields keep defaults.
	assert.Equal(t, "emails", settings.Collection)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`llm_model = "from-file"`), 0600))
	t.Setenv("OLLAMA_LLM_MODEL", "from-env")

	settings, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.LLMModel)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0600))

	_, err := Load(path)

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoad_MalformedNumericEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_TEMPERATURE", "warm")
	t.Setenv("DEFAULT_RETRIEVAL_COUNT", "many")

	settings, err := Load(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, 0.2, settings.Temperature)
	assert.Equal(t, 50, settings.RetrievalCount)
}

func TestLoad_APIKeyFollowsProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")

	settings, err := Load(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Provider)
	assert.Equal(t, "sk-test", settings.APIKey)

	t.Setenv("AI_PROVIDER", "anthropic")
	settings, err = Load(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, "ak-test", settings.APIKey)
}
