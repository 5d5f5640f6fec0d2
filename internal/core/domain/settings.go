package domain

import (
	"fmt"
	"strings"
	"time"
)

// AIProvider identifies the service hosting the embedding and language
// models.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API (LLM only; it has
	// no embedding endpoint).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// DateLayout is the accepted format for date-range settings and flags.
const DateLayout = "2006-01-02"

// Settings is the application configuration, constructed once at
// process start and passed into every component constructor. There is
// no ambient lookup; validation happens before any pipeline step runs.
type Settings struct {
	// EmailID is the mailbox account identifier (required).
	EmailID string

	// AppPassword is the mailbox credential (required).
	AppPassword string

	// IMAPHost and IMAPPort locate the IMAP server.
	IMAPHost string
	IMAPPort string

	// StartDate and EndDate bound the default fetch range (ISO 8601).
	// The end date is exclusive, matching the IMAP BEFORE criterion.
	StartDate string
	EndDate   string

	// Provider selects the embedding/LLM backend.
	Provider AIProvider

	// BaseURL is the model service address (required).
	BaseURL string

	// LLMModel is the language model name (required).
	LLMModel string

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// APIKey authenticates cloud providers; unused for ollama.
	APIKey string

	// Temperature controls generation randomness.
	Temperature float64

	// IndexDir is the persistence location for the vector index.
	IndexDir string

	// Collection names the indexed document set.
	Collection string

	// RetrievalCount is the default number of documents retrieved per
	// query (k).
	RetrievalCount int
}

// DefaultSettings returns the documented defaults. Required fields
// (account, credential) are intentionally left empty.
func DefaultSettings() Settings {
	return Settings{
		IMAPHost:       "imap.gmail.com",
		IMAPPort:       "993",
		StartDate:      "2025-11-28",
		EndDate:        "2025-11-30",
		Provider:       AIProviderOllama,
		BaseURL:        "http://localhost:11434",
		LLMModel:       "llama3.1:8b",
		EmbeddingModel: "llama3.1:8b",
		Temperature:    0.2,
		IndexDir:       "index_store",
		Collection:     "emails",
		RetrievalCount: 50,
	}
}

// Validate checks that all required settings are present and
// well-formed. Returns an error wrapping ErrInvalidConfig listing
// every missing field.
func (s *Settings) Validate() error {
	var missing []string

	if s.EmailID == "" {
		missing = append(missing, "EMAIL_ID is required")
	}
	if s.AppPassword == "" {
		missing = append(missing, "APP_PASSWORD is required")
	}
	if s.BaseURL == "" {
		missing = append(missing, "base URL is required")
	}
	if s.LLMModel == "" {
		missing = append(missing, "LLM model is required")
	}
	if !s.Provider.IsValid() {
		missing = append(missing, fmt.Sprintf("unknown provider %q", s.Provider))
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		missing = append(missing, fmt.Sprintf("API key is required for provider %q", s.Provider))
	}
	if _, err := time.Parse(DateLayout, s.StartDate); err != nil {
		missing = append(missing, fmt.Sprintf("start date %q is not YYYY-MM-DD", s.StartDate))
	}
	if _, err := time.Parse(DateLayout, s.EndDate); err != nil {
		missing = append(missing, fmt.Sprintf("end date %q is not YYYY-MM-DD", s.EndDate))
	}
	if s.RetrievalCount <= 0 {
		missing = append(missing, "retrieval count must be positive")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(missing, "\n  - "))
	}
	return nil
}
