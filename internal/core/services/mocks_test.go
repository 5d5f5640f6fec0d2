package services

import (
	"context"
	"strings"
	"time"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService with a deterministic
// keyword-based vector so tests control similarity ordering.
type mockEmbedder struct {
	embedFn  func(text string) []float32
	embedErr error
	calls    int
}

func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := []float32{0.1, 0.1, 0.1}
	if strings.Contains(lower, "invoice") {
		vec[0] = 1
	}
	if strings.Contains(lower, "meeting") {
		vec[1] = 1
	}
	if strings.Contains(lower, "project") {
		vec[2] = 1
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.embedFn != nil {
		return m.embedFn(text), nil
	}
	return keywordVector(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int    { return 3 }
func (m *mockEmbedder) ModelName() string  { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error       { return nil }

// mockLLM implements driven.LLMService, capturing the messages of
// every Chat call for prompt assertions.
type mockLLM struct {
	answer      string
	chatErr     error
	gotMessages [][]driven.ChatMessage
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.answer, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.gotMessages = append(m.gotMessages, messages)
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// lastUserPrompt returns the user message of the most recent Chat call.
func (m *mockLLM) lastUserPrompt() string {
	if len(m.gotMessages) == 0 {
		return ""
	}
	messages := m.gotMessages[len(m.gotMessages)-1]
	for _, msg := range messages {
		if msg.Role == "user" {
			return msg.Content
		}
	}
	return ""
}

// mockMailbox implements driven.Mailbox.
type mockMailbox struct {
	messages []domain.RawMessage
	fetchErr error
	gotStart time.Time
	gotEnd   time.Time
}

func (m *mockMailbox) FetchRange(_ context.Context, start, end time.Time) ([]domain.RawMessage, error) {
	m.gotStart = start
	m.gotEnd = end
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.messages, nil
}
