package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
	"github.com/epistle-labs/epistle/internal/core/ports/driving"
	"github.com/epistle-labs/epistle/internal/logger"
)

// Ensure QueryEngine implements the interface.
var _ driving.QueryService = (*QueryEngine)(nil)

// systemPrompt is the fixed persona and directives for every answer.
const systemPrompt = `You are an intelligent email assistant. Answer the user's question based on the provided email context.
Be concise, accurate, and helpful. If the context doesn't contain enough information to answer the question, say so.
When counting or listing emails, be specific and accurate based on the provided context.`

// QueryEngine answers questions over a loaded index. Constructing one
// requires a successfully opened index; there is no transition back,
// a session is torn down by process exit. The engine is not safe for
// concurrent use: exactly one question is processed at a time.
type QueryEngine struct {
	index        driven.MessageIndex
	embedder     driven.EmbeddingService
	llm          driven.LLMService
	conversation *domain.Conversation
	k            int
	temperature  float64
}

// NewQueryEngine creates a query engine with fresh conversation
// memory. k is the number of documents retrieved per question.
func NewQueryEngine(
	index driven.MessageIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	k int,
	temperature float64,
) *QueryEngine {
	return &QueryEngine{
		index:        index,
		embedder:     embedder,
		llm:          llm,
		conversation: &domain.Conversation{},
		k:            k,
		temperature:  temperature,
	}
}

// Answer retrieves the top-k documents for the question, assembles a
// prompt from system instructions, conversation history, retrieved
// context and the question, and invokes the language model. The turn
// is recorded only on success; a failed question leaves the history
// untouched and the session usable.
func (e *QueryEngine) Answer(ctx context.Context, question string) (string, error) {
	logger.Section("Query Execution")
	logger.Debug("Question: %q", question)

	hits, err := e.Search(ctx, question, e.k)
	if err != nil {
		return "", err
	}
	logger.Debug("Retrieved %d documents", len(hits))

	prompt := assemblePrompt(e.conversation.Render(), hits, question)

	messages := []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	answer, err := e.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: e.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	answer = strings.TrimSpace(answer)

	e.conversation.Append(domain.Turn{Question: question, Answer: answer})
	logger.Info("Turn recorded, history length %d", e.conversation.Len())

	return answer, nil
}

// Search embeds the query text and returns the k nearest documents.
func (e *QueryEngine) Search(ctx context.Context, query string, k int) ([]domain.ScoredDocument, error) {
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}

// History returns the recorded turns in order.
func (e *QueryEngine) History() []domain.Turn {
	return e.conversation.Turns()
}

// DocumentCount reports how many documents the loaded index holds.
func (e *QueryEngine) DocumentCount(ctx context.Context) (int, error) {
	return e.index.Count(ctx)
}

// assemblePrompt builds the user message: rendered history (when any),
// rank-labelled retrieved context, then the question. With zero
// retrieved documents the context block is empty and the model is
// expected to state it lacks information.
func assemblePrompt(history string, hits []domain.ScoredDocument, question string) string {
	var b strings.Builder

	if history != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	b.WriteString("Context (Retrieved Emails):\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "\n--- Email %d ---\n", i+1)
		b.WriteString(hit.Document.Text)
		b.WriteString("\n")
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")

	return b.String()
}
