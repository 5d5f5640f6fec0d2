// Package driving provides interfaces exposed to external actors (primary/inbound ports).
package driving

import (
	"context"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// QueryService answers natural-language questions about indexed mail.
// One service instance holds one session's conversation memory.
type QueryService interface {
	// Answer runs the retrieval-augmented pipeline for one question and
	// records the turn. A failed question records nothing; prior turns
	// remain intact and the session continues.
	Answer(ctx context.Context, question string) (string, error)

	// Search returns the k stored documents most similar to the query
	// text, nearest first, without involving the language model.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredDocument, error)

	// History returns the turns recorded so far, in order.
	History() []domain.Turn

	// DocumentCount reports how many documents the loaded index holds.
	DocumentCount(ctx context.Context) (int, error)
}
