package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
	"github.com/epistle-labs/epistle/internal/core/ports/driving"
	"github.com/epistle-labs/epistle/internal/logger"
)

// Ensure Workflow implements the interface.
var _ driving.Workflow = (*Workflow)(nil)

// Workflow runs the batch pipeline: fetch messages for a date range,
// normalise each into a document, then embed and index the batch.
type Workflow struct {
	mailbox driven.Mailbox
	indexer *Indexer
}

// NewWorkflow creates the batch pipeline over a mailbox and an
// indexer.
func NewWorkflow(mailbox driven.Mailbox, indexer *Indexer) *Workflow {
	return &Workflow{
		mailbox: mailbox,
		indexer: indexer,
	}
}

// Refresh fetches and indexes all messages in [startDate, endDate).
// Dates are ISO 8601. An empty range returns Fetched == 0 with no
// error. Fetch failures wrap domain.ErrFetch and commit nothing.
func (w *Workflow) Refresh(ctx context.Context, startDate, endDate string) (*driving.RefreshResult, error) {
	start, err := time.Parse(domain.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", domain.ErrInvalidConfig, startDate)
	}
	end, err := time.Parse(domain.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", domain.ErrInvalidConfig, endDate)
	}

	logger.Section("Workflow")
	logger.Info("Fetching messages from %s to %s", startDate, endDate)

	messages, err := w.mailbox.FetchRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	if len(messages) == 0 {
		logger.Info("No messages in range, nothing to index")
		return &driving.RefreshResult{}, nil
	}
	logger.Info("Fetched %d messages", len(messages))

	docs := make([]domain.Document, len(messages))
	for i, msg := range messages {
		docs[i] = Normalise(msg)
	}

	indexed, err := w.indexer.Build(ctx, docs)
	if err != nil {
		return nil, err
	}

	return &driving.RefreshResult{
		Fetched: len(messages),
		Indexed: indexed,
	}, nil
}
