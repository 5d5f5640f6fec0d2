package driven

import (
	"context"
	"time"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// Mailbox fetches raw messages from a mail account. It is a thin
// boundary around the mail protocol; session handling lives entirely
// behind it.
type Mailbox interface {
	// FetchRange returns all messages received on or after start and
	// strictly before end. Returns an empty slice when the range holds
	// no messages. Authentication and connectivity failures surface as
	// errors; the workflow wraps them in domain.ErrFetch.
	FetchRange(ctx context.Context, start, end time.Time) ([]domain.RawMessage, error)
}
