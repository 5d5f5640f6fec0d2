package driving

import "context"

// Workflow sequences the batch pipeline: fetch, normalise, embed and
// index. There is no incremental mode; every run processes the full
// date range.
type Workflow interface {
	// Refresh fetches messages for the given ISO 8601 date range and
	// indexes them. An empty range is a reported no-op: the result has
	// Fetched == 0 and no error. Fetch and build failures abort the
	// run without committing a partial index.
	Refresh(ctx context.Context, startDate, endDate string) (*RefreshResult, error)
}

// RefreshResult summarises one refresh run.
type RefreshResult struct {
	// Fetched is the number of messages returned by the mailbox.
	Fetched int

	// Indexed is the number of documents added to the index.
	Indexed int
}
