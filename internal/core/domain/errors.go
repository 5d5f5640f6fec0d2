package domain

import "errors"

// Domain errors represent pipeline failures. Callers distinguish them
// with errors.Is and decide whether to abort the run or continue the
// interactive session. Nothing in the core retries automatically.
var (
	// ErrInvalidConfig indicates a missing or malformed required
	// setting. Fatal; reported before any pipeline step runs.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFetch indicates the mailbox collaborator failed to
	// authenticate or connect. Aborts the current refresh; no partial
	// index is committed.
	ErrFetch = errors.New("mail fetch failed")

	// ErrNoMessages indicates the date range contained no messages.
	// A reported no-op, not a failure.
	ErrNoMessages = errors.New("no messages in range")

	// ErrEmptyInput indicates an index build was attempted with zero
	// documents.
	ErrEmptyInput = errors.New("empty input")

	// ErrIndexBuild wraps any embedding or storage failure during an
	// index build. Aborts the run.
	ErrIndexBuild = errors.New("index build failed")

	// ErrIndexNotFound indicates the persistence location or collection
	// does not exist. Run a refresh first.
	ErrIndexNotFound = errors.New("index not found")

	// ErrEmbedding indicates the embedding service call failed.
	// Aborts the current query only; the session continues.
	ErrEmbedding = errors.New("embedding service failed")

	// ErrGeneration indicates the language model call failed.
	// Aborts the current query only; prior turns remain intact.
	ErrGeneration = errors.New("generation failed")
)
