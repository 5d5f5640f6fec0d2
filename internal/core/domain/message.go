package domain

// RawMessage is one mail message as returned by the mailbox collaborator.
// It is immutable once fetched; normalisation derives a Document from it.
type RawMessage struct {
	// Sender is the decoded From header.
	Sender string

	// Subject is the decoded Subject header.
	Subject string

	// Date is the protocol-native date string. It is carried verbatim
	// and never parsed further.
	Date string

	// Body is the plain-text body. For multipart messages this is the
	// first text/plain part; may be empty.
	Body string
}

// MessageMetadata identifies a normalised message inside the index.
type MessageMetadata struct {
	// ID is a unique token generated at normalisation time. Re-indexing
	// the same message yields a new ID; there is no deduplication.
	ID string

	// Sender, Subject and Date are copied from the raw message.
	// Missing headers pass through as empty strings.
	Sender  string
	Subject string
	Date    string
}

// Document is a normalised message ready for embedding and indexing.
type Document struct {
	// Text is the header block (Sender/Subject/Date lines, blank line)
	// followed by the cleaned body.
	Text string

	// Metadata identifies the message.
	Metadata MessageMetadata
}

// ScoredDocument pairs a stored document with its similarity to a query.
type ScoredDocument struct {
	Document Document

	// Similarity is the cosine similarity score, higher is nearer.
	Similarity float64
}
