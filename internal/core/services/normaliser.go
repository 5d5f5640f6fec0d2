// Package services contains the core pipeline: normalisation,
// index building, retrieval-augmented query answering, and the batch
// workflow that ties them together.
package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/epistle-labs/epistle/internal/core/domain"
)

// Reply-chain markers. A line matching one of these introduces quoted
// earlier messages; everything from the marker onward is dropped.
var (
	// "On Mon, 3 Nov 2025 at 10:12, Alice <a@example.com> wrote:"
	onWroteRe = regexp.MustCompile(`(?mi)^On .{0,400}wrote:\s*$`)

	// Outlook-style forwarded/original message separators.
	originalMessageRe = regexp.MustCompile(`(?mi)^-{2,}\s*(Original Message|Forwarded message)\s*-{2,}\s*$`)
)

// Normalise derives an indexable document from one raw message.
// Quoted reply chains are stripped, whitespace trimmed, and the body
// is prefixed with a Sender/Subject/Date header block. Missing headers
// pass through as empty strings; an empty body after stripping still
// produces a valid header-only document. The metadata ID is freshly
// generated on every call.
//
// Signature blocks are not stripped. TODO: detect trailing signature
// delimiters ("-- ") the way reply markers are handled.
func Normalise(raw domain.RawMessage) domain.Document {
	body := stripReplyChain(raw.Body)
	body = strings.TrimSpace(body)

	var text strings.Builder
	text.WriteString("Sender: ")
	text.WriteString(raw.Sender)
	text.WriteString("\nSubject: ")
	text.WriteString(raw.Subject)
	text.WriteString("\nDate: ")
	text.WriteString(raw.Date)
	text.WriteString("\n\n")
	text.WriteString(body)

	return domain.Document{
		Text: text.String(),
		Metadata: domain.MessageMetadata{
			ID:      uuid.New().String(),
			Sender:  raw.Sender,
			Subject: raw.Subject,
			Date:    raw.Date,
		},
	}
}

// stripReplyChain removes quoted earlier messages, keeping only the
// newest reply's own text. A body without reply markers passes through
// unchanged.
func stripReplyChain(body string) string {
	// Truncate at the first reply-introduction marker.
	cut := len(body)
	if loc := onWroteRe.FindStringIndex(body); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if loc := originalMessageRe.FindStringIndex(body); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	body = body[:cut]

	// Drop any remaining quoted lines.
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
