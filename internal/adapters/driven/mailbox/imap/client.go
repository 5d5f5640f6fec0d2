// Package imap provides the mailbox adapter that fetches messages over
// IMAP with TLS.
package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/epistle-labs/epistle/internal/core/domain"
	"github.com/epistle-labs/epistle/internal/core/ports/driven"
	"github.com/epistle-labs/epistle/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Mailbox = (*Client)(nil)

// Config holds IMAP connection settings.
type Config struct {
	// Host and Port locate the IMAP server (e.g. imap.gmail.com:993).
	Host string
	Port string

	// Username is the mailbox account identifier.
	Username string

	// Password is the account credential (an app password for Gmail).
	Password string

	// Mailbox is the folder to fetch from (default: INBOX).
	Mailbox string
}

// Client fetches messages from a single IMAP mailbox. Each FetchRange
// call opens a fresh connection and logs out when done.
type Client struct {
	cfg Config
}

// NewClient creates a new IMAP mailbox client.
func NewClient(cfg Config) *Client {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	return &Client{cfg: cfg}
}

// FetchRange returns all messages received on or after start and
// strictly before end, matching the IMAP SINCE/BEFORE criteria.
func (c *Client) FetchRange(ctx context.Context, start, end time.Time) ([]domain.RawMessage, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(c.cfg.Mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", c.cfg.Mailbox, err)
	}

	criteria := &imap.SearchCriteria{
		Since:  start,
		Before: end,
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	logger.Debug("imap search matched %d messages in %s", len(uids), c.cfg.Mailbox)
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var messages []domain.RawMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			logger.Warn("skipping message: collect failed: %v", err)
			continue
		}

		raw := buf.FindBodySection(bodySection)
		if raw == nil {
			logger.Warn("skipping message UID %d: no body section", buf.UID)
			continue
		}

		messages = append(messages, parseMessage(raw))
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching messages: %w", err)
	}

	return messages, nil
}

// connect dials the server over TLS and authenticates.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.cfg.Host + ":" + c.cfg.Port

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", c.cfg.Username, err)
	}

	return client, nil
}

// parseMessage extracts sender, subject, date and the first text/plain
// part from a raw RFC 5322 message. Headers are decoded; the date is
// carried as the header's verbatim string. Parsing failures degrade to
// treating the whole payload as a plain-text body.
func parseMessage(raw []byte) domain.RawMessage {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return domain.RawMessage{Body: string(raw)}
	}
	defer mr.Close()

	var msg domain.RawMessage

	h := mr.Header
	msg.Subject, _ = h.Subject()
	msg.Date = h.Get("Date")
	if addrs, err := h.AddressList("From"); err == nil && len(addrs) > 0 {
		msg.Sender = addrs[0].String()
	} else {
		msg.Sender = h.Get("From")
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if ih, ok := part.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := ih.ContentType()
			if !strings.HasPrefix(contentType, "text/plain") {
				continue
			}

			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			msg.Body = string(body)
			break
		}
	}

	return msg
}
