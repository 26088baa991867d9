package mail

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// Envelope is the normalized form of a parsed inbound message.
type Envelope struct {
	MessageID string
	From      string
	FromName  string
	To        string
	Subject   string
	Date      time.Time
	Body      string
}

// ParseMessage decodes a raw RFC 5322 message into an Envelope. The body is
// the first text/plain part; HTML-only messages fall back to an empty body
// rather than failing. A missing Message-ID header is replaced with a hash of
// the raw content so re-ingestion stays idempotent.
func ParseMessage(raw []byte) (*Envelope, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	env := &Envelope{}

	env.Subject, _ = mr.Header.Subject()
	env.Date, _ = mr.Header.Date()

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		env.From = strings.ToLower(from[0].Address)
		env.FromName = from[0].Name
	}
	if to, err := mr.Header.AddressList("To"); err == nil && len(to) > 0 {
		env.To = strings.ToLower(to[0].Address)
	}

	if id, err := mr.Header.MessageID(); err == nil && id != "" {
		env.MessageID = id
	} else {
		sum := sha256.Sum256(raw)
		env.MessageID = "sha256-" + hex.EncodeToString(sum[:16])
	}

	env.Body = extractPlainText(mr)

	if env.From == "" {
		return nil, errors.New("message has no From address")
	}
	return env, nil
}

func extractPlainText(mr *gomail.Reader) string {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return ""
		}
		if err != nil {
			return ""
		}
		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil || contentType != "text/plain" {
			continue
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(body))
	}
}
