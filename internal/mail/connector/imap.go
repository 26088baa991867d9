// Package connector fetches raw messages from remote mailboxes.
package connector

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Account describes an IMAP mailbox to poll.
type Account struct {
	Host     string
	Port     int
	Username string
	Password []byte
	Mailbox  string // defaults to INBOX
	TLSMode  string // "imaps" (implicit TLS) or "starttls"
}

func (a Account) addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Message is a raw fetched message plus fetch metadata.
type Message struct {
	SeqNum     uint32
	Raw        []byte
	ReceivedAt time.Time
}

// Handler consumes fetched messages.
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// ConnectionError wraps a transport failure reaching or talking to the
// server. The credential value never appears in the error text.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("imap %s: %v", e.Op, e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError marks a rejected login. Distinguished from ConnectionError so
// callers can report misconfiguration instead of a flaky network.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("imap login rejected: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// imapConnection is the slice of the IMAP protocol the fetcher needs.
// The production implementation wraps imapclient; tests substitute a fake.
type imapConnection interface {
	Login(username, password string) error
	Select(mailbox string) error
	SearchUnseen() ([]uint32, error)
	FetchRaw(seqNum uint32) ([]byte, error)
	MarkSeen(seqNums []uint32) error
	Close() error
}

type connFactory func(acc Account, dialTimeout time.Duration) (imapConnection, error)

// IMAPFetcher downloads unseen messages from an account and hands them to a
// Handler. Handled messages are flagged seen so the next poll skips them.
type IMAPFetcher struct {
	clock        func() time.Time
	connect      connFactory
	dialTimeout  time.Duration
	loginTimeout time.Duration
	batchLimit   int
	markSeen     bool
	logger       *log.Logger
}

// IMAPOption configures an IMAPFetcher.
type IMAPOption func(*IMAPFetcher)

// WithIMAPClock overrides the time source used for ReceivedAt stamps.
func WithIMAPClock(clock func() time.Time) IMAPOption {
	return func(f *IMAPFetcher) { f.clock = clock }
}

// WithIMAPDialTimeout bounds the TCP/TLS connection phase.
func WithIMAPDialTimeout(d time.Duration) IMAPOption {
	return func(f *IMAPFetcher) { f.dialTimeout = d }
}

// WithIMAPLoginTimeout bounds the authentication exchange.
func WithIMAPLoginTimeout(d time.Duration) IMAPOption {
	return func(f *IMAPFetcher) { f.loginTimeout = d }
}

// WithIMAPBatchLimit caps how many messages a single poll downloads.
func WithIMAPBatchLimit(n int) IMAPOption {
	return func(f *IMAPFetcher) {
		if n > 0 {
			f.batchLimit = n
		}
	}
}

// WithIMAPMarkSeen controls whether handled messages are flagged seen.
// Disabled for preview polls so they leave the mailbox untouched.
func WithIMAPMarkSeen(mark bool) IMAPOption {
	return func(f *IMAPFetcher) { f.markSeen = mark }
}

// withIMAPConnFactory substitutes the connection constructor. Test hook.
func withIMAPConnFactory(factory connFactory) IMAPOption {
	return func(f *IMAPFetcher) { f.connect = factory }
}

// NewIMAPFetcher creates a fetcher with production defaults.
func NewIMAPFetcher(opts ...IMAPOption) *IMAPFetcher {
	f := &IMAPFetcher{
		clock:        time.Now,
		connect:      dialIMAP,
		dialTimeout:  10 * time.Second,
		loginTimeout: 5 * time.Second,
		batchLimit:   50,
		markSeen:     true,
		logger:       log.New(log.Writer(), "[IMAP] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads unseen messages and passes each to the handler. Messages
// that fail to download are skipped; handler errors are collected and the
// message is left unseen for a retry on the next poll. The connection is
// closed on every path.
func (f *IMAPFetcher) Fetch(ctx context.Context, acc Account, h Handler) (handled int, err error) {
	conn, err := f.connect(acc, f.dialTimeout)
	if err != nil {
		return 0, &ConnectionError{Op: "dial", Err: err}
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = &ConnectionError{Op: "close", Err: cerr}
		}
	}()

	if err := f.login(conn, acc); err != nil {
		return 0, err
	}

	mailbox := acc.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if err := conn.Select(mailbox); err != nil {
		return 0, &ConnectionError{Op: "select " + mailbox, Err: err}
	}

	seqNums, err := conn.SearchUnseen()
	if err != nil {
		return 0, &ConnectionError{Op: "search", Err: err}
	}
	if len(seqNums) > f.batchLimit {
		f.logger.Printf("mailbox %s has %d unseen messages, fetching first %d", mailbox, len(seqNums), f.batchLimit)
		seqNums = seqNums[:f.batchLimit]
	}

	var seen []uint32
	var handleErrs []error
	for _, seqNum := range seqNums {
		if ctx.Err() != nil {
			break
		}
		raw, ferr := conn.FetchRaw(seqNum)
		if ferr != nil {
			f.logger.Printf("fetch of message %d failed, skipping: %v", seqNum, ferr)
			continue
		}
		msg := Message{SeqNum: seqNum, Raw: raw, ReceivedAt: f.clock()}
		if herr := h.Handle(ctx, msg); herr != nil {
			handleErrs = append(handleErrs, fmt.Errorf("message %d: %w", seqNum, herr))
			continue
		}
		seen = append(seen, seqNum)
		handled++
	}

	// Best effort: a failed flag update means duplicates on the next poll,
	// which the message-id upsert absorbs.
	if f.markSeen && len(seen) > 0 {
		if merr := conn.MarkSeen(seen); merr != nil {
			f.logger.Printf("marking %d messages seen failed: %v", len(seen), merr)
		}
	}

	if len(handleErrs) > 0 {
		return handled, errors.Join(handleErrs...)
	}
	if cerr := ctx.Err(); cerr != nil {
		return handled, cerr
	}
	return handled, nil
}

func (f *IMAPFetcher) login(conn imapConnection, acc Account) error {
	done := make(chan error, 1)
	go func() { done <- conn.Login(acc.Username, string(acc.Password)) }()
	select {
	case err := <-done:
		if err != nil {
			return &AuthError{Err: err}
		}
		return nil
	case <-time.After(f.loginTimeout):
		return &ConnectionError{Op: "login", Err: fmt.Errorf("timed out after %s", f.loginTimeout)}
	}
}

// dialIMAP is the production connFactory.
func dialIMAP(acc Account, dialTimeout time.Duration) (imapConnection, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	raw, err := dialer.Dial("tcp", acc.addr())
	if err != nil {
		return nil, err
	}

	opts := &imapclient.Options{TLSConfig: &tls.Config{ServerName: acc.Host}}
	var client *imapclient.Client
	if acc.TLSMode == "starttls" {
		client, err = imapclient.NewStartTLS(raw, opts)
		if err != nil {
			raw.Close()
			return nil, err
		}
	} else {
		client = imapclient.New(tls.Client(raw, opts.TLSConfig), nil)
	}
	return &imapConn{client: client}, nil
}

// imapConn adapts imapclient.Client to the imapConnection interface.
type imapConn struct {
	client *imapclient.Client
}

func (c *imapConn) Login(username, password string) error {
	return c.client.Login(username, password).Wait()
}

func (c *imapConn) Select(mailbox string) error {
	_, err := c.client.Select(mailbox, nil).Wait()
	return err
}

func (c *imapConn) SearchUnseen() ([]uint32, error) {
	criteria := &imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}
	data, err := c.client.Search(criteria, nil).Wait()
	if err != nil {
		return nil, err
	}
	return data.AllSeqNums(), nil
}

func (c *imapConn) FetchRaw(seqNum uint32) ([]byte, error) {
	seqSet := imap.SeqSetNum(seqNum)
	fetchOpts := &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{{}},
	}
	msgs, err := c.client.Fetch(seqSet, fetchOpts).Collect()
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("message %d not returned", seqNum)
	}
	return firstBodySection(msgs[0], seqNum)
}

// firstBodySection pulls the raw message bytes out of a fetch result.
func firstBodySection(msg *imapclient.FetchMessageBuffer, seqNum uint32) ([]byte, error) {
	for _, section := range msg.BodySection {
		return section.Bytes, nil
	}
	return nil, fmt.Errorf("message %d has no body section", seqNum)
}

func (c *imapConn) MarkSeen(seqNums []uint32) error {
	seqSet := imap.SeqSetNum(seqNums...)
	flags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	return c.client.Store(seqSet, flags, nil).Close()
}

func (c *imapConn) Close() error {
	if err := c.client.Logout().Wait(); err != nil {
		return c.client.Close()
	}
	return nil
}
