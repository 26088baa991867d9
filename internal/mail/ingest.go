package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/deskhive/deskhive/internal/mail/connector"
	"github.com/deskhive/deskhive/internal/metrics"
	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
	"github.com/deskhive/deskhive/internal/service"
)

// Summary reports what a single ingestion poll did.
type Summary struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Ingestor turns fetched mailbox messages into tickets.
type Ingestor struct {
	tickets     repository.TicketRepository
	activity    *service.ActivityLogger
	fetcher     *connector.IMAPFetcher
	account     connector.Account
	pollTimeout time.Duration
	dryRun      bool
	logger      *log.Logger
}

// IngestOption configures an Ingestor.
type IngestOption func(*Ingestor)

// WithPollTimeout bounds a whole poll run.
func WithPollTimeout(d time.Duration) IngestOption {
	return func(i *Ingestor) {
		if d > 0 {
			i.pollTimeout = d
		}
	}
}

// WithDryRun classifies messages without persisting tickets. Pair with a
// fetcher that does not mark messages seen.
func WithDryRun(dry bool) IngestOption {
	return func(i *Ingestor) { i.dryRun = dry }
}

// NewIngestor creates an ingestor bound to one mailbox.
func NewIngestor(tickets repository.TicketRepository, activity *service.ActivityLogger,
	fetcher *connector.IMAPFetcher, account connector.Account, opts ...IngestOption) *Ingestor {
	i := &Ingestor{
		tickets:     tickets,
		activity:    activity,
		fetcher:     fetcher,
		account:     account,
		pollTimeout: 15 * time.Second,
		logger:      log.New(log.Writer(), "[MAIL] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Poll fetches unseen messages and persists qualifying ones as tickets.
//
// Per-message parse failures and denylisted messages are skipped and counted;
// persistence failures leave the message unseen for the next poll. Only a
// connection or authentication failure aborts the run.
func (i *Ingestor) Poll(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, i.pollTimeout)
	defer cancel()

	start := time.Now()
	run := &ingestRun{ingestor: i}
	handled, err := i.fetcher.Fetch(ctx, i.account, run)
	metrics.MailPollDuration.Observe(time.Since(start).Seconds())

	var connErr *connector.ConnectionError
	var authErr *connector.AuthError
	if errors.As(err, &connErr) || errors.As(err, &authErr) {
		metrics.MailPollErrors.Inc()
		return run.summary, err
	}

	i.logger.Printf("poll done: handled=%d created=%d updated=%d skipped=%d failed=%d",
		handled, run.summary.Created, run.summary.Updated, run.summary.Skipped, run.summary.Failed)

	if !i.dryRun && run.summary.Processed > 0 {
		i.activity.RecordAction(nil, models.ActionMailIngested, "mailbox", i.account.Username,
			map[string]interface{}{
				"created": run.summary.Created,
				"updated": run.summary.Updated,
				"skipped": run.summary.Skipped,
				"failed":  run.summary.Failed,
			})
	}
	return run.summary, err
}

// ingestRun carries per-poll counters so concurrent polls never share state.
type ingestRun struct {
	ingestor *Ingestor
	summary  Summary
}

// Handle processes one fetched message. Returning an error leaves the
// message unseen on the server; nil lets the fetcher mark it seen.
func (r *ingestRun) Handle(ctx context.Context, msg connector.Message) error {
	i := r.ingestor
	r.summary.Processed++

	env, err := ParseMessage(msg.Raw)
	if err != nil {
		r.summary.Skipped++
		metrics.MailMessagesProcessed.WithLabelValues("skipped").Inc()
		i.logger.Printf("message %d unparseable, skipping: %v", msg.SeqNum, err)
		return nil
	}

	if !IsTicketEmail(env.From, env.Subject, env.Body) {
		r.summary.Skipped++
		metrics.MailMessagesProcessed.WithLabelValues("skipped").Inc()
		return nil
	}

	ticket := ticketFromEnvelope(env, i.account.Username)
	if i.dryRun {
		r.summary.Created++
		return nil
	}

	created, err := i.tickets.UpsertByMessageID(ctx, ticket)
	if err != nil {
		r.summary.Failed++
		metrics.MailMessagesProcessed.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to persist ticket for %s: %w", env.MessageID, err)
	}
	if created {
		r.summary.Created++
		metrics.MailMessagesProcessed.WithLabelValues("created").Inc()
	} else {
		r.summary.Updated++
		metrics.MailMessagesProcessed.WithLabelValues("updated").Inc()
	}
	return nil
}

func ticketFromEnvelope(env *Envelope, mailboxAddr string) *models.Ticket {
	subject := env.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	to := env.To
	if to == "" {
		to = mailboxAddr
	}

	var customerName *string
	if env.FromName != "" {
		name := env.FromName
		customerName = &name
	}
	messageID := env.MessageID
	from := env.From

	return &models.Ticket{
		Subject:       subject,
		Body:          env.Body,
		Status:        models.StatusNew,
		Priority:      DerivePriority(env.Subject, env.Body),
		Category:      DeriveCategory(env.Subject, env.Body),
		Source:        models.SourceEmail,
		MessageID:     &messageID,
		FromEmail:     from,
		ToEmail:       to,
		CustomerName:  customerName,
		CustomerEmail: &from,
	}
}
