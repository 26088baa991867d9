package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/deskhive/internal/mail/connector"
	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
	"github.com/deskhive/deskhive/internal/service"
)

const customerMessage = "From: Jane Doe <Customer@Example.com>\r\n" +
	"To: support@deskhive.example\r\n" +
	"Subject: Login broken, urgent!!!\r\n" +
	"Message-ID: <msg-1@example.com>\r\n" +
	"Date: Mon, 02 Jan 2026 15:04:05 +0000\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"I cannot log in since this morning.\r\n"

const automatedMessage = "From: billing-noreply@vendor.example\r\n" +
	"To: support@deskhive.example\r\n" +
	"Subject: Invoice due\r\n" +
	"Message-ID: <msg-2@example.com>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Your invoice is attached.\r\n"

func newIngestFixture(t *testing.T) (*ingestRun, *repository.MemoryTicketRepository) {
	t.Helper()
	tickets := repository.NewMemoryTicketRepository()
	activity := service.NewActivityLogger(repository.NewMemoryActivityRepository())
	t.Cleanup(activity.Close)

	ingestor := NewIngestor(tickets, activity, nil, connector.Account{Username: "support@deskhive.example"})
	return &ingestRun{ingestor: ingestor}, tickets
}

func TestParseMessage(t *testing.T) {
	env, err := ParseMessage([]byte(customerMessage))
	require.NoError(t, err)

	assert.Equal(t, "customer@example.com", env.From, "addresses are lowercased")
	assert.Equal(t, "Jane Doe", env.FromName)
	assert.Equal(t, "support@deskhive.example", env.To)
	assert.Equal(t, "Login broken, urgent!!!", env.Subject)
	assert.Equal(t, "msg-1@example.com", env.MessageID)
	assert.Equal(t, "I cannot log in since this morning.", env.Body)
}

func TestParseMessageWithoutMessageIDGetsStableFallback(t *testing.T) {
	raw := []byte("From: a@example.com\r\nSubject: hi\r\n\r\nbody\r\n")

	first, err := ParseMessage(raw)
	require.NoError(t, err)
	second, err := ParseMessage(raw)
	require.NoError(t, err)

	assert.NotEmpty(t, first.MessageID)
	assert.Equal(t, first.MessageID, second.MessageID, "fallback id must be deterministic for dedup")
}

func TestHandleCreatesTicket(t *testing.T) {
	run, tickets := newIngestFixture(t)

	err := run.Handle(context.Background(), connector.Message{SeqNum: 1, Raw: []byte(customerMessage), ReceivedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Created: 1}, run.summary)

	stored, err := tickets.GetByMessageID(context.Background(), "msg-1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Login broken, urgent!!!", stored.Subject)
	assert.Equal(t, models.StatusNew, stored.Status)
	assert.Equal(t, models.SourceEmail, stored.Source)
	assert.Equal(t, "account", stored.Category)
	assert.Equal(t, models.PriorityHigh, stored.Priority)
	assert.Equal(t, "customer@example.com", stored.FromEmail)
	require.NotNil(t, stored.CustomerName)
	assert.Equal(t, "Jane Doe", *stored.CustomerName)
}

func TestHandleIsIdempotentPerMessageID(t *testing.T) {
	run, tickets := newIngestFixture(t)

	msg := connector.Message{SeqNum: 1, Raw: []byte(customerMessage), ReceivedAt: time.Now()}
	require.NoError(t, run.Handle(context.Background(), msg))

	first, err := tickets.GetByMessageID(context.Background(), "msg-1@example.com")
	require.NoError(t, err)

	require.NoError(t, run.Handle(context.Background(), msg))
	assert.Equal(t, 1, run.summary.Created)
	assert.Equal(t, 1, run.summary.Updated)

	all, err := tickets.List(context.Background(), models.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1, "re-ingesting the same message id must not duplicate the ticket")

	second, err := tickets.GetByMessageID(context.Background(), "msg-1@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "created_at survives re-ingestion")
	assert.Equal(t, first.TicketNumber, second.TicketNumber, "ticket number survives re-ingestion")
}

func TestHandleSkipsAutomatedMail(t *testing.T) {
	run, tickets := newIngestFixture(t)

	err := run.Handle(context.Background(), connector.Message{SeqNum: 1, Raw: []byte(automatedMessage)})
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Skipped: 1}, run.summary)

	all, err := tickets.List(context.Background(), models.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestHandleSkipsUnparseableMail(t *testing.T) {
	run, tickets := newIngestFixture(t)

	err := run.Handle(context.Background(), connector.Message{SeqNum: 1, Raw: []byte("Subject: no sender\r\n\r\nhi\r\n")})
	require.NoError(t, err, "a parse failure skips the message instead of failing the batch")
	assert.Equal(t, Summary{Processed: 1, Skipped: 1}, run.summary)

	all, err := tickets.List(context.Background(), models.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestHandleDryRunDoesNotPersist(t *testing.T) {
	tickets := repository.NewMemoryTicketRepository()
	activity := service.NewActivityLogger(repository.NewMemoryActivityRepository())
	t.Cleanup(activity.Close)

	ingestor := NewIngestor(tickets, activity, nil, connector.Account{}, WithDryRun(true))
	run := &ingestRun{ingestor: ingestor}

	require.NoError(t, run.Handle(context.Background(), connector.Message{Raw: []byte(customerMessage)}))
	assert.Equal(t, 1, run.summary.Created)

	all, err := tickets.List(context.Background(), models.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIngestScenario(t *testing.T) {
	// One automated billing notice, one real customer message: exactly one
	// ticket, category account, priority high.
	run, tickets := newIngestFixture(t)

	require.NoError(t, run.Handle(context.Background(), connector.Message{SeqNum: 1, Raw: []byte(automatedMessage)}))
	require.NoError(t, run.Handle(context.Background(), connector.Message{SeqNum: 2, Raw: []byte(customerMessage)}))

	assert.Equal(t, Summary{Processed: 2, Created: 1, Skipped: 1}, run.summary)

	all, err := tickets.List(context.Background(), models.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "account", all[0].Category)
	assert.Equal(t, models.PriorityHigh, all[0].Priority)
}
