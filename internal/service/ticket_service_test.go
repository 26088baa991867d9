package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

func newTicketFixture(t *testing.T) (*TicketService, *repository.MemoryTicketRepository) {
	t.Helper()
	tickets := repository.NewMemoryTicketRepository()
	activity := NewActivityLogger(repository.NewMemoryActivityRepository())
	t.Cleanup(activity.Close)
	return NewTicketService(tickets, activity), tickets
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _ := newTicketFixture(t)

	ticket, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "Printer on fire"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusNew, ticket.Status)
	assert.Equal(t, models.PriorityMedium, ticket.Priority)
	assert.Equal(t, "general", ticket.Category)
	assert.Equal(t, models.SourceManual, ticket.Source)
	assert.NotEmpty(t, ticket.TicketNumber)
}

func TestCreateTicketRequiresSubject(t *testing.T) {
	svc, _ := newTicketFixture(t)

	_, err := svc.Create(context.Background(), nil, CreateTicketInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	svc, _ := newTicketFixture(t)
	ticket, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "s"})
	require.NoError(t, err)

	open := models.StatusOpen
	updated, err := svc.Update(context.Background(), nil, ticket.ID, models.TicketPatch{Status: &open})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, updated.Status)

	pending := models.StatusPending
	updated, err = svc.Update(context.Background(), nil, ticket.ID, models.TicketPatch{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)

	// new is never reachable again
	newStatus := models.StatusNew
	_, err = svc.Update(context.Background(), nil, ticket.ID, models.TicketPatch{Status: &newStatus})
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestUpdateToClosedComputesResolution(t *testing.T) {
	svc, tickets := newTicketFixture(t)
	ticket, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "s"})
	require.NoError(t, err)

	closedAt := ticket.CreatedAt.Add(26 * time.Hour)
	svc.WithClock(func() time.Time { return closedAt })

	closed := models.StatusClosed
	updated, err := svc.Update(context.Background(), nil, ticket.ID, models.TicketPatch{Status: &closed})
	require.NoError(t, err)

	assert.Equal(t, models.StatusClosed, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	require.NotNil(t, updated.ResolutionTime)
	assert.Equal(t, 26, *updated.ResolutionTime)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, stored.Status)
}

func TestCloseIsIdempotent(t *testing.T) {
	svc, _ := newTicketFixture(t)
	ticket, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "s"})
	require.NoError(t, err)

	first, err := svc.Close(context.Background(), nil, ticket.ID)
	require.NoError(t, err)

	second, err := svc.Close(context.Background(), nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ClosedAt, second.ClosedAt, "closing twice must not move closed_at")
	assert.Equal(t, first.ResolutionTime, second.ResolutionTime)
}

func TestCloseResolutionIsNonNegative(t *testing.T) {
	svc, _ := newTicketFixture(t)
	ticket, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "s"})
	require.NoError(t, err)

	// Clock skew: closing "before" creation clamps to zero hours.
	svc.WithClock(func() time.Time { return ticket.CreatedAt.Add(-2 * time.Hour) })

	closed, err := svc.Close(context.Background(), nil, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ResolutionTime)
	assert.Equal(t, 0, *closed.ResolutionTime)
}

func TestUpdateClosedTicketRefused(t *testing.T) {
	svc, _ := newTicketFixture(t)
	ticket, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "s"})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), nil, ticket.ID)
	require.NoError(t, err)

	open := models.StatusOpen
	_, err = svc.Update(context.Background(), nil, ticket.ID, models.TicketPatch{Status: &open})
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTicketFixture(t)

	a, err := svc.Create(context.Background(), nil, CreateTicketInput{Subject: "a"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), nil, CreateTicketInput{Subject: "b"})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), nil, a.ID)
	require.NoError(t, err)

	closedOnly, err := svc.List(context.Background(), models.TicketFilter{Status: models.StatusClosed})
	require.NoError(t, err)
	require.Len(t, closedOnly, 1)
	assert.Equal(t, a.ID, closedOnly[0].ID)
}
