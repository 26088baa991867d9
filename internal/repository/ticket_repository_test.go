package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/deskhive/internal/models"
)

func TestMemoryTicketRepository_UpsertOverwritesMutableFields(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	msgID := "msg-1@example.com"

	first := &models.Ticket{
		Subject:   "Login broken",
		Body:      "cannot log in",
		Status:    models.StatusNew,
		Priority:  models.PriorityHigh,
		Source:    models.SourceEmail,
		MessageID: &msgID,
	}
	created, err := repo.UpsertByMessageID(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	// Agent closes the ticket in the meantime.
	require.NoError(t, repo.Update(ctx, first.ID, models.TicketPatch{Status: statusPtr(models.StatusClosed)}))

	redelivered := &models.Ticket{
		Subject:   "Login broken (resent)",
		Body:      "still cannot log in",
		Status:    models.StatusNew,
		Priority:  models.PriorityHigh,
		Source:    models.SourceEmail,
		MessageID: &msgID,
	}
	created, err = repo.UpsertByMessageID(ctx, redelivered)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetByMessageID(ctx, msgID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Login broken (resent)", stored.Subject)
	assert.Equal(t, "still cannot log in", stored.Body)
	assert.Equal(t, models.StatusNew, stored.Status, "status is part of the overwrite set")
	assert.Equal(t, first.CreatedAt, stored.CreatedAt)
	assert.Equal(t, first.TicketNumber, stored.TicketNumber)
}

func statusPtr(s models.TicketStatus) *models.TicketStatus { return &s }

func TestTicketSQLRepository_CreatePostgresReturnsID(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "postgres")

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewTicketRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("RETURNING id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	ticket := &models.Ticket{
		Subject:  "Printer jam",
		Status:   models.StatusNew,
		Priority: models.PriorityMedium,
		Category: "general",
		Source:   models.SourceManual,
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.Equal(t, 42, ticket.ID, "the id comes back through RETURNING on postgres")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
