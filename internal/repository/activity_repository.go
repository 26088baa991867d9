package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deskhive/deskhive/internal/database"
	"github.com/deskhive/deskhive/internal/models"
)

// ActivityRepository defines the interface for the append-only audit log.
type ActivityRepository interface {
	Append(ctx context.Context, entry *models.ActivityEntry) error
	ListByActor(ctx context.Context, actorID int, limit int) ([]*models.ActivityEntry, error)
}

// ActivitySQLRepository handles database operations for the activity_log table.
type ActivitySQLRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sql.DB) *ActivitySQLRepository {
	return &ActivitySQLRepository{db: db}
}

// Append inserts an audit entry. Entries are never updated or deleted.
func (r *ActivitySQLRepository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := database.ConvertPlaceholders(`
		INSERT INTO activity_log (actor_id, action, resource_type, resource_id, details,
			remote_addr, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		entry.ActorID, entry.Action, entry.ResourceType, entry.ResourceID,
		entry.Details, entry.RemoteAddr, entry.RequestID, entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to append activity entry: %w", err)
	}
	return nil
}

// ListByActor returns the most recent entries for an actor, newest first.
func (r *ActivitySQLRepository) ListByActor(ctx context.Context, actorID int, limit int) ([]*models.ActivityEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := database.ConvertPlaceholders(`
		SELECT id, actor_id, action, resource_type, resource_id, details,
			remote_addr, request_id, created_at
		FROM activity_log WHERE actor_id = ? ORDER BY created_at DESC LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.ResourceType, &e.ResourceID,
			&e.Details, &e.RemoteAddr, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
