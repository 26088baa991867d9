package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deskhive/deskhive/internal/database"
	"github.com/deskhive/deskhive/internal/models"
)

// TicketRepository defines the interface for ticket operations.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id int) (*models.Ticket, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.Ticket, error)
	List(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error)
	Update(ctx context.Context, id int, patch models.TicketPatch) error
	Close(ctx context.Context, id int, closedAt time.Time, resolutionHours int) error
	UpsertByMessageID(ctx context.Context, ticket *models.Ticket) (created bool, err error)
	Delete(ctx context.Context, id int) error
}

// TicketSQLRepository handles database operations for the tickets table.
type TicketSQLRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sql.DB) *TicketSQLRepository {
	return &TicketSQLRepository{db: db}
}

const ticketColumns = `id, ticket_number, subject, body, status, priority, category, source,
	message_id, from_email, to_email, customer_name, customer_id, customer_email,
	customer_phone, company_id, assignee_id, created_by, created_at, updated_at,
	closed_at, resolution_time`

// Create inserts a new ticket.
func (r *TicketSQLRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	if ticket.TicketNumber == "" {
		ticket.TicketNumber = GenerateTicketNumber(now)
	}

	query := database.ConvertPlaceholders(`
		INSERT INTO tickets (ticket_number, subject, body, status, priority, category, source,
			message_id, from_email, to_email, customer_name, customer_id, customer_email,
			customer_phone, company_id, assignee_id, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	args := []interface{}{
		ticket.TicketNumber, ticket.Subject, ticket.Body, string(ticket.Status),
		string(ticket.Priority), ticket.Category, ticket.Source, ticket.MessageID,
		ticket.FromEmail, ticket.ToEmail, ticket.CustomerName, ticket.CustomerID,
		ticket.CustomerEmail, ticket.CustomerPhone, ticket.CompanyID,
		ticket.AssigneeID, ticket.CreatedBy, now, now,
	}

	// lib/pq does not implement LastInsertId, so the Postgres arm asks for
	// the id in the statement itself.
	if database.IsPostgreSQL() {
		err := r.db.QueryRowContext(ctx, query+` RETURNING id`, args...).Scan(&ticket.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert ticket: %w", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil && id > 0 {
		ticket.ID = int(id)
	}
	return nil
}

// GetByID retrieves a ticket by primary key.
func (r *TicketSQLRepository) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	query := database.ConvertPlaceholders(`SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByMessageID retrieves the ticket ingested from the given mail message.
func (r *TicketSQLRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Ticket, error) {
	query := database.ConvertPlaceholders(`SELECT ` + ticketColumns + ` FROM tickets WHERE message_id = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, messageID))
}

// List returns the most recent tickets matching the filter, newest first.
func (r *TicketSQLRepository) List(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.AssigneeID > 0 {
		conds = append(conds, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.CreatedBy > 0 {
		conds = append(conds, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// Update applies a patch to a ticket.
func (r *TicketSQLRepository) Update(ctx context.Context, id int, patch models.TicketPatch) error {
	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Subject != nil {
		addSet("subject", *patch.Subject)
	}
	if patch.Body != nil {
		addSet("body", *patch.Body)
	}
	if patch.Status != nil {
		addSet("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		addSet("priority", string(*patch.Priority))
	}
	if patch.Category != nil {
		addSet("category", *patch.Category)
	}
	if patch.AssigneeID != nil {
		addSet("assignee_id", *patch.AssigneeID)
	}
	if patch.CompanyID != nil {
		addSet("company_id", *patch.CompanyID)
	}
	if len(sets) == 0 {
		return nil
	}
	addSet("updated_at", time.Now().UTC())
	args = append(args, id)

	query := database.ConvertPlaceholders(
		`UPDATE tickets SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	return requireRowsAffected(result)
}

// Close marks a ticket closed, stamping closed_at and the precomputed
// whole-hour resolution time.
func (r *TicketSQLRepository) Close(ctx context.Context, id int, closedAt time.Time, resolutionHours int) error {
	query := database.ConvertPlaceholders(`
		UPDATE tickets SET status = ?, closed_at = ?, resolution_time = ?, updated_at = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		string(models.StatusClosed), closedAt.UTC(), resolutionHours, closedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to close ticket: %w", err)
	}
	return requireRowsAffected(result)
}

// UpsertByMessageID inserts the ticket or, when a row with the same mail
// message id already exists, overwrites its subject, body and status and
// bumps updated_at. created_at and ticket_number of the existing row are
// preserved so re-ingesting a message never duplicates a ticket or resets
// history.
func (r *TicketSQLRepository) UpsertByMessageID(ctx context.Context, ticket *models.Ticket) (bool, error) {
	if ticket.MessageID == nil || *ticket.MessageID == "" {
		return false, errors.New("message id is required for upsert")
	}

	// Existence check only feeds the created/updated flag in the result
	// summary; the upsert itself stays atomic either way.
	created := false
	if _, err := r.GetByMessageID(ctx, *ticket.MessageID); errors.Is(err, ErrNotFound) {
		created = true
	} else if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if ticket.TicketNumber == "" {
		ticket.TicketNumber = GenerateTicketNumber(now)
	}

	query := database.ConvertPlaceholders(`
		INSERT INTO tickets (ticket_number, subject, body, status, priority, category, source,
			message_id, from_email, to_email, customer_name, customer_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		` + database.UpsertConflictClause("message_id") + ` DO UPDATE SET
			subject = excluded.subject,
			body = excluded.body,
			status = excluded.status,
			updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		ticket.TicketNumber, ticket.Subject, ticket.Body, string(ticket.Status),
		string(ticket.Priority), ticket.Category, ticket.Source, ticket.MessageID,
		ticket.FromEmail, ticket.ToEmail, ticket.CustomerName, ticket.CustomerEmail,
		now, now)
	if err != nil {
		return false, fmt.Errorf("failed to upsert ticket: %w", err)
	}

	stored, err := r.GetByMessageID(ctx, *ticket.MessageID)
	if err != nil {
		return false, fmt.Errorf("failed to read back upserted ticket: %w", err)
	}
	*ticket = *stored
	return created, nil
}

// Delete removes a ticket row.
func (r *TicketSQLRepository) Delete(ctx context.Context, id int) error {
	query := database.ConvertPlaceholders(`DELETE FROM tickets WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return requireRowsAffected(result)
}

func (r *TicketSQLRepository) scanOne(row *sql.Row) (*models.Ticket, error) {
	ticket, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ticket, err
}

func (r *TicketSQLRepository) scanRow(row rowScanner) (*models.Ticket, error) {
	var (
		t        models.Ticket
		status   string
		priority string
	)
	err := row.Scan(&t.ID, &t.TicketNumber, &t.Subject, &t.Body, &status, &priority,
		&t.Category, &t.Source, &t.MessageID, &t.FromEmail, &t.ToEmail,
		&t.CustomerName, &t.CustomerID, &t.CustomerEmail, &t.CustomerPhone,
		&t.CompanyID, &t.AssigneeID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&t.ClosedAt, &t.ResolutionTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}
	t.Status, _ = models.ParseTicketStatus(status)
	t.Priority, _ = models.ParseTicketPriority(priority)
	return &t, nil
}

// GenerateTicketNumber produces a date-prefixed human ticket number, e.g.
// 20260830-143205-0417.
func GenerateTicketNumber(now time.Time) string {
	return fmt.Sprintf("%s-%04d", now.UTC().Format("20060102-150405"), now.UnixNano()%10000)
}
