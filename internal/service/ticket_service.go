package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

// ErrBadTransition is returned for a status change the state machine
// disallows.
var ErrBadTransition = errors.New("invalid status transition")

// TicketService manages ticket lifecycle above the repository.
type TicketService struct {
	tickets  repository.TicketRepository
	activity *ActivityLogger
	now      func() time.Time
}

// NewTicketService creates a new ticket service.
func NewTicketService(tickets repository.TicketRepository, activity *ActivityLogger) *TicketService {
	return &TicketService{tickets: tickets, activity: activity, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// CreateTicketInput carries the fields for manual ticket creation.
type CreateTicketInput struct {
	Subject       string
	Body          string
	Priority      string
	Category      string
	CustomerName  *string
	CustomerEmail *string
	CompanyID     *int
	AssigneeID    *int
}

// Create opens a new manual ticket in status "new".
func (s *TicketService) Create(ctx context.Context, actorID *int, in CreateTicketInput) (*models.Ticket, error) {
	if in.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	priority, _ := models.ParseTicketPriority(in.Priority)
	category := in.Category
	if category == "" {
		category = "general"
	}

	ticket := &models.Ticket{
		Subject:       in.Subject,
		Body:          in.Body,
		Status:        models.StatusNew,
		Priority:      priority,
		Category:      category,
		Source:        models.SourceManual,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CompanyID:     in.CompanyID,
		AssigneeID:    in.AssigneeID,
		CreatedBy:     actorID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.activity.RecordAction(actorID, models.ActionTicketCreated, "ticket", fmt.Sprint(ticket.ID),
		map[string]interface{}{"subject": ticket.Subject, "source": ticket.Source})
	return ticket, nil
}

// Get returns a ticket by id.
func (s *TicketService) Get(ctx context.Context, id int) (*models.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// List returns the most recent tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// Update applies a patch. Status changes go through the state machine:
// new -> open -> pending <-> open -> closed, closed terminal. Closing via
// Update is redirected through Close so resolution time is always computed.
func (s *TicketService) Update(ctx context.Context, actorID *int, id int, patch models.TicketPatch) (*models.Ticket, error) {
	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if !current.Status.CanTransition(*patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, current.Status, *patch.Status)
		}
		if *patch.Status == models.StatusClosed {
			patch.Status = nil
			if _, err := s.applyPatch(ctx, actorID, id, patch); err != nil {
				return nil, err
			}
			return s.Close(ctx, actorID, id)
		}
	}
	return s.applyPatch(ctx, actorID, id, patch)
}

func (s *TicketService) applyPatch(ctx context.Context, actorID *int, id int, patch models.TicketPatch) (*models.Ticket, error) {
	if err := s.tickets.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	s.activity.RecordAction(actorID, models.ActionTicketUpdated, "ticket", fmt.Sprint(id), nil)
	return s.tickets.GetByID(ctx, id)
}

// Close transitions a ticket to closed, stamping closed_at and the
// whole-hour resolution time since creation. Closing a closed ticket is a
// no-op returning the current row.
func (s *TicketService) Close(ctx context.Context, actorID *int, id int) (*models.Ticket, error) {
	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.StatusClosed {
		return current, nil
	}

	closedAt := s.now().UTC()
	hours := int(closedAt.Sub(current.CreatedAt).Round(time.Hour).Hours())
	if hours < 0 {
		hours = 0
	}
	if err := s.tickets.Close(ctx, id, closedAt, hours); err != nil {
		return nil, err
	}

	s.activity.RecordAction(actorID, models.ActionTicketClosed, "ticket", fmt.Sprint(id),
		map[string]interface{}{"resolution_time": hours})
	return s.tickets.GetByID(ctx, id)
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, actorID *int, id int) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.RecordAction(actorID, "ticket_deleted", "ticket", fmt.Sprint(id), nil)
	return nil
}
