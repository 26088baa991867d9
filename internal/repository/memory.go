package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deskhive/deskhive/internal/models"
)

// In-memory repository implementations backing service and handler tests.
// They honor the same uniqueness rules as the SQL implementations
// (users.email, sessions.token, tickets.message_id).

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]*models.User
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[int]*models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == email {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = r.nextID
	r.nextID++
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) List(ctx context.Context, limit int) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id int, patch models.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		for otherID, other := range r.users {
			if otherID != id && other.Email == email {
				return ErrDuplicate
			}
		}
		u.Email = email
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.CompanyID != nil {
		u.CompanyID = patch.CompanyID
	}
	if patch.Department != nil {
		u.Department = patch.Department
	}
	if patch.JobTitle != nil {
		u.JobTitle = patch.JobTitle
	}
	if patch.Phone != nil {
		u.Phone = patch.Phone
	}
	if patch.Password != nil {
		u.PasswordHash = *patch.Password
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	t := at.UTC()
	u.LastLoginAt = &t
	u.UpdatedAt = t
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, u := range r.users {
		if models.ParseRole(string(u.Role)) == models.RoleAdmin && u.IsActive {
			count++
		}
	}
	return count, nil
}

// MemorySessionRepository is an in-memory SessionRepository.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewMemorySessionRepository creates an empty in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *MemorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.Token == "" {
		return errors.New("session token is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.Token]; exists {
		return ErrDuplicate
	}
	cp := *session
	r.sessions[session.Token] = &cp
	return nil
}

func (r *MemorySessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}

func (r *MemorySessionRepository) DeleteByUserID(ctx context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
			count++
		}
	}
	return count, nil
}

func (r *MemorySessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
			count++
		}
	}
	return count, nil
}

// MemoryTicketRepository is an in-memory TicketRepository.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	nextID  int
	tickets map[int]*models.Ticket
}

// NewMemoryTicketRepository creates an empty in-memory ticket repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{nextID: 1, tickets: make(map[int]*models.Ticket)}
}

func (r *MemoryTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.MessageID != nil && *ticket.MessageID != "" {
		for _, t := range r.tickets {
			if t.MessageID != nil && *t.MessageID == *ticket.MessageID {
				return ErrDuplicate
			}
		}
	}
	now := time.Now().UTC()
	ticket.ID = r.nextID
	r.nextID++
	if ticket.TicketNumber == "" {
		ticket.TicketNumber = GenerateTicketNumber(now)
	}
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *MemoryTicketRepository) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTicketRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tickets {
		if t.MessageID != nil && *t.MessageID == messageID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryTicketRepository) List(ctx context.Context, filter models.TicketFilter) ([]*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tickets []*models.Ticket
	for _, t := range r.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.AssigneeID > 0 && (t.AssigneeID == nil || *t.AssigneeID != filter.AssigneeID) {
			continue
		}
		if filter.CreatedBy > 0 && (t.CreatedBy == nil || *t.CreatedBy != filter.CreatedBy) {
			continue
		}
		cp := *t
		tickets = append(tickets, &cp)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if len(tickets) > limit {
		tickets = tickets[:limit]
	}
	return tickets, nil
}

func (r *MemoryTicketRepository) Update(ctx context.Context, id int, patch models.TicketPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Subject != nil {
		t.Subject = *patch.Subject
	}
	if patch.Body != nil {
		t.Body = *patch.Body
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = patch.AssigneeID
	}
	if patch.CompanyID != nil {
		t.CompanyID = patch.CompanyID
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryTicketRepository) Close(ctx context.Context, id int, closedAt time.Time, resolutionHours int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return ErrNotFound
	}
	closed := closedAt.UTC()
	t.Status = models.StatusClosed
	t.ClosedAt = &closed
	t.ResolutionTime = &resolutionHours
	t.UpdatedAt = closed
	return nil
}

func (r *MemoryTicketRepository) UpsertByMessageID(ctx context.Context, ticket *models.Ticket) (bool, error) {
	if ticket.MessageID == nil || *ticket.MessageID == "" {
		return false, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tickets {
		if existing.MessageID != nil && *existing.MessageID == *ticket.MessageID {
			existing.Subject = ticket.Subject
			existing.Body = ticket.Body
			existing.Status = ticket.Status
			existing.UpdatedAt = time.Now().UTC()
			cp := *existing
			*ticket = cp
			return false, nil
		}
	}

	now := time.Now().UTC()
	ticket.ID = r.nextID
	r.nextID++
	if ticket.TicketNumber == "" {
		ticket.TicketNumber = GenerateTicketNumber(now)
	}
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return true, nil
}

func (r *MemoryTicketRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

// MemoryActivityRepository is an in-memory ActivityRepository.
type MemoryActivityRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries []*models.ActivityEntry
}

// NewMemoryActivityRepository creates an empty in-memory activity repository.
func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{nextID: 1}
}

func (r *MemoryActivityRepository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.ID = r.nextID
	r.nextID++
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MemoryActivityRepository) ListByActor(ctx context.Context, actorID int, limit int) ([]*models.ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var entries []*models.ActivityEntry
	for i := len(r.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		e := r.entries[i]
		if e.ActorID != nil && *e.ActorID == actorID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

// Entries returns a snapshot of all recorded entries, oldest first.
// Test helper.
func (r *MemoryActivityRepository) Entries() []*models.ActivityEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.ActivityEntry, 0, len(r.entries))
	for _, e := range r.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// MemoryCompanyRepository is an in-memory CompanyRepository.
type MemoryCompanyRepository struct {
	mu        sync.RWMutex
	nextID    int
	companies map[int]*models.Company
}

// NewMemoryCompanyRepository creates an empty in-memory company repository.
func NewMemoryCompanyRepository() *MemoryCompanyRepository {
	return &MemoryCompanyRepository{nextID: 1, companies: make(map[int]*models.Company)}
}

func (r *MemoryCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Name == company.Name {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	company.ID = r.nextID
	r.nextID++
	company.CreatedAt = now
	company.UpdatedAt = now
	cp := *company
	r.companies[company.ID] = &cp
	return nil
}

func (r *MemoryCompanyRepository) GetByID(ctx context.Context, id int) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCompanyRepository) List(ctx context.Context, limit int) ([]*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	companies := make([]*models.Company, 0, len(r.companies))
	for _, c := range r.companies {
		cp := *c
		companies = append(companies, &cp)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Name < companies[j].Name })
	if len(companies) > limit {
		companies = companies[:limit]
	}
	return companies, nil
}

func (r *MemoryCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.companies[company.ID]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range r.companies {
		if otherID != company.ID && other.Name == company.Name {
			return ErrDuplicate
		}
	}
	company.CreatedAt = existing.CreatedAt
	company.UpdatedAt = time.Now().UTC()
	cp := *company
	r.companies[company.ID] = &cp
	return nil
}

func (r *MemoryCompanyRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return ErrNotFound
	}
	delete(r.companies, id)
	return nil
}
