package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

const activityBufferSize = 256

// ActivityLogger appends audit entries off the request path. Record never
// blocks and never returns an error: audit logging is best-effort telemetry
// and is structurally incapable of failing a business operation.
type ActivityLogger struct {
	repo   repository.ActivityRepository
	logger *log.Logger

	entries chan *models.ActivityEntry
	done    chan struct{}
	once    sync.Once

	// mu serializes sends against Close so the channel is never closed
	// while a Record is mid-send.
	mu     sync.RWMutex
	closed bool
}

// NewActivityLogger creates the logger and starts its writer goroutine.
func NewActivityLogger(repo repository.ActivityRepository) *ActivityLogger {
	l := &ActivityLogger{
		repo:    repo,
		logger:  log.New(log.Writer(), "[ACTIVITY] ", log.LstdFlags),
		entries: make(chan *models.ActivityEntry, activityBufferSize),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// Record queues an audit entry. Drops the entry with a warning when the
// buffer is full rather than blocking the caller.
func (l *ActivityLogger) Record(entry *models.ActivityEntry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	select {
	case l.entries <- entry:
	default:
		l.logger.Printf("buffer full, dropping %s entry", entry.Action)
	}
}

// RecordAction is a convenience wrapper building the entry from parts.
// The details payload is serialized to JSON; serialization failures degrade
// to an empty details field.
func (l *ActivityLogger) RecordAction(actorID *int, action, resourceType, resourceID string, details map[string]interface{}) {
	var payload string
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			payload = string(b)
		}
	}
	l.Record(&models.ActivityEntry{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      payload,
	})
}

// ListByActor returns the most recent entries for an actor, newest first.
func (l *ActivityLogger) ListByActor(ctx context.Context, actorID, limit int) ([]*models.ActivityEntry, error) {
	return l.repo.ListByActor(ctx, actorID, limit)
}

// Close stops the writer after draining queued entries. Best-effort: entries
// recorded after Close are dropped.
func (l *ActivityLogger) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.entries)
		l.mu.Unlock()
		<-l.done
	})
}

func (l *ActivityLogger) run() {
	defer close(l.done)
	for entry := range l.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := l.repo.Append(ctx, entry); err != nil {
			l.logger.Printf("failed to append %s entry: %v", entry.Action, err)
		}
		cancel()
	}
}
