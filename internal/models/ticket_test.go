package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTicketStatus(t *testing.T) {
	status, ok := ParseTicketStatus(" Open ")
	assert.True(t, ok)
	assert.Equal(t, StatusOpen, status)

	status, ok = ParseTicketStatus("resolved")
	assert.False(t, ok)
	assert.Equal(t, StatusNew, status, "unknown stored values read back as new")
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TicketStatus
		allowed  bool
	}{
		{StatusNew, StatusOpen, true},
		{StatusNew, StatusClosed, true},
		{StatusNew, StatusPending, false},
		{StatusOpen, StatusPending, true},
		{StatusOpen, StatusClosed, true},
		{StatusOpen, StatusNew, false},
		{StatusPending, StatusOpen, true},
		{StatusPending, StatusClosed, true},
		{StatusPending, StatusNew, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusNew, false},
		{StatusClosed, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatusSelfTransitionIsAllowed(t *testing.T) {
	for _, s := range []TicketStatus{StatusNew, StatusOpen, StatusPending, StatusClosed} {
		assert.True(t, s.CanTransition(s), "%s -> %s should be a no-op", s, s)
	}
}

func TestParseTicketPriorityFallsBackToMedium(t *testing.T) {
	priority, ok := ParseTicketPriority("blocker")
	assert.False(t, ok)
	assert.Equal(t, PriorityMedium, priority)

	priority, ok = ParseTicketPriority("CRITICAL")
	assert.True(t, ok)
	assert.Equal(t, PriorityCritical, priority)
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}

	assert.True(t, s.Expired(now), "expiry instant counts as expired")
	assert.True(t, s.Expired(now.Add(time.Second)))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
