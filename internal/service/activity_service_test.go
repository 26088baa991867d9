package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

func TestActivityLoggerDrainsOnClose(t *testing.T) {
	repo := repository.NewMemoryActivityRepository()
	logger := NewActivityLogger(repo)

	actor := 1
	logger.RecordAction(&actor, models.ActionLogin, "user", "1", map[string]interface{}{"ip": "203.0.113.9"})
	logger.RecordAction(&actor, models.ActionLogout, "user", "1", nil)
	logger.Close()

	entries := repo.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionLogin, entries[0].Action)
	assert.Contains(t, entries[0].Details, "203.0.113.9")
	assert.Empty(t, entries[1].Details, "nil details serialize to an empty payload")
}

func TestActivityLoggerRecordAfterCloseIsDropped(t *testing.T) {
	repo := repository.NewMemoryActivityRepository()
	logger := NewActivityLogger(repo)
	logger.Close()

	logger.Record(&models.ActivityEntry{Action: models.ActionLogin})
	assert.Empty(t, repo.Entries())
}

func TestActivityLoggerConcurrentRecordAndClose(t *testing.T) {
	// Recording while another goroutine shuts the logger down must never
	// panic with a send on a closed channel.
	repo := repository.NewMemoryActivityRepository()
	logger := NewActivityLogger(repo)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				logger.Record(&models.ActivityEntry{Action: models.ActionLogin})
			}
		}()
	}

	close(start)
	logger.Close()
	wg.Wait()
}
