package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tmercer/lectern/internal/lecture"
	"github.com/tmercer/lectern/internal/store"
)

// libraryCommitter publishes one completed run: the lecture record, the quiz
// handoff snapshot, and the seeded chat greeting.
type libraryCommitter struct {
	lib      *store.Store
	greeting string
	logger   *slog.Logger

	mu   sync.Mutex
	last *store.Record
}

func newLibraryCommitter(lib *store.Store, greeting string, logger *slog.Logger) *libraryCommitter {
	return &libraryCommitter{lib: lib, greeting: greeting, logger: logger}
}

// Commit runs at pipeline completion, before the workflow reports success.
// A storage failure here fails the run so the artifact stays retryable.
func (c *libraryCommitter) Commit(_ context.Context, result lecture.Result, sourceFile string) error {
	record, err := c.lib.SaveLecture(result, sourceFile)
	if err != nil {
		return err
	}

	snapshot := lecture.QuizSnapshot{
		Questions: result.Quiz,
		WrittenAt: time.Now().UTC(),
	}
	if err := c.lib.WriteQuizSnapshot(snapshot); err != nil {
		return fmt.Errorf("write quiz handoff: %w", err)
	}

	if c.greeting != "" {
		if err := c.lib.AppendChat(record.ID, lecture.ChatEntry{
			Role:    lecture.RoleAssistant,
			Content: c.greeting,
		}); err != nil && c.logger != nil {
			// The run already succeeded; a missing greeting is cosmetic.
			c.logger.Warn("seed chat greeting failed", "lecture_id", record.ID, "error", err.Error())
		}
	}

	c.mu.Lock()
	c.last = &record
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("lecture committed", "lecture_id", record.ID, "title", record.Title)
	}
	return nil
}

// lastSaved returns the record persisted by the most recent Commit.
func (c *libraryCommitter) lastSaved() (store.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return store.Record{}, false
	}
	return *c.last, true
}
