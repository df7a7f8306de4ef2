package store

import (
	"context"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// AppendEvent appends one activity log entry and persists.
func (s *Store) AppendEvent(ctx context.Context, e domain.EventEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.EventEntry, len(s.events), len(s.events)+1)
	copy(next, s.events)
	next = append(next, e)

	return s.persistEvents(next)
}

// ListEvents returns log entries, optionally filtered by user ID.
func (s *Store) ListEvents(ctx context.Context, userID string) ([]domain.EventEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.EventEntry, 0, len(s.events))
	for i := range s.events {
		if userID != "" && s.events[i].UserID != userID {
			continue
		}
		out = append(out, s.events[i])
	}
	return out, nil
}

// ClearEvents drops the entire activity log.
func (s *Store) ClearEvents(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persistEvents([]domain.EventEntry{})
}
