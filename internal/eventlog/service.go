package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/logger"
)

// Repository is the persistence seam for activity entries.
type Repository interface {
	AppendEvent(ctx context.Context, e domain.EventEntry) error
	ListEvents(ctx context.Context, userID string) ([]domain.EventEntry, error)
	ClearEvents(ctx context.Context) error
}

// Service records and serves the per-user activity log.
type Service interface {
	// Record appends one entry; failures are logged, not fatal, because
	// the log is informational and must never block a user action.
	Record(ctx context.Context, userID, userTag, action, details string)

	// List returns entries, newest last, optionally filtered by user.
	List(ctx context.Context, userID string) ([]domain.EventEntry, error)

	// Clear drops the whole log (admin only; permission checked upstream).
	Clear(ctx context.Context) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new activity log service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Record(ctx context.Context, userID, userTag, action, details string) {
	log := logger.FromContext(ctx)

	entry := domain.EventEntry{
		Timestamp: s.now().UTC(),
		UserID:    userID,
		UserTag:   userTag,
		Action:    action,
		Details:   details,
	}
	if err := s.repo.AppendEvent(ctx, entry); err != nil {
		log.Error(LogMsgFailedToLogEvent, "error", err, "action", action, "user_id", userID)
		return
	}
	log.Debug(LogMsgEventLogged, "action", action, "user_id", userID)
}

func (s *service) List(ctx context.Context, userID string) ([]domain.EventEntry, error) {
	entries, err := s.repo.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return entries, nil
}

func (s *service) Clear(ctx context.Context) error {
	if err := s.repo.ClearEvents(ctx); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	logger.FromContext(ctx).Info(LogMsgEventLogCleared)
	return nil
}
