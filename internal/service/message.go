package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xiaot623/gogo/muednote/internal/domain"
	"github.com/xiaot623/gogo/muednote/internal/repository"
)

// FetchMessages returns the most recent messages across all sessions, newest first.
func (s *Service) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	messages, err := s.store.FetchRecentMessages(ctx, repository.DefaultMessageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

// DeleteMessage removes a message. Deleting an unknown ID is logged and
// reported as success.
func (s *Service) DeleteMessage(ctx context.Context, messageID string) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	if messageID == "" {
		return fmt.Errorf("message_id is required: %w", domain.ErrInvalidRequest)
	}

	err := s.store.DeleteMessage(ctx, messageID)
	switch {
	case err == nil:
		log.Printf("Message deleted: %s", messageID)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		log.Printf("Message not found: %s", messageID)
		return nil
	default:
		log.Printf("Failed to delete message: %v", err)
		return fmt.Errorf("failed to delete message: %w", err)
	}
}

// ListSessions lists sessions for a device (all devices when deviceID is empty).
func (s *Service) ListSessions(ctx context.Context, deviceID string, limit int) ([]domain.Session, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	sessions, err := s.store.ListSessions(ctx, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves a session by ID.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Health reports whether the store is reachable.
func (s *Service) Health(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrStoreUnavailable
	}
	return s.store.Ping(ctx)
}
