// Package repository implements session and message persistence.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// DefaultMessageLimit bounds every fetch of recent messages.
const DefaultMessageLimit = 50

// Store defines the interface for session and message persistence.
type Store interface {
	// Session operations
	GetOrCreateActiveSession(ctx context.Context, deviceID, title string) (string, error)
	TouchSession(ctx context.Context, sessionID, fallbackTitle string) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context, deviceID string, limit int) ([]domain.Session, error)

	// Message operations
	InsertMessage(ctx context.Context, sessionID string, role domain.Role, content string) (*domain.Message, error)
	FetchRecentMessages(ctx context.Context, limit int) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, messageID string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Options tunes the connection pool shared by every store implementation.
type Options struct {
	MaxConns       int
	AcquireTimeout time.Duration
	// Now overrides the clock used for created_at and last_message_at.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxConns <= 0 {
		o.MaxConns = 5
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// Open connects to the database named by dsn. postgres:// and postgresql://
// URLs use the Postgres store; anything else is treated as a SQLite DSN.
func Open(ctx context.Context, dsn string, opts Options) (Store, error) {
	if isPostgresDSN(dsn) {
		s, err := NewPostgresStore(ctx, dsn, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewSQLiteStore(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultMessageLimit {
		return DefaultMessageLimit
	}
	return limit
}

// opContext bounds a single store call so a starved pool surfaces as an
// error instead of blocking forever.
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// classify maps driver errors onto the domain error set.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrIO, err)
	}
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.CreatedAt = msg.CreatedAt.UTC()
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var title sql.NullString
	var lastMessageAt sql.NullTime
	if err := row.Scan(&session.ID, &session.DeviceID, &title, &session.IsActive, &session.CreatedAt, &lastMessageAt); err != nil {
		return nil, err
	}
	session.CreatedAt = session.CreatedAt.UTC()
	if title.Valid {
		session.Title = title.String
	}
	if lastMessageAt.Valid {
		t := lastMessageAt.Time.UTC()
		session.LastMessageAt = &t
	}
	return &session, nil
}

func scanSessions(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
