package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// invalid_text_representation: a malformed uuid can never match a row.
const pgInvalidTextRepresentation = "22P02"

// PostgresStore implements Store using PostgreSQL through the pgx driver.
type PostgresStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
	now            func() time.Time
}

// NewPostgresStore creates a new Postgres store.
func NewPostgresStore(ctx context.Context, dsn string, opts Options) (*PostgresStore, error) {
	opts = opts.withDefaults()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxConns)

	pingCtx, cancel := opContext(ctx, opts.AcquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w: %w", domain.ErrStoreUnavailable, err)
	}

	store := &PostgresStore{db: db, acquireTimeout: opts.AcquireTimeout, now: opts.Now}
	if err := store.migrate(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *PostgresStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id UUID PRIMARY KEY,
			device_id TEXT NOT NULL,
			title TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_message_at TIMESTAMPTZ
		)`,
		// At most one active session per device.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_sessions_active_device ON chat_sessions(device_id) WHERE is_active`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created ON chat_messages(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()
	return classifyPG("ping", s.db.PingContext(ctx))
}

// GetOrCreateActiveSession resolves the active session for deviceID in one
// statement. The data-modifying CTE only inserts when no active row exists;
// ON CONFLICT covers the window where two statements race past NOT EXISTS,
// and the trailing lookup then sees the winner's row.
func (s *PostgresStore) GetOrCreateActiveSession(ctx context.Context, deviceID, title string) (string, error) {
	if s == nil || s.db == nil {
		return "", domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	var sessionID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		WITH active_session AS (
			SELECT id FROM chat_sessions
			WHERE device_id = $2 AND is_active = true
			ORDER BY created_at DESC
			LIMIT 1
		),
		new_session AS (
			INSERT INTO chat_sessions (id, device_id, title, is_active, created_at, last_message_at)
			SELECT $1::uuid, $2, $3, true, $4, $4
			WHERE NOT EXISTS (SELECT 1 FROM active_session)
			ON CONFLICT (device_id) WHERE is_active DO NOTHING
			RETURNING id
		)
		SELECT COALESCE(
			(SELECT id::text FROM active_session),
			(SELECT id::text FROM new_session)
		)`,
		uuid.New().String(), deviceID, nullString(title), s.now()).Scan(&sessionID)
	if err != nil {
		return "", classifyPG("get/create session", err)
	}
	if sessionID.Valid {
		return sessionID.String, nil
	}

	// Lost the race: another statement committed the active row after our
	// snapshot. It is visible now.
	if err := s.db.QueryRowContext(ctx,
		`SELECT id::text FROM chat_sessions WHERE device_id = $1 AND is_active = true ORDER BY created_at DESC LIMIT 1`,
		deviceID).Scan(&sessionID); err != nil {
		return "", classifyPG("get active session", err)
	}
	return sessionID.String, nil
}

// TouchSession bumps last_message_at and fills the title if it is still unset.
func (s *PostgresStore) TouchSession(ctx context.Context, sessionID, fallbackTitle string) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET last_message_at = $3, title = COALESCE(title, $2) WHERE id = $1::uuid`,
		sessionID, nullString(fallbackTitle), s.now())
	if err != nil {
		return classifyPG("touch session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classifyPG("touch session", err)
	}
	if affected == 0 {
		return fmt.Errorf("touch session %s: %w", sessionID, domain.ErrNotFound)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	session, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT id::text, device_id, title, is_active, created_at, last_message_at FROM chat_sessions WHERE id = $1::uuid`,
		sessionID))
	if err != nil {
		return nil, classifyPG("get session", err)
	}
	return session, nil
}

// ListSessions lists sessions newest first, optionally filtered by device.
func (s *PostgresStore) ListSessions(ctx context.Context, deviceID string, limit int) ([]domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id::text, device_id, title, is_active, created_at, last_message_at
		 FROM chat_sessions
		 WHERE ($1 = '' OR device_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		deviceID, clampLimit(limit))
	if err != nil {
		return nil, classifyPG("list sessions", err)
	}
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, classifyPG("list sessions", err)
	}
	return sessions, nil
}

// InsertMessage appends a message to an existing session.
func (s *PostgresStore) InsertMessage(ctx context.Context, sessionID string, role domain.Role, content string) (*domain.Message, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	msg := &domain.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, created_at)
		 SELECT $1::uuid, $2::uuid, $3, $4, $5
		 WHERE EXISTS (SELECT 1 FROM chat_sessions WHERE id = $2::uuid)`,
		msg.ID, msg.SessionID, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, classifyPG("insert message", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, classifyPG("insert message", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("insert message: session %s: %w", sessionID, domain.ErrNotFound)
	}
	return msg, nil
}

// FetchRecentMessages returns the newest messages across all sessions.
func (s *PostgresStore) FetchRecentMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id::text, session_id::text, role, content, created_at
		 FROM chat_messages
		 ORDER BY created_at DESC
		 LIMIT $1`,
		clampLimit(limit))
	if err != nil {
		return nil, classifyPG("fetch messages", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, classifyPG("fetch messages", err)
	}
	return messages, nil
}

// DeleteMessage removes a message by ID. It returns ErrNotFound when no row
// matched.
func (s *PostgresStore) DeleteMessage(ctx context.Context, messageID string) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = $1::uuid`, messageID)
	if err != nil {
		return classifyPG("delete message", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classifyPG("delete message", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}

func classifyPG(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
		return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pgErr.Message)
	}
	return classify(op, err)
}
