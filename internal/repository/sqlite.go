package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
	now            func() time.Time
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(ctx context.Context, dsn string, opts Options) (*SQLiteStore, error) {
	opts = opts.withDefaults()

	db, err := sql.Open("sqlite3", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(opts.MaxConns)
	}

	pingCtx, cancel := opContext(ctx, opts.AcquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w: %w", domain.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(pingCtx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db, acquireTimeout: opts.AcquireTimeout, now: opts.Now}
	if err := store.migrate(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, ":memory:?") || strings.Contains(dsn, "mode=memory")
}

// sqliteDSN adds the connection parameters every pooled connection needs:
// foreign keys, a busy timeout, and BEGIN IMMEDIATE so that get-or-create
// takes the write lock before it reads.
func sqliteDSN(dsn string) string {
	base, rawQuery, _ := strings.Cut(dsn, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}
	defaults := map[string]string{
		"_foreign_keys": "on",
		"_busy_timeout": "5000",
		"_txlock":       "immediate",
	}
	for key, val := range defaults {
		if params.Get(key) == "" {
			params.Set(key, val)
		}
	}
	return base + "?" + params.Encode()
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			title TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_message_at DATETIME
		)`,
		// At most one active session per device.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_sessions_active_device ON chat_sessions(device_id) WHERE is_active = 1`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES chat_sessions(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created ON chat_messages(created_at)`,
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
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()
	return classify("ping", s.db.PingContext(ctx))
}

// GetOrCreateActiveSession returns the active session for deviceID, creating
// it with title when none exists. The conditional insert and the lookup run
// in one IMMEDIATE transaction, and the partial unique index rejects a second
// active row, so concurrent callers always resolve to the same session.
func (s *SQLiteStore) GetOrCreateActiveSession(ctx context.Context, deviceID, title string) (string, error) {
	if s == nil || s.db == nil {
		return "", domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", classify("begin get/create session", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO chat_sessions (id, device_id, title, is_active, created_at, last_message_at)
		 SELECT ?, ?, ?, 1, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM chat_sessions WHERE device_id = ? AND is_active = 1)`,
		uuid.New().String(), deviceID, nullString(title), now, now, deviceID); err != nil {
		return "", classify("create session", err)
	}

	var sessionID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM chat_sessions WHERE device_id = ? AND is_active = 1 ORDER BY created_at DESC LIMIT 1`,
		deviceID).Scan(&sessionID); err != nil {
		return "", classify("get active session", err)
	}

	if err := tx.Commit(); err != nil {
		return "", classify("commit get/create session", err)
	}
	return sessionID, nil
}

// TouchSession bumps last_message_at and fills the title if it is still unset.
func (s *SQLiteStore) TouchSession(ctx context.Context, sessionID, fallbackTitle string) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET last_message_at = ?, title = COALESCE(title, ?) WHERE id = ?`,
		s.now(), nullString(fallbackTitle), sessionID)
	if err != nil {
		return classify("touch session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify("touch session", err)
	}
	if affected == 0 {
		return fmt.Errorf("touch session %s: %w", sessionID, domain.ErrNotFound)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	session, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT id, device_id, title, is_active, created_at, last_message_at FROM chat_sessions WHERE id = ?`,
		sessionID))
	if err != nil {
		return nil, classify("get session", err)
	}
	return session, nil
}

// ListSessions lists sessions newest first, optionally filtered by device.
func (s *SQLiteStore) ListSessions(ctx context.Context, deviceID string, limit int) ([]domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	query := `SELECT id, device_id, title, is_active, created_at, last_message_at FROM chat_sessions`
	args := []interface{}{}
	if deviceID != "" {
		query += ` WHERE device_id = ?`
		args = append(args, deviceID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, clampLimit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list sessions", err)
	}
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, classify("list sessions", err)
	}
	return sessions, nil
}

// InsertMessage appends a message to an existing session. The existence check
// is part of the insert statement, so a missing session leaves no row behind.
func (s *SQLiteStore) InsertMessage(ctx context.Context, sessionID string, role domain.Role, content string) (*domain.Message, error) {
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
		 SELECT ?, ?, ?, ?, ?
		 WHERE EXISTS (SELECT 1 FROM chat_sessions WHERE id = ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt, sessionID)
	if err != nil {
		return nil, classify("insert message", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, classify("insert message", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("insert message: session %s: %w", sessionID, domain.ErrNotFound)
	}
	return msg, nil
}

// FetchRecentMessages returns the newest messages across all sessions.
func (s *SQLiteStore) FetchRecentMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	if s == nil || s.db == nil {
		return nil, domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM chat_messages
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		clampLimit(limit))
	if err != nil {
		return nil, classify("fetch messages", err)
	}
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, classify("fetch messages", err)
	}
	return messages, nil
}

// DeleteMessage removes a message by ID. It returns ErrNotFound when no row
// matched.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, messageID string) error {
	if s == nil || s.db == nil {
		return domain.ErrStoreUnavailable
	}
	ctx, cancel := opContext(ctx, s.acquireTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = ?`, messageID)
	if err != nil {
		return classify("delete message", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify("delete message", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}
