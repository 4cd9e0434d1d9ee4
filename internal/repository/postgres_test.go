package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/muednote/internal/domain"
)

// Postgres tests need a disposable database; they are skipped unless
// MUEDNOTE_TEST_POSTGRES_URL points at one.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("MUEDNOTE_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("MUEDNOTE_TEST_POSTGRES_URL not set")
	}
	store, err := NewPostgresStore(context.Background(), dsn, Options{})
	require.NoError(t, err)
	_, err = store.db.Exec(`TRUNCATE chat_messages, chat_sessions`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresStoreConcurrentSessionCreation(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgresStore(t)

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.GetOrCreateActiveSession(ctx, "default", "race")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	sessions, err := store.ListSessions(ctx, "default", 50)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestPostgresStoreMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgresStore(t)

	id, err := store.GetOrCreateActiveSession(ctx, "default", "hello world")
	require.NoError(t, err)

	msg, err := store.InsertMessage(ctx, id, domain.RoleUser, "hello world")
	require.NoError(t, err)
	require.NoError(t, store.TouchSession(ctx, id, "hello world"))

	messages, err := store.FetchRecentMessages(ctx, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, msg.ID, messages[0].ID)

	require.NoError(t, store.DeleteMessage(ctx, msg.ID))
	assert.True(t, errors.Is(store.DeleteMessage(ctx, msg.ID), domain.ErrNotFound))
	assert.True(t, errors.Is(store.DeleteMessage(ctx, "not-a-uuid"), domain.ErrNotFound))

	_, err = store.InsertMessage(ctx, "00000000-0000-0000-0000-000000000000", domain.RoleUser, "orphan")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
