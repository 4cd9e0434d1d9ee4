// Package helpers holds shared test fixtures.
package helpers

import (
	"context"
	"testing"

	"github.com/xiaot623/gogo/muednote/internal/repository"
)

// NewTestStore returns an in-memory SQLite store closed at test cleanup.
func NewTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(context.Background(), ":memory:", repository.Options{})
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
