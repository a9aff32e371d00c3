// Package testutil provides shared test helpers for setting up inboxes and
// databases.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/vellum/internal/index"
	"github.com/starford/vellum/internal/storage"
)

// TestDB creates a temporary SQLite database that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "vellum-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestInbox creates a temporary inbox directory with a storage.Provider.
func TestInbox(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
