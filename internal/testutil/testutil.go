// Package testutil provides shared test helpers: an in-memory recommendation
// backend, clients pointed at it, and temporary journals.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/snapcurator/internal/journal"
	"github.com/starford/snapcurator/internal/request"
)

// Logger returns a logger that discards everything below error.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Client creates a request client rooted at baseURL.
func Client(t *testing.T, baseURL string, opts ...request.Option) *request.Client {
	t.Helper()
	opts = append([]request.Option{request.WithLogger(Logger())}, opts...)
	c, err := request.NewClient(baseURL, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// TestJournal creates a temporary journal database that is automatically cleaned up.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "snapcurator-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
