package journal

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/snapcurator/internal/request"
)

// Entry is one recorded mutation.
type Entry struct {
	ID       int64
	At       time.Time
	Method   string
	Path     string
	Status   int
	Outcome  string
	Applied  bool
	Duration time.Duration
}

// Record stores one entry.
func (db *DB) Record(e Entry) error {
	_, err := db.conn.Exec(`
		INSERT INTO mutations (at, method, path, status, outcome, applied, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.At.UTC(), e.Method, e.Path, e.Status, e.Outcome, e.Applied, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, at, method, path, status, outcome, applied, duration_ms
		FROM mutations ORDER BY at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.At, &e.Method, &e.Path, &e.Status, &e.Outcome, &e.Applied, &ms); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// Observer returns a request observer that records every settled mutation.
// Reads are not journaled.
func (db *DB) Observer(logger *slog.Logger) request.Observer {
	return func(s request.Settlement) {
		if s.Method == http.MethodGet || s.Method == "" {
			return
		}
		outcome := "ok"
		if s.Failure != nil {
			outcome = s.Failure.Kind.String()
		}
		err := db.Record(Entry{
			At:       s.At,
			Method:   s.Method,
			Path:     s.Path,
			Status:   s.Status,
			Outcome:  outcome,
			Applied:  s.Applied,
			Duration: s.Duration,
		})
		if err != nil {
			logger.Warn("journal: record failed", slog.String("path", s.Path), slog.String("error", err.Error()))
		}
	}
}
