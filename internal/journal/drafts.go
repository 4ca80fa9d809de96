package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/models"
)

// DraftInfo summarizes a stored draft.
type DraftInfo struct {
	Name      string
	Count     int
	UpdatedAt time.Time
}

// SaveDraft stores an ordered featured list under name, replacing any previous draft.
func (db *DB) SaveDraft(name string, snaps []models.FeaturedSnap) error {
	if snaps == nil {
		snaps = []models.FeaturedSnap{}
	}
	raw, err := json.Marshal(snaps)
	if err != nil {
		return fmt.Errorf("journal: encode draft: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO drafts (name, snaps, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			snaps      = excluded.snaps,
			updated_at = excluded.updated_at
	`, name, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("journal: save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the draft stored under name.
func (db *DB) LoadDraft(name string) ([]models.FeaturedSnap, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT snaps FROM drafts WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal: draft %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("journal: load draft: %w", err)
	}
	var snaps []models.FeaturedSnap
	if err := json.Unmarshal([]byte(raw), &snaps); err != nil {
		return nil, fmt.Errorf("journal: decode draft: %w", err)
	}
	return snaps, nil
}

// DeleteDraft removes a draft. Deleting a missing draft is not an error.
func (db *DB) DeleteDraft(name string) error {
	if _, err := db.conn.Exec(`DELETE FROM drafts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("journal: delete draft: %w", err)
	}
	return nil
}

// Drafts lists every stored draft, most recently updated first.
func (db *DB) Drafts() ([]DraftInfo, error) {
	rows, err := db.conn.Query(`SELECT name, snaps, updated_at FROM drafts ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("journal: list drafts: %w", err)
	}
	defer rows.Close()

	var out []DraftInfo
	for rows.Next() {
		var (
			d   DraftInfo
			raw string
		)
		if err := rows.Scan(&d.Name, &raw, &d.UpdatedAt); err != nil {
			return nil, err
		}
		var snaps []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &snaps); err != nil {
			return nil, fmt.Errorf("journal: decode draft %q: %w", d.Name, err)
		}
		d.Count = len(snaps)
		out = append(out, d)
	}
	return out, rows.Err()
}
