package journal

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "snapcurator-journal-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM mutations`).Scan(&count); err != nil {
		t.Fatalf("mutations table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM drafts`).Scan(&count); err != nil {
		t.Fatalf("drafts table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, path := range []string{"/api/exclude_snap", "/api/include_snap", "/featured"} {
		err := db.Record(Entry{
			At:      base.Add(time.Duration(i) * time.Minute),
			Method:  http.MethodPost,
			Path:    path,
			Status:  200,
			Outcome: "ok",
			Applied: true,
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Path != "/featured" || got[1].Path != "/api/include_snap" {
		t.Errorf("order = %q, %q", got[0].Path, got[1].Path)
	}
	if !got[0].Applied {
		t.Error("applied flag lost")
	}
}

func TestObserverSkipsReads(t *testing.T) {
	db := testDB(t)
	obs := db.Observer(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	obs(request.Settlement{Method: http.MethodGet, Path: "/api/settings", Status: 200, At: time.Now()})
	obs(request.Settlement{
		Method:  http.MethodPost,
		Path:    "/api/exclude_snap",
		Status:  500,
		Failure: &request.Failure{Kind: request.FailureStatus, Status: 500},
		Applied: true,
		At:      time.Now(),
	})

	got, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Outcome != "status" || got[0].Status != 500 {
		t.Errorf("entry = %+v", got[0])
	}
}

func TestDraftRoundTrip(t *testing.T) {
	db := testDB(t)
	snaps := []models.FeaturedSnap{
		{SnapID: "1", PackageName: "vlc"},
		{SnapID: "2", PackageName: "gimp"},
	}
	if err := db.SaveDraft("spring", snaps); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := db.LoadDraft("spring")
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if len(got) != 2 || got[0].PackageName != "vlc" || got[1].PackageName != "gimp" {
		t.Errorf("draft = %+v", got)
	}

	// Saving again replaces the stored order.
	if err := db.SaveDraft("spring", snaps[1:]); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	infos, err := db.Drafts()
	if err != nil {
		t.Fatalf("Drafts: %v", err)
	}
	if len(infos) != 1 || infos[0].Count != 1 {
		t.Errorf("drafts = %+v", infos)
	}
}

func TestLoadDraft_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.LoadDraft("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDraft(t *testing.T) {
	db := testDB(t)
	_ = db.SaveDraft("tmp", nil)
	if err := db.DeleteDraft("tmp"); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	if _, err := db.LoadDraft("tmp"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("draft still present: %v", err)
	}
}

func TestDrafts_CorruptRow(t *testing.T) {
	db := testDB(t)
	if err := db.SaveDraft("good", []models.FeaturedSnap{{SnapID: "1"}}); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if _, err := db.conn.Exec(`INSERT INTO drafts (name, snaps, updated_at) VALUES (?, ?, ?)`,
		"broken", "{not json", time.Now().UTC()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	infos, err := db.Drafts()
	if err == nil {
		t.Fatalf("Drafts = %+v, want decode error", infos)
	}
	if !strings.Contains(err.Error(), `"broken"`) {
		t.Errorf("err = %v, want the draft name", err)
	}
}
