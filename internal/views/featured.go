package views

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// Save failure texts.
const (
	ErrTextPermission = "Changes cannot be saved due to insufficient permissions."
	ErrTextSave       = "Something went wrong"
)

// FeaturedBoard is the editable featured ordering. The fetched list seeds a
// local copy; edits stay local until Save.
type FeaturedBoard struct {
	list *request.Fetcher[[]models.FeaturedSnap]
	save *request.Controller[models.SaveResult]

	mu      sync.Mutex
	snaps   []models.FeaturedSnap
	seeded  bool
	saveErr string
}

// NewFeaturedBoard creates an empty board. Mount seeds it.
func NewFeaturedBoard(c *request.Client) *FeaturedBoard {
	return &FeaturedBoard{
		list: request.NewFetcher[[]models.FeaturedSnap](c, "/featured"),
		save: request.NewController[models.SaveResult](c),
	}
}

// Mount loads the featured list and seeds the board on first success.
func (b *FeaturedBoard) Mount(ctx context.Context) request.Outcome[[]models.FeaturedSnap] {
	out := b.list.Mount(ctx)
	b.mu.Lock()
	if !b.seeded && out.Data != nil {
		b.snaps = slices.Clone(*out.Data)
		b.seeded = true
	}
	b.mu.Unlock()
	return out
}

// Reload refetches the list and discards local edits when it succeeds.
func (b *FeaturedBoard) Reload(ctx context.Context) request.Outcome[[]models.FeaturedSnap] {
	out := b.list.Refetch(ctx)
	if request.Succeeded(out) && out.Data != nil {
		b.mu.Lock()
		b.snaps = slices.Clone(*out.Data)
		b.seeded = true
		b.mu.Unlock()
	}
	return out
}

// Snaps returns a copy of the local ordering.
func (b *FeaturedBoard) Snaps() []models.FeaturedSnap {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.snaps)
}

// Restore replaces the local ordering, for example from a saved draft.
func (b *FeaturedBoard) Restore(snaps []models.FeaturedSnap) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snaps = slices.Clone(snaps)
	b.seeded = true
}

func (b *FeaturedBoard) indexLocked(name string) int {
	return slices.IndexFunc(b.snaps, func(s models.FeaturedSnap) bool { return s.PackageName == name })
}

// Move drops the snap named active at the position of the snap named over.
// Unknown names leave the board untouched.
func (b *FeaturedBoard) Move(active, over string) {
	if active == over {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	from, to := b.indexLocked(active), b.indexLocked(over)
	if from < 0 || to < 0 {
		return
	}
	item := b.snaps[from]
	b.snaps = slices.Delete(b.snaps, from, from+1)
	b.snaps = slices.Insert(b.snaps, to, item)
}

// Remove drops the snap named name.
func (b *FeaturedBoard) Remove(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexLocked(name); i >= 0 {
		b.snaps = slices.Delete(b.snaps, i, i+1)
	}
}

// Add puts a store hit at the front of the board. It reports false when a
// snap with the same package name is already present.
func (b *FeaturedBoard) Add(hit models.SearchSnap) bool {
	snap := hit.Featured()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexLocked(snap.PackageName) >= 0 {
		return false
	}
	b.snaps = slices.Insert(b.snaps, 0, snap)
	return true
}

// Missing returns how many snaps must still be added before saving.
func (b *FeaturedBoard) Missing() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return max(0, models.FeaturedSlots-len(b.snaps))
}

// Save posts the local ordering. Boards with fewer than FeaturedSlots
// entries are rejected locally.
func (b *FeaturedBoard) Save(ctx context.Context) (request.Outcome[models.SaveResult], error) {
	b.mu.Lock()
	b.saveErr = ""
	ids := make([]string, len(b.snaps))
	for i, s := range b.snaps {
		ids[i] = s.SnapID
	}
	b.mu.Unlock()

	if missing := models.FeaturedSlots - len(ids); missing > 0 {
		return b.save.Outcome(), fmt.Errorf("%w: add %d more snaps", apperr.ErrIncompleteBoard, missing)
	}

	out := b.save.Invoke(ctx, "/featured", request.Options{
		Method: http.MethodPost,
		Form:   url.Values{"snaps": {strings.Join(ids, ",")}},
	})
	if out.Failure != nil && out.Failure.Kind != request.FailureUnauthenticated {
		msg := ErrTextSave
		if request.IsStatus(out.Failure, http.StatusForbidden, http.StatusNotFound) {
			msg = ErrTextPermission
		}
		b.mu.Lock()
		b.saveErr = msg
		b.mu.Unlock()
	}
	return out, nil
}

// Error returns the fetch error, else the save error.
func (b *FeaturedBoard) Error() string {
	if msg := b.list.Outcome().Error; msg != "" {
		return msg
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveErr
}

// Close releases the list and save controllers.
func (b *FeaturedBoard) Close() {
	b.list.Close()
	b.save.Close()
}
