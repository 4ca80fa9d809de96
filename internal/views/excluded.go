package views

import (
	"context"
	"net/http"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// ExcludedSnaps lists excluded snaps grouped by category.
type ExcludedSnaps struct {
	list    *request.Fetcher[[]models.ExcludedGroup]
	include *request.Controller[models.Status]
}

// NewExcludedSnaps creates the excluded snaps view.
func NewExcludedSnaps(c *request.Client) *ExcludedSnaps {
	return &ExcludedSnaps{
		list:    request.NewFetcher[[]models.ExcludedGroup](c, "/api/excluded_snaps"),
		include: request.NewController[models.Status](c),
	}
}

// Mount loads the groups once.
func (v *ExcludedSnaps) Mount(ctx context.Context) request.Outcome[[]models.ExcludedGroup] {
	return v.list.Mount(ctx)
}

// Groups returns the loaded groups, or nil before the first success.
func (v *ExcludedSnaps) Groups() []models.ExcludedGroup {
	if d := v.list.Outcome().Data; d != nil {
		return *d
	}
	return nil
}

// Include puts snapID back into category and reloads the groups.
func (v *ExcludedSnaps) Include(ctx context.Context, snapID, category string) request.Outcome[models.Status] {
	out := v.include.Invoke(ctx, "/api/include_snap", request.Options{
		Method: http.MethodPost,
		Body:   models.SnapRef{SnapID: snapID, Category: category},
	})
	if request.Succeeded(out) {
		v.list.Refetch(ctx)
	}
	return out
}

// Error returns the message to render, the include failure first.
func (v *ExcludedSnaps) Error() string {
	if msg := v.include.Outcome().Error; msg != "" {
		return msg
	}
	return v.list.Outcome().Error
}

// Close releases both controllers.
func (v *ExcludedSnaps) Close() {
	v.list.Close()
	v.include.Close()
}
