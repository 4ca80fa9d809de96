package views

import (
	"context"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// Categories lists the recommendation categories known to the backend.
type Categories struct {
	list *request.Fetcher[[]models.Category]
}

// NewCategories creates the category listing view.
func NewCategories(c *request.Client) *Categories {
	return &Categories{list: request.NewFetcher[[]models.Category](c, "/api/categories")}
}

// Mount loads the categories once.
func (v *Categories) Mount(ctx context.Context) request.Outcome[[]models.Category] {
	return v.list.Mount(ctx)
}

// Items returns the loaded categories, or nil before the first success.
func (v *Categories) Items() []models.Category {
	if d := v.list.Outcome().Data; d != nil {
		return *d
	}
	return nil
}

// Error returns the rendered fetch error.
func (v *Categories) Error() string { return v.list.Outcome().Error }

// Close releases the fetcher.
func (v *Categories) Close() { v.list.Close() }
