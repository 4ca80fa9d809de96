package views

import (
	"context"
	"net/url"
	"unicode/utf8"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// MinQueryLength is the shortest query sent to the store.
const MinQueryLength = 3

// StoreSearch finds store snaps to add to the featured list.
type StoreSearch struct {
	ctrl *request.Controller[models.SearchResponse]
}

// NewStoreSearch creates a store search.
func NewStoreSearch(c *request.Client) *StoreSearch {
	return &StoreSearch{ctrl: request.NewController[models.SearchResponse](c)}
}

// Search returns the hits for query. Short queries return nothing and send
// no request.
func (s *StoreSearch) Search(ctx context.Context, query string) ([]models.SearchSnap, string) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil, ""
	}
	out := s.ctrl.Invoke(ctx, "/store/store.json?q="+url.QueryEscape(query))
	if !request.Succeeded(out) || out.Data == nil {
		return nil, out.Error
	}
	return out.Data.Packages, ""
}

// Close releases the controller.
func (s *StoreSearch) Close() { s.ctrl.Close() }
