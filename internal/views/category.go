// Package views composes fetchers and mutation controllers into the
// dashboard's pages. Every mutation refetches the affected read when it
// succeeds; remote failures stay on the outcomes.
package views

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// CategoryList is the top list of one category with an exclude action.
type CategoryList struct {
	Category string

	list    *request.Fetcher[models.SnapList]
	exclude *request.Controller[models.Status]
}

// NewCategoryList creates the view for category.
func NewCategoryList(c *request.Client, category string) *CategoryList {
	return &CategoryList{
		Category: category,
		list:     request.NewFetcher[models.SnapList](c, "/api/snaps?category="+url.QueryEscape(category)),
		exclude:  request.NewController[models.Status](c),
	}
}

// Mount loads the list once.
func (v *CategoryList) Mount(ctx context.Context) request.Outcome[models.SnapList] {
	return v.list.Mount(ctx)
}

// Outcome returns the list outcome.
func (v *CategoryList) Outcome() request.Outcome[models.SnapList] { return v.list.Outcome() }

// Snaps returns the loaded snaps, or nil before the first success.
func (v *CategoryList) Snaps() []models.Snap {
	if d := v.list.Outcome().Data; d != nil {
		return d.Snaps
	}
	return nil
}

// Exclude removes snapID from the category and reloads the list.
func (v *CategoryList) Exclude(ctx context.Context, snapID string) request.Outcome[models.Status] {
	out := v.exclude.Invoke(ctx, "/api/exclude_snap", request.Options{
		Method: http.MethodPost,
		Body:   models.SnapRef{SnapID: snapID, Category: v.Category},
	})
	if request.Succeeded(out) {
		v.list.Refetch(ctx)
	}
	return out
}

// Error returns the message to render, the exclude failure first.
func (v *CategoryList) Error() string {
	if msg := v.exclude.Outcome().Error; msg != "" {
		return msg
	}
	return v.list.Outcome().Error
}

// Close releases both controllers.
func (v *CategoryList) Close() {
	v.list.Close()
	v.exclude.Close()
}

// Overview is the dashboard landing page: the default categories side by side.
type Overview struct {
	Lists []*CategoryList
}

// NewOverview creates one list per dashboard category.
func NewOverview(c *request.Client) *Overview {
	o := &Overview{}
	for _, cat := range models.DashboardCategories {
		o.Lists = append(o.Lists, NewCategoryList(c, cat.ID))
	}
	return o
}

// Mount loads every list concurrently and returns when all have settled.
func (o *Overview) Mount(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range o.Lists {
		g.Go(func() error {
			l.Mount(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

// Close releases every list.
func (o *Overview) Close() {
	for _, l := range o.Lists {
		l.Close()
	}
}
