package views

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

func validateSliceInput(in models.SliceInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 1000)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// EditorialSlices lists every slice and creates new ones.
type EditorialSlices struct {
	list   *request.Fetcher[[]models.SliceListItem]
	create *request.Controller[models.Status]
}

// NewEditorialSlices creates the slice list view.
func NewEditorialSlices(c *request.Client) *EditorialSlices {
	return &EditorialSlices{
		list:   request.NewFetcher[[]models.SliceListItem](c, "/api/editorial_slices"),
		create: request.NewController[models.Status](c),
	}
}

// Mount loads the slice list once.
func (v *EditorialSlices) Mount(ctx context.Context) request.Outcome[[]models.SliceListItem] {
	return v.list.Mount(ctx)
}

// Outcome returns the list outcome.
func (v *EditorialSlices) Outcome() request.Outcome[[]models.SliceListItem] {
	return v.list.Outcome()
}

// Slices returns the loaded slices.
func (v *EditorialSlices) Slices() []models.SliceListItem {
	if d := v.list.Outcome().Data; d != nil {
		return *d
	}
	return nil
}

// Create posts a new slice. A blank name is rejected without a request.
func (v *EditorialSlices) Create(ctx context.Context, name, description string) (request.Outcome[models.Status], error) {
	in := models.SliceInput{Name: strings.TrimSpace(name), Description: description}
	if err := validateSliceInput(in); err != nil {
		return v.create.Outcome(), err
	}
	out := v.create.Invoke(ctx, "/api/editorial_slice", request.Options{Method: http.MethodPost, Body: in})
	if request.Succeeded(out) {
		v.list.Refetch(ctx)
	}
	return out, nil
}

// Error returns the message to render, the create failure first.
func (v *EditorialSlices) Error() string {
	if msg := v.create.Outcome().Error; msg != "" {
		return msg
	}
	return v.list.Outcome().Error
}

// Close releases both controllers.
func (v *EditorialSlices) Close() {
	v.list.Close()
	v.create.Close()
}

// SliceDetails shows one slice and edits its members.
type SliceDetails struct {
	ID string

	detail *request.Fetcher[models.SliceDetail]
	op     *request.Controller[models.Status]
	path   string

	mu      sync.Mutex
	success string
	deleted bool
}

// NewSliceDetails creates the view of the slice with id.
func NewSliceDetails(c *request.Client, id string) *SliceDetails {
	path := "/api/editorial_slice/" + url.PathEscape(id)
	return &SliceDetails{
		ID:     id,
		detail: request.NewFetcher[models.SliceDetail](c, path),
		op:     request.NewController[models.Status](c),
		path:   path,
	}
}

// Mount loads the slice once.
func (v *SliceDetails) Mount(ctx context.Context) request.Outcome[models.SliceDetail] {
	return v.detail.Mount(ctx)
}

// Outcome returns the detail outcome.
func (v *SliceDetails) Outcome() request.Outcome[models.SliceDetail] {
	return v.detail.Outcome()
}

// Update renames the slice and changes its description.
func (v *SliceDetails) Update(ctx context.Context, name, description string) (request.Outcome[models.Status], error) {
	in := models.SliceInput{Name: strings.TrimSpace(name), Description: description}
	if err := validateSliceInput(in); err != nil {
		return v.op.Outcome(), err
	}
	return v.mutate(ctx, v.path, in, ""), nil
}

// AddSnap adds the snap called name to the slice.
func (v *SliceDetails) AddSnap(ctx context.Context, name string) request.Outcome[models.Status] {
	return v.mutate(ctx, v.path+"/snaps", models.SnapName{Name: name},
		fmt.Sprintf("'%s' added to the '%s'.", name, v.ID))
}

// RemoveSnap removes the snap called name from the slice.
func (v *SliceDetails) RemoveSnap(ctx context.Context, name string) request.Outcome[models.Status] {
	return v.mutate(ctx, v.path+"/remove_snap", models.SnapName{Name: name},
		fmt.Sprintf("'%s' deleted from the '%s'.", name, v.ID))
}

func (v *SliceDetails) mutate(ctx context.Context, path string, body any, success string) request.Outcome[models.Status] {
	v.setSuccess("")
	out := v.op.Invoke(ctx, path, request.Options{Method: http.MethodPost, Body: body})
	if !request.Succeeded(out) {
		return out
	}
	v.setSuccess(success)
	v.detail.Refetch(ctx)
	return out
}

// Delete removes the slice. The detail is not reloaded afterwards.
func (v *SliceDetails) Delete(ctx context.Context) request.Outcome[models.Status] {
	v.setSuccess("")
	out := v.op.Invoke(ctx, v.path, request.Options{Method: http.MethodDelete})
	if request.Succeeded(out) {
		v.mu.Lock()
		v.deleted = true
		v.mu.Unlock()
	}
	return out
}

func (v *SliceDetails) setSuccess(msg string) {
	v.mu.Lock()
	v.success = msg
	v.mu.Unlock()
}

// Success returns the confirmation of the last successful member change.
func (v *SliceDetails) Success() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.success
}

// Deleted reports whether the slice was deleted through this view.
func (v *SliceDetails) Deleted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deleted
}

// Error returns the message to render, the last operation failure first.
func (v *SliceDetails) Error() string {
	if msg := v.op.Outcome().Error; msg != "" {
		return msg
	}
	return v.detail.Outcome().Error
}

// Close releases both controllers.
func (v *SliceDetails) Close() {
	v.detail.Close()
	v.op.Close()
}
