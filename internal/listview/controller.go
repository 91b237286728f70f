package listview

import (
	"context"

	"github.com/IbtissamELANSARI/school-management-app/internal/api"
	"github.com/IbtissamELANSARI/school-management-app/internal/errors"
)

// Controller pairs a resource service with its listing Model. Every
// successful mutation reloads the authoritative list from the backend
// instead of patching locally, trading a round trip for consistency.
//
// The Model is not safe for concurrent use, so Load and the mutations only
// fetch; the caller applies the result with Apply on the goroutine that owns
// the Model. In the bubbletea shell that means the fetched list travels in a
// message and Apply runs inside Update.
type Controller[T any, I any] struct {
	svc   *api.Resource[T, I]
	model *Model[T]
}

// NewController creates a Controller around a resource service and a Model.
func NewController[T any, I any](svc *api.Resource[T, I], model *Model[T]) *Controller[T, I] {
	return &Controller[T, I]{svc: svc, model: model}
}

// Model returns the listing model the controller feeds.
func (c *Controller[T, I]) Model() *Model[T] {
	return c.model
}

// Apply replaces the Model's authoritative list with a fetched one.
func (c *Controller[T, I]) Apply(items []T) {
	c.model.SetItems(items)
}

// Load fetches the authoritative list from the backend without touching
// the Model.
func (c *Controller[T, I]) Load(ctx context.Context) ([]T, error) {
	return c.svc.List(ctx, "")
}

// Create persists a new entity, then fetches the reloaded list.
func (c *Controller[T, I]) Create(ctx context.Context, in I) ([]T, error) {
	if _, err := c.svc.Create(ctx, in); err != nil {
		return nil, err
	}
	return c.Load(ctx)
}

// Update persists changes to an entity, then fetches the reloaded list.
func (c *Controller[T, I]) Update(ctx context.Context, id int, in I) ([]T, error) {
	if _, err := c.svc.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return c.Load(ctx)
}

// Delete removes an entity, then fetches the reloaded list. A failed delete
// returns nothing, so the caller's current list stands.
func (c *Controller[T, I]) Delete(ctx context.Context, id int) ([]T, error) {
	if err := c.svc.Delete(ctx, id); err != nil {
		return nil, err
	}
	return c.Load(ctx)
}

// UIMessage formats an error for the screen's error banner, backend message
// verbatim under the console's "Erreur:" convention.
func UIMessage(err error) string {
	if err == nil {
		return ""
	}
	return "Erreur: " + errors.FlatMessageOf(err)
}
