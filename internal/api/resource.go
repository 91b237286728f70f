package api

import (
	"context"
	"fmt"
	"net/url"
)

// Resource is a client for one uniform CRUD endpoint family. The backend
// exposes every reference-data type (secteurs, filières, ...) with the same
// shape, so one parameterized service covers them all.
type Resource[T any, I any] struct {
	client *Client
	base   string
}

// NewResource creates a resource service rooted at base (e.g. "/secteurs").
func NewResource[T any, I any](client *Client, base string) *Resource[T, I] {
	return &Resource[T, I]{client: client, base: base}
}

// List fetches all entities. A non-empty search term is passed through to
// the backend's ?search= query.
func (r *Resource[T, I]) List(ctx context.Context, search string) ([]T, error) {
	path := r.base
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var entities []T
	if err := r.client.do(ctx, "GET", path, nil, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// Get fetches one entity by id.
func (r *Resource[T, I]) Get(ctx context.Context, id int) (*T, error) {
	var entity T
	if err := r.client.do(ctx, "GET", fmt.Sprintf("%s/%d", r.base, id), nil, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Create persists a new entity and returns it with its assigned id.
func (r *Resource[T, I]) Create(ctx context.Context, in I) (*T, error) {
	var entity T
	if err := r.client.do(ctx, "POST", r.base, in, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update persists changes to an existing entity.
func (r *Resource[T, I]) Update(ctx context.Context, id int, in I) (*T, error) {
	var entity T
	if err := r.client.do(ctx, "PUT", fmt.Sprintf("%s/%d", r.base, id), in, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Delete removes an entity by id.
func (r *Resource[T, I]) Delete(ctx context.Context, id int) error {
	return r.client.do(ctx, "DELETE", fmt.Sprintf("%s/%d", r.base, id), nil, nil)
}
