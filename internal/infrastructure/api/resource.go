package api

import (
	"context"
	"fmt"
	"net/http"

	"equipment-console/internal/domain"
)

// Resource implements the five CRUD calls shared by every JSON resource.
// T is the read shape, C the create payload and U the partial update payload.
type Resource[T, C, U any] struct {
	c    *Client
	path string
}

func newResource[T, C, U any](c *Client, path string) *Resource[T, C, U] {
	return &Resource[T, C, U]{c: c, path: path}
}

func (r *Resource[T, C, U]) item(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

func (r *Resource[T, C, U]) List(ctx context.Context) (domain.Collection[T], error) {
	return getCollection[T](ctx, r.c, r.path, nil)
}

func (r *Resource[T, C, U]) Get(ctx context.Context, id int64) (T, error) {
	return getEntity[T](ctx, r.c, r.item(id))
}

func (r *Resource[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	return sendEntity[T](ctx, r.c, http.MethodPost, r.path, payload)
}

func (r *Resource[T, C, U]) Update(ctx context.Context, id int64, payload U) (T, error) {
	return sendEntity[T](ctx, r.c, http.MethodPut, r.item(id), payload)
}

func (r *Resource[T, C, U]) Delete(ctx context.Context, id int64) error {
	_, err := r.c.send(ctx, r.c.jsonRequest(ctx, nil), http.MethodDelete, r.item(id))
	return err
}

func getCollection[T any](ctx context.Context, c *Client, path string, query map[string]string) (domain.Collection[T], error) {
	req := c.jsonRequest(ctx, nil)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := c.send(ctx, req, http.MethodGet, path)
	if err != nil {
		return domain.Collection[T]{}, err
	}
	return decodeCollection[T](resp.Body())
}

func getEntity[T any](ctx context.Context, c *Client, path string) (T, error) {
	resp, err := c.send(ctx, c.jsonRequest(ctx, nil), http.MethodGet, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeEntity[T](resp.Body())
}

func sendEntity[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	resp, err := c.send(ctx, c.jsonRequest(ctx, payload), method, path)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeEntity[T](resp.Body())
}

// sendAction issues a call whose response carries no entity of interest.
func sendAction(ctx context.Context, c *Client, method, path string, payload any) error {
	_, err := c.send(ctx, c.jsonRequest(ctx, payload), method, path)
	return err
}
