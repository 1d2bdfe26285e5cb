package gateway

import (
	"context"
	"fmt"

	"github.com/tiendasuplementacion/storefront/internal/domain"
)

// Resource is the typed CRUD surface of one server collection. Create and
// Update return the server's representation, which is the source of truth
// for generated fields.
type Resource[T domain.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id int64, entity T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// RESTResource implements Resource against /api/{name}[/{id}].
type RESTResource[T domain.Entity] struct {
	c    *Client
	name string
}

func newResource[T domain.Entity](c *Client, name string) *RESTResource[T] {
	return &RESTResource[T]{c: c, name: name}
}

func (r *RESTResource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	err := r.c.do(ctx, r.name+".list", "GET", "/api/"+r.name, nil, &out)
	return out, err
}

func (r *RESTResource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.do(ctx, r.name+".get", "GET", fmt.Sprintf("/api/%s/%d", r.name, id), nil, &out)
	return out, err
}

func (r *RESTResource[T]) Create(ctx context.Context, entity T) (T, error) {
	var out T
	err := r.c.do(ctx, r.name+".create", "POST", "/api/"+r.name, entity, &out)
	return out, err
}

func (r *RESTResource[T]) Update(ctx context.Context, id int64, entity T) (T, error) {
	var out T
	err := r.c.do(ctx, r.name+".update", "PUT", fmt.Sprintf("/api/%s/%d", r.name, id), entity, &out)
	return out, err
}

func (r *RESTResource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, r.name+".delete", "DELETE", fmt.Sprintf("/api/%s/%d", r.name, id), nil, nil)
}

func (c *Client) Products() *RESTResource[domain.Product] {
	return newResource[domain.Product](c, "products")
}

func (c *Client) Users() *RESTResource[domain.User] {
	return newResource[domain.User](c, "users")
}

func (c *Client) Categories() *RESTResource[domain.Category] {
	return newResource[domain.Category](c, "categories")
}

func (c *Client) CategoryProducts() *RESTResource[domain.CategoryProduct] {
	return newResource[domain.CategoryProduct](c, "category-products")
}

func (c *Client) Payments() *RESTResource[domain.Payment] {
	return newResource[domain.Payment](c, "payments")
}

func (c *Client) PaymentDetails() *RESTResource[domain.PaymentDetail] {
	return newResource[domain.PaymentDetail](c, "payment-details")
}

func (c *Client) Orders() *RESTResource[domain.Order] {
	return newResource[domain.Order](c, "orders")
}
