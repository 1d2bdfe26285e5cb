package gateway

import (
	"context"
	"fmt"

	"github.com/tiendasuplementacion/storefront/internal/domain"
)

// Login authenticates against the auth endpoint. The returned token is
// not installed automatically; the session decides when to adopt it.
func (c *Client) Login(ctx context.Context, username, password string) (domain.LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var out domain.LoginResponse
	err := c.do(ctx, "auth.login", "POST", "/api/auth/login", body, &out)
	return out, err
}

// UserDetail fetches the aggregate read-model for one user.
func (c *Client) UserDetail(ctx context.Context, id int64) (domain.UserDetail, error) {
	var out domain.UserDetail
	err := c.do(ctx, "user-details.get", "GET", fmt.Sprintf("/api/user-details/%d", id), nil, &out)
	return out, err
}

// UserDetailsByRole fetches the aggregate read-models for every user with
// the given role. Admin screens use this for the clients listing.
func (c *Client) UserDetailsByRole(ctx context.Context, roleID int64) ([]domain.UserDetail, error) {
	var out []domain.UserDetail
	err := c.do(ctx, "user-details.by-role", "GET", fmt.Sprintf("/api/user-details/role/%d", roleID), nil, &out)
	return out, err
}

// PaymentDetailsByUser fetches one user's saved payment details for the
// selection and confirmation screens.
func (c *Client) PaymentDetailsByUser(ctx context.Context, userID int64) ([]domain.PaymentDetail, error) {
	var out []domain.PaymentDetail
	err := c.do(ctx, "payment-details.by-user", "GET", fmt.Sprintf("/api/payment-details/user/%d", userID), nil, &out)
	return out, err
}
