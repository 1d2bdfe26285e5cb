// Package session wires one authenticated storefront session: the gateway
// client, the cart engine and one store per server collection. A session
// is constructed once after login and passed by reference to consumers;
// no global instances. Logout tears it back down explicitly.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/tiendasuplementacion/storefront/internal/cart"
	"github.com/tiendasuplementacion/storefront/internal/domain"
	"github.com/tiendasuplementacion/storefront/internal/gateway"
	"github.com/tiendasuplementacion/storefront/internal/store"
)

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

type Session struct {
	gw  *gateway.Client
	log *zap.Logger

	Cart *cart.Engine

	Products         *store.Store[domain.Product]
	Users            *store.Store[domain.User]
	Categories       *store.Store[domain.Category]
	CategoryProducts *store.Store[domain.CategoryProduct]
	Payments         *store.Store[domain.Payment]
	PaymentDetails   *store.Store[domain.PaymentDetail]
	Orders           *store.Store[domain.Order]

	// UserDetails mirrors the read-only aggregate listing used by the
	// admin clients screen.
	UserDetails *store.Collection[domain.UserDetail]

	mu   sync.Mutex
	user *domain.User
}

func New(gw *gateway.Client, log *zap.Logger) *Session {
	return &Session{
		gw:               gw,
		log:              log,
		Cart:             cart.NewEngine(log),
		Products:         store.New(gw.Products(), log),
		Users:            store.New(gw.Users(), log),
		Categories:       store.New(gw.Categories(), log),
		CategoryProducts: store.New(gw.CategoryProducts(), log),
		Payments:         store.New(gw.Payments(), log),
		PaymentDetails:   store.New(gw.PaymentDetails(), log),
		Orders:           store.New(gw.Orders(), log),
		UserDetails:      store.NewCollection[domain.UserDetail](log),
	}
}

// Login authenticates, installs the bearer token and records the profile.
func (s *Session) Login(ctx context.Context, username, password string) (domain.User, error) {
	resp, err := s.gw.Login(ctx, username, password)
	if err != nil {
		return domain.User{}, err
	}
	s.gw.SetToken(resp.Token)

	s.mu.Lock()
	u := resp.User
	s.user = &u
	s.mu.Unlock()

	s.log.Info("logged in", zap.Int64("user_id", resp.User.ID), zap.String("username", resp.User.Username))
	return resp.User, nil
}

// CurrentUser returns the logged-in profile, if any.
func (s *Session) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Logout drops the token, the profile, the cart and every store's state.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.gw.ClearToken()
	s.Cart.Clear()
	s.Products.Reset()
	s.Users.Reset()
	s.Categories.Reset()
	s.CategoryProducts.Reset()
	s.Payments.Reset()
	s.PaymentDetails.Reset()
	s.Orders.Reset()
	s.UserDetails.Reset()
	s.log.Info("logged out")
}

// Checkout posts an order built from the current cart snapshot. The cart
// is cleared only after the server confirms; a failure leaves every line
// in place so the user can retry.
func (s *Session) Checkout(ctx context.Context) (domain.Order, error) {
	lines := s.Cart.Lines()
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	order := domain.Order{
		Total:    s.Cart.TotalPrice(),
		Status:   domain.OrderStatusPending,
		Products: make([]domain.OrderLine, 0, len(lines)),
	}
	if u, ok := s.CurrentUser(); ok {
		order.UserID = u.ID
	}
	for _, l := range lines {
		order.Products = append(order.Products, domain.OrderLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
		})
	}

	created, err := s.Orders.Create(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	s.Cart.Clear()
	s.log.Info("checkout complete", zap.Int64("order_id", created.ID))
	return created, nil
}

// FetchPaymentDetails loads one user's saved payment details into the
// PaymentDetails store for the selection and confirmation screens.
func (s *Session) FetchPaymentDetails(ctx context.Context, userID int64) error {
	return s.PaymentDetails.FetchFrom(ctx, "user/"+strconv.FormatInt(userID, 10), func(ctx context.Context) ([]domain.PaymentDetail, error) {
		return s.gw.PaymentDetailsByUser(ctx, userID)
	})
}

// FetchUserDetailsByRole loads the aggregate read-models for a role into
// the UserDetails collection.
func (s *Session) FetchUserDetailsByRole(ctx context.Context, roleID int64) error {
	return s.UserDetails.FetchFrom(ctx, "role/"+strconv.FormatInt(roleID, 10), func(ctx context.Context) ([]domain.UserDetail, error) {
		return s.gw.UserDetailsByRole(ctx, roleID)
	})
}

// UserDetail fetches the aggregate read-model for one user. Read-only;
// not mirrored locally.
func (s *Session) UserDetail(ctx context.Context, id int64) (domain.UserDetail, error) {
	return s.gw.UserDetail(ctx, id)
}
