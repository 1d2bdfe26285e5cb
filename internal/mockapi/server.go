// Package mockapi is an in-memory storefront API used as the test double
// for the gateway and as a standalone dev server (cmd/mockapi). It
// implements the same REST surface the mobile client consumes, with
// seedable state and per-request failure injection for exercising
// rollback paths.
package mockapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiendasuplementacion/storefront/internal/domain"
)

type Server struct {
	mu     sync.Mutex
	nextID int64

	products         *table[domain.Product]
	users            *table[domain.User]
	categories       *table[domain.Category]
	categoryProducts *table[domain.CategoryProduct]
	payments         *table[domain.Payment]
	paymentDetails   *table[domain.PaymentDetail]
	orders           *table[domain.Order]

	passwords map[string]string // username -> password
	tokens    map[string]int64  // token -> user id

	failStatus int // injected status for the next API request, 0 if none
}

func New() *Server {
	s := &Server{
		passwords: make(map[string]string),
		tokens:    make(map[string]int64),
	}
	s.products = newTable(s, func(p domain.Product, id int64) domain.Product { p.ID = id; return p })
	s.users = newTable(s, func(u domain.User, id int64) domain.User { u.ID = id; return u })
	s.categories = newTable(s, func(c domain.Category, id int64) domain.Category { c.ID = id; return c })
	s.categoryProducts = newTable(s, func(cp domain.CategoryProduct, id int64) domain.CategoryProduct { cp.ID = id; return cp })
	s.payments = newTable(s, func(p domain.Payment, id int64) domain.Payment { p.ID = id; return p })
	s.paymentDetails = newTable(s, func(d domain.PaymentDetail, id int64) domain.PaymentDetail { d.ID = id; return d })
	s.orders = newTable(s, func(o domain.Order, id int64) domain.Order { o.ID = id; return o })
	return s
}

// FailNext makes the next authenticated API request fail with status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(s.injectFailure)

		mountCRUD(r, "/api/products", s.products)
		mountCRUD(r, "/api/users", s.users)
		mountCRUD(r, "/api/categories", s.categories)
		mountCRUD(r, "/api/category-products", s.categoryProducts)
		mountCRUD(r, "/api/payments", s.payments)

		r.Route("/api/payment-details", func(r chi.Router) {
			r.Get("/user/{user_id}", s.paymentDetailsByUser)
			crudRoutes(r, s.paymentDetails)
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", s.createOrder)
			r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
				respondJSON(w, http.StatusOK, s.orders.list())
			})
		})

		r.Route("/api/user-details", func(r chi.Router) {
			r.Get("/{id}", s.userDetail)
			r.Get("/role/{role_id}", s.userDetailsByRole)
		})
	})

	return r
}

// Seed helpers. Records get server-assigned ids, returned to the caller.

func (s *Server) SeedProduct(p domain.Product) domain.Product { return s.products.create(p) }

func (s *Server) SeedUser(u domain.User, password string) domain.User {
	u = s.users.create(u)
	s.mu.Lock()
	s.passwords[u.Username] = password
	s.mu.Unlock()
	return u
}

func (s *Server) SeedPayment(p domain.Payment) domain.Payment { return s.payments.create(p) }

func (s *Server) SeedPaymentDetail(d domain.PaymentDetail) domain.PaymentDetail {
	return s.paymentDetails.create(d)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds map[string]string
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	username := creds["username"]
	s.mu.Lock()
	password, known := s.passwords[username]
	s.mu.Unlock()
	if !known || password != creds["password"] {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		return
	}

	var user domain.User
	for _, u := range s.users.list() {
		if u.Username == username {
			user = u
			break
		}
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = user.ID
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, domain.LoginResponse{Token: token, User: user})
}

// requireAuth accepts any bearer token the server issued, or any
// non-empty token when none were issued (pure test-double use).
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if len(auth) <= len("Bearer ") || auth[:len("Bearer ")] != "Bearer " {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.failStatus
		s.failStatus = 0
		s.mu.Unlock()
		if status != 0 {
			respondError(w, status, "injected_failure", "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) paymentDetailsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "user_id")
	if !ok {
		return
	}
	details := make([]domain.PaymentDetail, 0)
	for _, d := range s.paymentDetails.list() {
		if d.UserID == userID {
			details = append(details, d)
		}
	}
	respondJSON(w, http.StatusOK, details)
}

// createOrder is the one endpoint where the server visibly rewrites the
// submitted record: it recomputes the total from the line items and
// confirms the order, so clients must adopt the returned representation.
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(order.Products) == 0 {
		respondError(w, http.StatusBadRequest, "empty_order", "order has no products")
		return
	}

	total := decimal.Zero
	for _, line := range order.Products {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	order.Total = total
	order.Status = domain.OrderStatusConfirmed

	respondJSON(w, http.StatusCreated, s.orders.create(order))
}

func (s *Server) userDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	for _, u := range s.users.list() {
		if u.ID == id {
			respondJSON(w, http.StatusOK, s.assembleUserDetail(u))
			return
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "user not found")
}

func (s *Server) userDetailsByRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := parseID(w, r, "role_id")
	if !ok {
		return
	}
	details := make([]domain.UserDetail, 0)
	for _, u := range s.users.list() {
		if u.RoleID == roleID {
			details = append(details, s.assembleUserDetail(u))
		}
	}
	respondJSON(w, http.StatusOK, details)
}

func (s *Server) assembleUserDetail(u domain.User) domain.UserDetail {
	detail := domain.UserDetail{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		RoleID:   u.RoleID,
	}
	for _, d := range s.paymentDetails.list() {
		if d.UserID != u.ID {
			continue
		}
		if p, ok := s.payments.get(d.PaymentID); ok {
			detail.Settings.Payments = append(detail.Settings.Payments, p)
		}
	}
	for _, o := range s.orders.list() {
		if o.UserID == u.ID {
			detail.Orders = append(detail.Orders, o)
		}
	}
	return detail
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
