package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tiendasuplementacion/storefront/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, zap.NewNop(), opts...)
}

func TestList_DecodesResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]domain.Product{{ID: 1, Name: "Whey", Stock: 5}})
	})

	products, err := c.Products().List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Whey", products[0].Name)
}

func TestGatewayStatuses_ClassifyAsNetwork(t *testing.T) {
	for _, status := range []int{502, 503, 504, 599} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		_, err := c.Products().List(context.Background())
		require.Error(t, err)
		assert.True(t, IsNetwork(err), "status %d should be a network error", status)

		var ge *Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, status, ge.Status)
	}
}

func TestDomainStatuses_ClassifyAsRemote(t *testing.T) {
	for _, status := range []int{400, 401, 409, 500} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		_, err := c.Products().List(context.Background())
		require.Error(t, err)
		assert.False(t, IsNetwork(err), "status %d is a remote error", status)
	}
}

func TestTransportFailure_ClassifiesAsNetwork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := NewClient(ts.URL, zap.NewNop())
	ts.Close()

	_, err := c.Products().List(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestNotFound_MapsToErrNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Products().Get(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsNetwork(err))
}

func TestServerErrorMessage_IsSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "username already taken"})
	})

	_, err := c.Users().Create(context.Background(), domain.User{Username: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already taken")
}

func TestBearerTokenAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Payment{ID: 1, Name: "card"})
	})
	c.SetToken("tok-123")

	created, err := c.Payments().Create(context.Background(), domain.Payment{Name: "card"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestClearToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]domain.Product{})
	})
	c.SetToken("tok-123")
	c.ClearToken()

	_, err := c.Products().List(context.Background())
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "demo", creds["username"])
		json.NewEncoder(w).Encode(domain.LoginResponse{
			Token: "tok-123",
			User:  domain.User{ID: 7, Username: "demo"},
		})
	})

	resp, err := c.Login(context.Background(), "demo", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestBreaker_OpensAfterConsecutiveNetworkFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreakerSettings(2, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := c.Products().List(context.Background())
		require.Error(t, err)
	}

	_, err := c.Products().List(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err), "an open breaker reads as a network failure")
	assert.Equal(t, int32(2), hits.Load(), "third call never reaches the server")
}

func TestBreaker_IgnoresRemoteFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, WithBreakerSettings(2, time.Minute))

	for i := 0; i < 5; i++ {
		_, err := c.Products().List(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, int32(5), hits.Load(), "domain errors never trip the breaker")
}

func TestDelete_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/api/payment-details/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.PaymentDetails().Delete(context.Background(), 3))
}
