package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/till-pos/internal/pos"
	"github.com/tair/till-pos/internal/pos/cache"
	httpDelivery "github.com/tair/till-pos/internal/pos/delivery/http"
	"github.com/tair/till-pos/internal/testutil"
	"github.com/tair/till-pos/pkg/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type server struct {
	t      *testing.T
	app    *pos.App
	router *mux.Router
	redis  *miniredis.Miniredis
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := testutil.OpenDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTTTL:            time.Hour,
		PasswordHasher:    "sha256",
		DashboardCacheTTL: time.Minute,
	}
	clock := testutil.NewClock(time.Date(2024, time.July, 4, 12, 0, 0, 0, time.UTC))

	app, err := pos.InitializeApp(db, cfg, clock, client, prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, app.Store.InitializeSchema(context.Background()))
	_, err = app.Validator.BootstrapDefaultAdmin(context.Background())
	require.NoError(t, err)

	router := mux.NewRouter()
	httpDelivery.RegisterMiddlewares(router)
	app.Handler.RegisterRoutes(router)
	app.Handler.RegisterHealthCheck(router)

	return &server{t: t, app: app, router: router, redis: mr}
}

func (s *server) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *server) login(username, password string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(s.t, http.StatusOK, code, env.Error)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type cartView struct {
	Lines []struct {
		ProductID uint            `json:"product_id"`
		Quantity  int             `json:"quantity"`
		Price     decimal.Decimal `json:"price"`
	} `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func TestCheckoutFlow(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin")

	code, env := s.do(http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name":     "Coffee",
		"price":    "2.50",
		"quantity": 5,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	product := decode[struct {
		ID uint `json:"id"`
	}](t, env.Data)

	for i := 0; i < 2; i++ {
		code, env = s.do(http.MethodPost, "/api/cart/items", admin, map[string]uint{"product_id": product.ID})
		require.Equal(t, http.StatusOK, code, env.Error)
	}

	code, env = s.do(http.MethodGet, "/api/cart", admin, nil)
	require.Equal(t, http.StatusOK, code)
	view := decode[cartView](t, env.Data)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("5.00").Equal(view.Total))

	code, env = s.do(http.MethodPost, "/api/cart/checkout", admin, nil)
	require.Equal(t, http.StatusCreated, code, env.Error)
	sale := decode[struct {
		ID          uint            `json:"id"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	}](t, env.Data)
	assert.True(t, decimal.RequireFromString("5.00").Equal(sale.TotalAmount))

	code, env = s.do(http.MethodGet, "/api/cart", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[cartView](t, env.Data).Lines)

	code, _ = s.do(http.MethodPost, "/api/cart/checkout", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, decode[struct {
		Quantity int `json:"quantity"`
	}](t, env.Data).Quantity)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/sales/%d/items", sale.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	details := decode[struct {
		Lines []struct {
			ProductName  string `json:"product_name"`
			QuantitySold int    `json:"quantity_sold"`
		} `json:"lines"`
	}](t, env.Data)
	require.Len(t, details.Lines, 1)
	assert.Equal(t, "Coffee", details.Lines[0].ProductName)
	assert.Equal(t, 2, details.Lines[0].QuantitySold)

	code, env = s.do(http.MethodGet, "/api/sales", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[struct {
		Total int64 `json:"total"`
	}](t, env.Data).Total)

	// a product with sale history cannot be deleted
	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", product.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestFailedCheckoutKeepsCart(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin")

	code, env := s.do(http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name":     "Cake",
		"price":    4,
		"quantity": 1,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	product := decode[struct {
		ID uint `json:"id"`
	}](t, env.Data)

	s.do(http.MethodPost, "/api/cart/items", admin, map[string]uint{"product_id": product.ID})
	s.do(http.MethodPost, "/api/cart/items", admin, map[string]uint{"product_id": product.ID})

	code, env = s.do(http.MethodPost, "/api/cart/checkout", admin, nil)
	assert.Equal(t, http.StatusConflict, code, env.Error)

	code, env = s.do(http.MethodGet, "/api/cart", admin, nil)
	require.Equal(t, http.StatusOK, code)
	view := decode[cartView](t, env.Data)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	code, _ = s.do(http.MethodDelete, "/api/cart", admin, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodGet, "/api/cart", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[cartView](t, env.Data).Lines)
}

func TestCartsArePerSession(t *testing.T) {
	s := newServer(t)
	first := s.login("admin", "admin")
	second := s.login("admin", "admin")

	code, env := s.do(http.MethodPost, "/api/products", first, map[string]interface{}{
		"name": "Tea", "price": "1.20", "quantity": 10,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	product := decode[struct {
		ID uint `json:"id"`
	}](t, env.Data)

	s.do(http.MethodPost, "/api/cart/items", first, map[string]uint{"product_id": product.ID})

	_, env = s.do(http.MethodGet, "/api/cart", second, nil)
	assert.Empty(t, decode[cartView](t, env.Data).Lines)

	code, _ = s.do(http.MethodPost, "/api/auth/logout", first, nil)
	require.Equal(t, http.StatusOK, code)
	_, env = s.do(http.MethodGet, "/api/cart", first, nil)
	assert.Empty(t, decode[cartView](t, env.Data).Lines)
}

func TestAuthorization(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin")

	code, _ := s.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodGet, "/api/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/users", admin, map[string]string{
		"username":         "clerk",
		"password":         "pw",
		"confirm_password": "pw",
		"role":             "Cashier",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.NotContains(t, string(env.Data), "password")
	clerkID := decode[struct {
		ID uint `json:"id"`
	}](t, env.Data).ID

	code, _ = s.do(http.MethodPost, "/api/users", admin, map[string]string{
		"username": "other", "password": "a", "confirm_password": "b",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	clerk := s.login("clerk", "pw")
	code, _ = s.do(http.MethodGet, "/api/products", clerk, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/users", clerk, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/reports/dashboard", clerk, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "password")

	// the acting admin cannot delete themselves
	adminUser, ok, err := s.app.Store.Users().FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.True(t, ok)
	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", adminUser.ID), admin, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", clerkID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/products", clerk, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDashboardIsCachedAndInvalidated(t *testing.T) {
	s := newServer(t)
	admin := s.login("admin", "admin")

	code, env := s.do(http.MethodGet, "/api/reports/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, code)
	first := decode[struct {
		Cached       bool  `json:"cached"`
		ProductCount int64 `json:"product_count"`
	}](t, env.Data)
	assert.False(t, first.Cached)
	assert.True(t, s.redis.Exists(cache.DashboardKey))

	_, env = s.do(http.MethodGet, "/api/reports/dashboard", admin, nil)
	assert.True(t, decode[struct {
		Cached bool `json:"cached"`
	}](t, env.Data).Cached)

	code, _ = s.do(http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Tea", "price": "1.20", "quantity": 10,
	})
	require.Equal(t, http.StatusCreated, code)
	assert.False(t, s.redis.Exists(cache.DashboardKey))

	_, env = s.do(http.MethodGet, "/api/reports/dashboard", admin, nil)
	second := decode[struct {
		Cached       bool  `json:"cached"`
		ProductCount int64 `json:"product_count"`
	}](t, env.Data)
	assert.False(t, second.Cached)
	assert.Equal(t, int64(1), second.ProductCount)
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	require.NoError(t, s.app.Store.Close())
	code, _ = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
