package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/till-pos/internal/pos/cart"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/internal/pos/usecase/command"
	"github.com/tair/till-pos/internal/pos/usecase/query"
	"github.com/tair/till-pos/pkg/auth"
	"github.com/tair/till-pos/pkg/logger"
)

// Commands groups the command handlers used by the HTTP surface
type Commands struct {
	CommitSale    *command.CommitSaleHandler
	CreateProduct *command.CreateProductHandler
	UpdateProduct *command.UpdateProductHandler
	DeleteProduct *command.DeleteProductHandler
	CreateUser    *command.CreateUserHandler
	UpdateUser    *command.UpdateUserHandler
	DeleteUser    *command.DeleteUserHandler
	Login         *command.LoginUserHandler
}

// Queries groups the query handlers used by the HTTP surface
type Queries struct {
	GetProduct     *query.GetProductHandler
	ListProducts   *query.ListProductsHandler
	ListSales      *query.ListSalesHandler
	GetSaleDetails *query.GetSaleDetailsHandler
	ListUsers      *query.ListUsersHandler
	GetDashboard   *query.GetDashboardHandler
}

// DashboardInvalidator drops cached statistics after a write
type DashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the till's JSON API
type Handler struct {
	commands Commands
	queries  Queries
	sessions *cart.Sessions
	tokens   *auth.TokenManager
	users    domain.UserRepository
	cache    DashboardInvalidator
	store    Pinger
	limiter  *RateLimiter

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewHandler creates the HTTP handler and registers its metrics on reg
func NewHandler(
	commands Commands,
	queries Queries,
	sessions *cart.Sessions,
	tokens *auth.TokenManager,
	users domain.UserRepository,
	cache DashboardInvalidator,
	store Pinger,
	limiter *RateLimiter,
	reg prometheus.Registerer,
) *Handler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "Total number of requests to the till API",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "Duration of till API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	reg.MustRegister(requestCounter, requestLatency)

	return &Handler{
		commands:       commands,
		queries:        queries,
		sessions:       sessions,
		tokens:         tokens,
		users:          users,
		cache:          cache,
		store:          store,
		limiter:        limiter,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

// Response is the envelope of every JSON reply
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterRoutes mounts the API on router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	route := func(path string, fn http.HandlerFunc, methods ...string) {
		router.HandleFunc(path, h.metricsMiddleware(path, fn)).Methods(methods...)
	}
	user := h.AuthMiddleware
	admin := h.AdminMiddleware

	// Public routes
	route("/api/auth/login", h.limiter.Middleware(h.Login), http.MethodPost)

	// Any signed-in operator
	route("/api/auth/logout", user(h.Logout), http.MethodPost)
	route("/api/products", user(h.ListProducts), http.MethodGet)
	route("/api/products/{id}", user(h.GetProduct), http.MethodGet)
	route("/api/cart", user(h.GetCart), http.MethodGet)
	route("/api/cart", user(h.CancelCart), http.MethodDelete)
	route("/api/cart/items", user(h.AddCartItem), http.MethodPost)
	route("/api/cart/checkout", user(h.Checkout), http.MethodPost)

	// Admin routes
	route("/api/products", admin(h.CreateProduct), http.MethodPost)
	route("/api/products/{id}", admin(h.UpdateProduct), http.MethodPut)
	route("/api/products/{id}", admin(h.DeleteProduct), http.MethodDelete)
	route("/api/sales", admin(h.ListSales), http.MethodGet)
	route("/api/sales/{id}/items", admin(h.GetSaleDetails), http.MethodGet)
	route("/api/reports/dashboard", admin(h.GetDashboard), http.MethodGet)
	route("/api/users", admin(h.ListUsers), http.MethodGet)
	route("/api/users", admin(h.CreateUser), http.MethodPost)
	route("/api/users/{id}", admin(h.UpdateUser), http.MethodPut)
	route("/api/users/{id}", admin(h.DeleteUser), http.MethodDelete)
}

// RegisterHealthCheck registers health check endpoint
func (h *Handler) RegisterHealthCheck(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Till service is healthy",
		})
	}).Methods(http.MethodGet)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps a domain error onto a status code and logs server-side failures
func respondError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	event := logger.Warn(r.Context())
	if status >= http.StatusInternalServerError {
		event = logger.Error(r.Context())
	}
	event.Err(err).Str("path", r.URL.Path).Msg(msg)

	respondJSON(w, status, Response{
		Success: false,
		Message: msg,
		Error:   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSelfDeletion):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrWriteRejected):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid " + what + " ID",
		})
		return 0, false
	}
	return uint(id), true
}
