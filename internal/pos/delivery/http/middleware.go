package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated operator of a request
type Principal struct {
	UserID    uint
	Username  string
	Role      string
	SessionID string
}

// IsAdmin checks if the principal has admin role
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// PrincipalFrom returns the principal stored by AuthMiddleware
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// AuthMiddleware validates the bearer token and checks that its user still exists
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn(r.Context()).Msg("Missing authorization header")
			unauthorized(w, "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Warn(r.Context()).Msg("Invalid authorization header format")
			unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := h.tokens.ValidateToken(parts[1])
		if err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Invalid token")
			unauthorized(w, "Invalid token")
			return
		}

		// roles and deletions take effect without waiting for the token to expire
		user, found, err := h.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			respondError(w, r, "User verification failed", err)
			return
		}
		if !found {
			logger.Warn(r.Context()).Uint("user_id", claims.UserID).Msg("Token user no longer exists")
			h.sessions.Discard(claims.SessionID)
			unauthorized(w, "User no longer exists")
			return
		}

		principal := Principal{
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
			SessionID: claims.SessionID,
		}
		logger.Debug(r.Context()).
			Uint("user_id", principal.UserID).
			Str("role", principal.Role).
			Msg("User authenticated")

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware checks if user has admin role
func (h *Handler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok || !principal.IsAdmin() {
			logger.Warn(r.Context()).
				Str("role", principal.Role).
				Msg("Admin access denied")
			respondJSON(w, http.StatusForbidden, Response{
				Success: false,
				Error:   "Admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, Response{
		Success: false,
		Error:   message,
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *Handler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// LoggingMiddleware logs HTTP requests with structured logging
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		ctx := r.Context()
		traceID := "no-trace"
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		event := logger.Info(ctx)
		if ww.statusCode >= http.StatusInternalServerError {
			event = logger.Error(ctx)
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Dur("duration", duration).
			Str("trace_id", traceID).
			Msg("HTTP request completed")
	})
}

// TracingMiddleware wraps HTTP handlers with OpenTelemetry tracing
func TracingMiddleware(operationName string, next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, operationName)
}

// RegisterMiddlewares installs tracing and logging on router. Tracing runs
// first so request logs carry the trace id.
func RegisterMiddlewares(router *mux.Router) {
	router.Use(func(next http.Handler) http.Handler {
		return TracingMiddleware("http-request", next)
	})
	router.Use(LoggingMiddleware)
}
