package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lexara-com/engage-sub006/internal/api/response"
	"github.com/lexara-com/engage-sub006/internal/repository/redis"
	"github.com/lexara-com/engage-sub006/internal/security"
)

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	UserEmailKey contextKey = "userEmail"
	FirmIDKey    contextKey = "firmID"
	ToolNameKey  contextKey = "toolName"
)

// AuthMiddleware handles JWT authentication for admin-portal callers
type AuthMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the JWT token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "missing or malformed authorization header")
			return
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		if firmID, ok := GetFirmID(r.Context()); ok && !claims.AllowsFirm(firmID) {
			response.Forbidden(w, "firm access denied")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ServiceTokenMiddleware authenticates the MCP tool callers (goal tracker,
// conflict checker, supporting documents) by shared-secret token.
type ServiceTokenMiddleware struct {
	verifier *security.ServiceTokenVerifier
}

// NewServiceTokenMiddleware creates a new service token middleware
func NewServiceTokenMiddleware(verifier *security.ServiceTokenVerifier) *ServiceTokenMiddleware {
	return &ServiceTokenMiddleware{verifier: verifier}
}

// Authenticate validates the tool's service token
func (m *ServiceTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "missing or malformed authorization header")
			return
		}

		tool, err := m.verifier.Verify(token)
		if err != nil {
			response.Unauthorized(w, "unknown service token")
			return
		}

		ctx := context.WithValue(r.Context(), ToolNameKey, tool)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetFirmID gets the firm ID from context
func GetFirmID(ctx context.Context) (uuid.UUID, bool) {
	firmID, ok := ctx.Value(FirmIDKey).(uuid.UUID)
	return firmID, ok
}

// GetToolName gets the authenticated tool caller name from context
func GetToolName(ctx context.Context) (string, bool) {
	tool, ok := ctx.Value(ToolNameKey).(string)
	return tool, ok
}

// FirmContext extracts the firm ID from the URL and adds it to context
func FirmContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firmIDStr := chi.URLParam(r, "firmID")
		if firmIDStr == "" {
			response.BadRequest(w, "missing firm ID")
			return
		}

		firmID, err := uuid.Parse(firmIDStr)
		if err != nil {
			response.BadRequest(w, "invalid firm ID")
			return
		}

		ctx := context.WithValue(r.Context(), FirmIDKey, firmID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware handles rate limiting per firm
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies rate limiting keyed by firm ID
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		firmID, ok := GetFirmID(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), firmID)
		if err != nil {
			// If the rate limiter fails, allow the request
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if !allowed {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
