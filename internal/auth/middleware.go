package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

const (
	userCacheTTL     = 5 * time.Minute
	userCacheCleanup = 10 * time.Minute
)

// UserLookup is the part of the user store the middleware needs.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type Middleware struct {
	tokens *TokenIssuer
	users  UserLookup
	known  *cache.Cache
	logger *slog.Logger
}

func NewMiddleware(tokens *TokenIssuer, users UserLookup, logger *slog.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		known:  cache.New(userCacheTTL, userCacheCleanup),
		logger: logger.With("component", "auth"),
	}
}

// RequireAuth rejects requests without a valid bearer token for an existing
// user and stores the user ID in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "Authorization token required")
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		if err := m.ensureUser(r.Context(), userID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				unauthorized(w, "User not found")
				return
			}
			m.logger.ErrorContext(r.Context(), "user lookup failed", "user_id", userID, "error", err)
			writeMessage(w, http.StatusInternalServerError, "Server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), userID)))
	})
}

func (m *Middleware) ensureUser(ctx context.Context, userID uuid.UUID) error {
	key := cacheKey(userID)
	if _, found := m.known.Get(key); found {
		return nil
	}
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		return err
	}
	m.known.Set(key, struct{}{}, cache.DefaultExpiration)
	return nil
}

func cacheKey(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeMessage(w, http.StatusUnauthorized, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
	}{msg})
}
