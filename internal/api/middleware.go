package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rahim-jr/stripe-payment-tester-repo/internal/models"
	"github.com/rahim-jr/stripe-payment-tester-repo/internal/store"
)

type contextKey struct{}

var userContextKey contextKey

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// RequireAuth verifies the bearer token and resolves it to a user. All
// failure kinds map to the same 401 response; only the logs tell
// missing, expired, invalid and unknown-subject apart.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			h.Log.Warn().Str("path", r.URL.Path).Str("reason", "missing_credential").Msg("unauthorized request")
			http.Error(w, `{"error": "Authorization header required"}`, http.StatusUnauthorized)
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(header, bearerPrefix) {
			h.Log.Warn().Str("path", r.URL.Path).Str("reason", "invalid_credential").Msg("unauthorized request")
			http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, bearerPrefix)

		userID, err := h.Auth.ParseToken(tokenString)
		if err != nil {
			reason := "invalid_credential"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "expired_credential"
			}
			h.Log.Warn().Str("path", r.URL.Path).Str("reason", reason).Msg("unauthorized request")
			http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		user, err := h.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.Log.Warn().Str("path", r.URL.Path).Str("reason", "unknown_subject").Msg("unauthorized request")
				http.Error(w, `{"error": "Invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			h.Log.Error().Err(err).Msg("failed to resolve token subject")
			http.Error(w, `{"error": "Internal server error"}`, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
