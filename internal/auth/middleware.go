package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TokenHeader is the custom header the frontend sends the token in.
const TokenHeader = "x-auth-token"

type contextKey struct{}

// AdminChecker reports whether a user currently holds admin rights.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}

// Authenticate validates the token from x-auth-token (or a Bearer Authorization header)
// and stores the user id in the request context.
func Authenticate(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(checker AdminChecker, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
				return
			}

			isAdmin, err := checker.IsAdmin(r.Context(), userID)
			if err != nil {
				log.Error("admin check failed", zap.Int64("user_id", userID), zap.Error(err))
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
				return
			}
			if !isAdmin {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Access denied: Not an admin.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
