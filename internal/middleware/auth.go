package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mdshelf/mdshelf/internal/auth"
	"github.com/mdshelf/mdshelf/internal/model"
)

// TokenVerifier validates a bearer token and returns its claims.
// *auth.TokenManager satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserResolver loads a user record by id. *repository.Repository satisfies it.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthConfig holds dependencies for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenVerifier
	Users  UserResolver
}

// Auth returns a middleware gating protected routes behind a bearer token.
// It verifies the token, resolves the subject to a live user record, and
// attaches the user to the request context. Downstream handlers read
// identity from the context and make no further lookups.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				logAuthFailure(cfg.Logger, r, "missing_header")
				writeAuthError(w, "Authorization header missing or invalid")
				return
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w, "Invalid or expired token")
				return
			}

			// The subject must still exist; a valid token for a deleted
			// account is not an identity.
			user, err := cfg.Users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "unknown_user")
				writeAuthError(w, "User not found")
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}

	return token, true
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 response in the standard envelope.
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
