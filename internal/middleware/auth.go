package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ngoledger/internal/domain"
	"ngoledger/internal/infra"
)

type userKey string

const (
	userIDKey userKey = "user_id"
)

// TokenResolver maps an API token to the id of the user owning it.
type TokenResolver interface {
	UserIDForToken(ctx context.Context, key string) (string, error)
}

// TokenAuth resolves "Authorization: Token <key>" into a user id on the
// request context. Requests without the header pass through anonymously;
// a header carrying an unknown key is rejected.
func TokenAuth(resolver TokenResolver, logger *infra.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "Invalid token header")
				return
			}
			userID, err := resolver.UserIDForToken(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					logger.Error().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("token lookup failed")
				}
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// RequireUser rejects requests that TokenAuth left anonymous.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromContext(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
