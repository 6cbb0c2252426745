package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	usernameKey contextKey = "username"
	sessionKey  contextKey = "session_id"
)

// Middleware guards the chat routes: it expects "Bearer <token>", parses
// it with the service and puts username + session id into the context.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			username, sessionID, err := svc.ParseToken(parts[1])
			if err != nil {
				http.Error(w, "invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			ctx = context.WithValue(ctx, sessionKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Username extracts the authenticated username in handlers.
func Username(ctx context.Context) string {
	if u, ok := ctx.Value(usernameKey).(string); ok {
		return u
	}
	return ""
}

// SessionID extracts the dialogue session id in handlers.
func SessionID(ctx context.Context) string {
	if s, ok := ctx.Value(sessionKey).(string); ok {
		return s
	}
	return ""
}
