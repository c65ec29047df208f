package httpx

import (
	"net/http"
	"strings"

	"booklib/internal/auth"
)

// AuthMiddleware extracts a bearer token, verifies it and puts the actor
// on the request context. Requests without a valid token are rejected;
// read-only routes simply stay outside this middleware.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or malformed bearer token", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := auth.ParseToken(secret, token)
			if err != nil {
				JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", nil)
				return
			}

			ctx := ContextWithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
