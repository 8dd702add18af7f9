package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

type contextKey struct{}

var actorKey contextKey

// Middleware identifies the caller when a bearer token is present. The
// request proceeds either way; only the actor id attached to recorded
// transactions depends on it.
func Middleware(jwtKey string) func(http.Handler) http.Handler {
	key := []byte(jwtKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				claims := &jwt.StandardClaims{}
				token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
					func(t *jwt.Token) (interface{}, error) { return key, nil })
				if err == nil && token.Valid {
					r = r.WithContext(context.WithValue(r.Context(), actorKey, claims.Subject))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorID returns the authenticated user's id, or "" for anonymous calls.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return ""
}
