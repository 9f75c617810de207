// Package middleware provides HTTP middlewares for store authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type ctxKey string

const storeKey ctxKey = "store"

// TokenValidator resolves a session token to the store id it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// ErrMissingToken is reported when a protected route is called without a bearer token.
var ErrMissingToken = errors.New("authorization token required")

// StoreAuth is a middleware that requires an "Authorization: Bearer <token>"
// header. On success the authenticated store id is stored in the request
// context, where GetStoreIDFromContext finds it.
func StoreAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, ErrMissingToken)
				return
			}
			storeID, err := v.Validate(token)
			if err != nil {
				unauthorized(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), storeKey, storeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// GetStoreIDFromContext extracts the authenticated store id from the request
// context. Returns an empty string if not found.
func GetStoreIDFromContext(ctx context.Context) string {
	val := ctx.Value(storeKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
