// ABOUTME: HTTP middleware for bearer-token authentication on API endpoints
// ABOUTME: Rejects unauthenticated requests before any handler runs

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2389/taskd/internal/apperr"
)

// Authenticator verifies a bearer token and returns the caller's identity.
type Authenticator interface {
	Authenticate(token string) (*Identity, error)
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// writeUnauthorized writes a 401 JSON error with a bearer challenge.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="taskd"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RequireUser creates an HTTP middleware that verifies the bearer token and
// adds the caller's Identity to the request context. Requests without a
// valid token never reach next.
func RequireUser(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeUnauthorized(w, errMsg)
				return
			}

			identity, err := authn.Authenticate(token)
			if err != nil {
				writeUnauthorized(w, apperr.PublicMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
