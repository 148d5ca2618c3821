package middleware

import (
	"net/http"
	"strings"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/transport/http/response"
	"motorvault-api/pkg/apierror"
)

// SessionToken extracts the session token from a request: X-Token first,
// then an Authorization bearer token.
func SessionToken(r *http.Request) string {
	if token := r.Header.Get("X-Token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Protect admits only requests carrying a verifiable session token and
// stores the principal in the request context for handlers to use.
func Protect(provider auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				response.Error(w, apierror.Unauthorized("Authentication required. Use X-Token or a bearer token."))
				return
			}

			principal, err := provider.Verify(r.Context(), token)
			if err != nil {
				response.Error(w, apierror.Unauthorized("Invalid or expired session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
