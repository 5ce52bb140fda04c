// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts the bearer token, verifies it, and adds the user ID to context

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// RequireAuth creates an HTTP middleware that extracts and verifies access
// tokens, attaching the authenticated user ID to the request context. A
// missing or malformed Authorization header is 401; a token that fails
// verification is 403, with expired and otherwise invalid tokens
// indistinguishable to the client.
//
// The store is never consulted here. Revoking a session does not cut off
// access tokens already in flight; their short TTL bounds that window.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				logAuthFailure(logger, r, "token_extraction_failed", errMsg)
				http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
				return
			}

			userID, err := verifier.VerifyAccessToken(token)
			if err != nil {
				logAuthFailure(logger, r, "token_verification_failed", err.Error())
				http.Error(w, `{"error":"invalid token"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// logAuthFailure records a failed authentication attempt. Token contents are
// never logged.
func logAuthFailure(logger *slog.Logger, r *http.Request, reason, detail string) {
	if logger == nil {
		return
	}
	logger.Warn("http auth failure",
		"reason", reason,
		"detail", detail,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
}
