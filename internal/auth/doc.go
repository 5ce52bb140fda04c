// Package auth provides token issuing, verification, and the HTTP access
// guard for expense-tracker.
//
// # Token Scheme
//
// Two kinds of HS256 signed JWTs are issued, each with its own secret:
//
//   - Access tokens: short-lived (seconds to minutes), carried by clients in
//     the Authorization header and verified on every protected request.
//   - Refresh tokens: long-lived (one day), persisted on the user record and
//     mirrored to the client in an httpOnly cookie.
//
// Both embed the user ID in the "sub" claim along with "iat" and "exp".
// Because the secrets differ, an access token can never pass refresh
// verification or vice versa.
//
// # Access Guard
//
// RequireAuth wraps protected handlers:
//
//	mux.Handle("GET /auth/transactions", auth.RequireAuth(svc, logger)(handler))
//
// A missing or malformed Authorization header yields 401. A token that fails
// verification yields 403, and expired tokens are deliberately not
// distinguished from invalid ones in the response. The guard performs no
// store lookup: revocation takes effect only when the access token expires,
// which is why the access TTL is kept short.
//
// # Identity Propagation
//
// The guard attaches the verified user ID to the request context:
//
//	userID := auth.MustUserFromContext(r.Context())
//
// Handlers mounted behind RequireAuth can rely on the ID being present.
package auth
