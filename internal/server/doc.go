// Package server orchestrates the expense tracker components.
//
// # Overview
//
// The server package is the central coordinator. It owns the SQLite
// store, the session manager, the category catalog, and the HTTP API,
// and maps domain errors to HTTP statuses in exactly one place.
//
// # HTTP API
//
// Public endpoints:
//
//   - POST /register - Create an account, start a session (201)
//   - POST /login - Verify credentials, start a session (200)
//   - POST /refresh - Exchange the refresh cookie for a new access token (200)
//   - POST /logout - Revoke the session, always clear the cookie (204)
//   - GET /categories - Category suggestions (200)
//   - GET /health - Liveness check (200)
//
// Guarded endpoints (Bearer access token, everything under /auth/):
//
//   - POST /auth/create - Append a transaction (201)
//   - GET /auth/transactions - List the caller's ledger (200)
//   - PUT /auth/update/{id} - Replace a transaction (200)
//   - DELETE /auth/delete/{id} - Remove a transaction (204)
//   - GET /auth/budgets - List budget limits (200)
//   - PUT /auth/budgets/{category} - Set a budget limit (200)
//   - DELETE /auth/budgets/{category} - Remove a budget limit (204)
//   - GET /auth/export - Download the ledger as CSV (200)
//
// # Error Shape
//
// Every error body is JSON:
//
//	{"error": "<message>"}
//
// Status mapping: 400 bad input, 401 bad credentials or missing auth,
// 403 failed token verification, 404 missing (or another user's)
// resource, 409 duplicate username, 500 internal.
//
// # Session Cookie
//
// The refresh token travels in an httpOnly cookie named "jwt" with
// Path=/ and Max-Age equal to the refresh TTL. Logout always clears it,
// even when no stored session matched.
//
// # Lifecycle
//
// Start the server:
//
//	srv, err := server.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	err = srv.Run(ctx)
//
// Run blocks until the context is canceled, then drains connections for
// up to 5 seconds before closing the store.
//
// # Key Files
//
//   - server.go: Server struct, routes, Run/Shutdown
//   - auth_api.go: register/login/refresh/logout and the cookie
//   - transactions_api.go: transaction CRUD and validation
//   - budgets_api.go: budget limits
//   - export_api.go: CSV download
//   - middleware.go: recovery, request logging, request ids, CORS
package server
