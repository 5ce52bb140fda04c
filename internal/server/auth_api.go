// ABOUTME: HTTP handlers for register, login, refresh, and logout
// ABOUTME: Owns the refresh-token cookie and maps session errors to statuses

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MeghaRishabh/expense-tracker/internal/session"
	"github.com/MeghaRishabh/expense-tracker/internal/store"
)

// refreshCookieName is the cookie carrying the refresh token. The name is
// part of the client contract.
const refreshCookieName = "jwt"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// parseCredentials decodes a username/password request body.
func parseCredentials(r io.Reader) (*credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return &req, nil
}

// sessionCookie builds the refresh-token cookie with shared attributes.
func (s *Server) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.config.Cookie.Secure,
		SameSite: sameSiteMode(s.config.Cookie.SameSite),
	}
}

// setSessionCookie attaches the refresh token, valid as long as the token.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.sessionCookie(token, int(s.config.Auth.RefreshTTL.Seconds())))
}

// clearSessionCookie expires the cookie immediately.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie("", -1))
}

func sameSiteMode(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// handleRegister handles POST /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseCredentials(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := s.sessions.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, session.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
		return
	case err != nil:
		s.logger.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.setSessionCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: tokens.AccessToken})
}

// handleLogin handles POST /login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseCredentials(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, session.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		s.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.setSessionCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tokens.AccessToken})
}

// handleRefresh handles POST /refresh. A new access token is minted against
// the refresh cookie; the cookie itself is left untouched.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing session cookie")
		return
	}

	accessToken, err := s.sessions.Refresh(r.Context(), cookie.Value)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		s.logger.Error("refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken})
}

// handleLogout handles POST /logout. The cookie is cleared before anything
// else: the client ends up signed out whether or not a session matched.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.clearSessionCookie(w)

	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.Error("logout failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
