package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"motorvault-api/internal/auth"
	"motorvault-api/internal/domain"
	"motorvault-api/internal/transport/http/middleware"
	"motorvault-api/internal/transport/http/response"
	"motorvault-api/pkg/apierror"
)

// AuthHandler handles staff sign-in and sign-out.
type AuthHandler struct {
	provider auth.Provider
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(provider auth.Provider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

// LoginRequest represents the request body for sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
// A failed sign-in always produces the same generic message, whatever
// actually went wrong with the credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		response.Error(w, apierror.BadRequest("email and password are required"))
		return
	}

	session, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			response.Error(w, apierror.Unauthorized("Failed to sign in. Please check your email and password."))
			return
		}
		response.Error(w, err)
		return
	}

	response.OK(w, session)
}

// Logout handles POST /api/v1/auth/logout
// Revokes the presented session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if token == "" {
		response.Error(w, apierror.BadRequest("no session token presented"))
		return
	}

	if err := h.provider.SignOut(r.Context(), token); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}
