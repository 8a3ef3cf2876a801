package handler

import (
	"net/http"

	"github.com/kislikjeka/fintrack/internal/platform/auth"
)

// TokenIssuer issues operator tokens
type TokenIssuer interface {
	IssueToken(password string) (*auth.Token, error)
}

// AuthHandler handles operator authentication
type AuthHandler struct {
	issuer TokenIssuer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

// TokenRequest represents the token request body
type TokenRequest struct {
	Password string `json:"password"`
}

// IssueToken handles POST /auth/token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.issuer.IssueToken(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, token, http.StatusOK)
}
