package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/auth"
)

// AuthHandler issues and refreshes tokens. Identities come from an external
// provider in production; dev login stands in for it locally.
type AuthHandler struct {
	jwtMgr  *auth.JWTManager
	devMode bool
}

// NewAuthHandler creates an AuthHandler. Dev login answers 404 unless devMode
// is set.
func NewAuthHandler(jwtMgr *auth.JWTManager, devMode bool) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr, devMode: devMode}
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwtMgr.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// DevLogin handles GET /auth/dev?name= and returns tokens for "dev-<name>".
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.devMode {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}

	userID := "dev-" + name
	tokens, err := h.jwtMgr.GenerateTokenPair(userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to generate dev tokens")
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":       userID,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}
