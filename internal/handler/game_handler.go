package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/hexwar/internal/auth"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/internal/service"
)

// GameHandler handles game lifecycle endpoints.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

func gameErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotCreator), errors.Is(err, service.ErrNotAPlayer):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrGameNotWaiting), errors.Is(err, service.ErrGameNotActive),
		errors.Is(err, service.ErrGameInProgress), errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrInvalidFilter), errors.Is(err, service.ErrInvalidScenario):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		ScenarioID string `json:"scenarioId"`
		Name       string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ScenarioID == "" {
		writeError(w, http.StatusBadRequest, "scenarioId is required")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req.ScenarioID, req.Name, userID)
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGames handles GET /api/v1/games?filter=my|open
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	games, err := h.gameSvc.ListGames(r.Context(), userID, r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameSvc.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.gameSvc.DeleteGame(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// JoinGame handles POST /api/v1/games/{id}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	game, err := h.gameSvc.JoinGame(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// ConcedeGame handles POST /api/v1/games/{id}/concede
func (h *GameHandler) ConcedeGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	game, err := h.gameSvc.ConcedeGame(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}
