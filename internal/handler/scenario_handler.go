package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/hexwar/internal/auth"
	"github.com/freeeve/hexwar/internal/service"
)

// ScenarioHandler handles scenario CRUD endpoints.
type ScenarioHandler struct {
	scenarioSvc *service.ScenarioService
}

// NewScenarioHandler creates a ScenarioHandler.
func NewScenarioHandler(scenarioSvc *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarioSvc: scenarioSvc}
}

func scenarioErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNameRequired), errors.Is(err, service.ErrInvalidScenario):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateScenario handles POST /api/v1/scenarios
func (h *ScenarioHandler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req service.ScenarioInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc, err := h.scenarioSvc.CreateScenario(r.Context(), userID, req)
	if err != nil {
		writeError(w, scenarioErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := h.scenarioSvc.ListScenarios(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetScenario handles GET /api/v1/scenarios/{id}
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scenarioSvc.GetScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, scenarioErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// UpdateScenario handles PUT /api/v1/scenarios/{id}
func (h *ScenarioHandler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req service.ScenarioInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc, err := h.scenarioSvc.UpdateScenario(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		writeError(w, scenarioErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// DeleteScenario handles DELETE /api/v1/scenarios/{id}
func (h *ScenarioHandler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if err := h.scenarioSvc.DeleteScenario(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, scenarioErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
