package handler

import (
	"net/http"

	"github.com/freeeve/hexwar/internal/auth"
)

// Routes groups the handlers served by the API.
type Routes struct {
	JWT       *auth.JWTManager
	Auth      *AuthHandler
	Scenarios *ScenarioHandler
	Games     *GameHandler
	Events    *EventHandler
	WS        *WSHandler
}

// Mux builds the router. Everything under /api/v1 except the WebSocket
// endpoint requires a bearer token.
func (rt Routes) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/refresh", rt.Auth.RefreshToken)
	mux.HandleFunc("GET /auth/dev", rt.Auth.DevLogin)

	api := http.NewServeMux()
	api.HandleFunc("POST /scenarios", rt.Scenarios.CreateScenario)
	api.HandleFunc("GET /scenarios", rt.Scenarios.ListScenarios)
	api.HandleFunc("GET /scenarios/{id}", rt.Scenarios.GetScenario)
	api.HandleFunc("PUT /scenarios/{id}", rt.Scenarios.UpdateScenario)
	api.HandleFunc("DELETE /scenarios/{id}", rt.Scenarios.DeleteScenario)
	api.HandleFunc("POST /games", rt.Games.CreateGame)
	api.HandleFunc("GET /games", rt.Games.ListGames)
	api.HandleFunc("GET /games/{id}", rt.Games.GetGame)
	api.HandleFunc("DELETE /games/{id}", rt.Games.DeleteGame)
	api.HandleFunc("POST /games/{id}/join", rt.Games.JoinGame)
	api.HandleFunc("POST /games/{id}/concede", rt.Games.ConcedeGame)
	api.HandleFunc("POST /games/{id}/events", rt.Events.PostEvent)
	api.HandleFunc("GET /games/{id}/units/{unitId}/range", rt.Events.GetRange)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(rt.JWT)(api)))

	// Browsers cannot send headers on the upgrade, so the hub checks ?token=.
	mux.HandleFunc("GET /api/v1/ws", rt.WS.ServeWS)

	return mux
}
