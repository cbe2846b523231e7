// Package client talks to a hexwar server over HTTP and WebSocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/service"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Event is a message pushed over the WebSocket.
type Event struct {
	Type      string            `json:"type"`
	GameID    string            `json:"gameId"`
	Action    hexwar.EventType  `json:"action,omitempty"`
	GameState *hexwar.GameState `json:"gameState,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Client is an authenticated session against one server.
type Client struct {
	baseURL string
	token   string
	userID  string
	httpC   *http.Client

	mu       sync.Mutex
	wsConn   *websocket.Conn
	events   chan Event
	closedWS bool
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpC:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a previously issued access token.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string  { return c.token }
func (c *Client) UserID() string { return c.userID }

// Login authenticates through the development login endpoint.
func (c *Client) Login(ctx context.Context, name string) error {
	var resp struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/dev?name="+url.QueryEscape(name), nil, &resp); err != nil {
		return fmt.Errorf("dev login: %w", err)
	}
	c.token = resp.AccessToken
	c.userID = resp.UserID
	log.Debug().Str("userId", c.userID).Msg("Logged in")
	return nil
}

func (c *Client) CreateScenario(ctx context.Context, in service.ScenarioInput) (*model.Scenario, error) {
	var sc model.Scenario
	if err := c.do(ctx, http.MethodPost, "/api/v1/scenarios", in, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (c *Client) ListScenarios(ctx context.Context) ([]model.Scenario, error) {
	var list []model.Scenario
	err := c.do(ctx, http.MethodGet, "/api/v1/scenarios", nil, &list)
	return list, err
}

// CreateGame starts a game on a scenario; an empty name uses the scenario's.
func (c *Client) CreateGame(ctx context.Context, scenarioID, name string) (*model.Game, error) {
	body := map[string]string{"scenarioId": scenarioID, "name": name}
	return c.game(ctx, http.MethodPost, "/api/v1/games", body)
}

func (c *Client) JoinGame(ctx context.Context, gameID string) (*model.Game, error) {
	return c.game(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/join", nil)
}

func (c *Client) ConcedeGame(ctx context.Context, gameID string) (*model.Game, error) {
	return c.game(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/concede", nil)
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return c.game(ctx, http.MethodGet, "/api/v1/games/"+gameID, nil)
}

// ListGames lists games by filter ("my" or "open").
func (c *Client) ListGames(ctx context.Context, filter string) ([]model.Game, error) {
	var games []model.Game
	err := c.do(ctx, http.MethodGet, "/api/v1/games?filter="+url.QueryEscape(filter), nil, &games)
	return games, err
}

// SendEvent submits one input event and returns the updated game.
func (c *Client) SendEvent(ctx context.Context, gameID string, ev hexwar.Event) (*model.Game, error) {
	return c.game(ctx, http.MethodPost, "/api/v1/games/"+gameID+"/events", ev)
}

func (c *Client) Click(ctx context.Context, gameID string, hex hexwar.Coord) (*model.Game, error) {
	return c.SendEvent(ctx, gameID, hexwar.Event{Type: hexwar.EventMapClick, Hex: &hex})
}

func (c *Client) SelectUnit(ctx context.Context, gameID, unitID string) (*model.Game, error) {
	return c.SendEvent(ctx, gameID, hexwar.Event{Type: hexwar.EventSelectUnit, UnitID: unitID})
}

func (c *Client) EndPhase(ctx context.Context, gameID string) (*model.Game, error) {
	return c.SendEvent(ctx, gameID, hexwar.Event{Type: hexwar.EventEndPhase})
}

// Range returns the hexes a unit can reach and their costs.
func (c *Client) Range(ctx context.Context, gameID, unitID string) (hexwar.Range, error) {
	var resp struct {
		Hexes hexwar.Range `json:"hexes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/games/"+gameID+"/units/"+url.PathEscape(unitID)+"/range", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Hexes, nil
}

// ConnectWS opens the event stream. Events are delivered on Events until
// the connection drops or CloseWS is called.
func (c *Client) ConnectWS(ctx context.Context) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws?token=" + url.QueryEscape(c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.mu.Lock()
	c.wsConn = conn
	c.events = make(chan Event, 64)
	c.closedWS = false
	c.mu.Unlock()

	go c.readWSLoop(conn, c.events)
	return nil
}

// Subscribe asks the server for the events of one game.
func (c *Client) Subscribe(gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn == nil {
		return fmt.Errorf("websocket not connected")
	}
	return c.wsConn.WriteJSON(map[string]string{"action": "subscribe", "gameId": gameID})
}

func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) readWSLoop(conn *websocket.Conn, events chan<- Event) {
	defer close(events)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Msg("WS read error")
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Debug().Err(err).Msg("Skipping undecodable WS message")
			continue
		}
		events <- ev
	}
}

func (c *Client) game(ctx context.Context, method, path string, payload any) (*model.Game, error) {
	var g model.Game
	if err := c.do(ctx, method, path, payload, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// do sends payload as JSON and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else if method == http.MethodPost {
		body = strings.NewReader("{}")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
