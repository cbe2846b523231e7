package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/internal/repository/memory"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

type broadcastCall struct {
	gameID    string
	eventType string
	data      any
	action    hexwar.EventType
	state     *hexwar.GameState
}

type mockBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (m *mockBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcastCall{gameID: gameID, eventType: eventType, data: data})
}

func (m *mockBroadcaster) BroadcastStateUpdate(gameID string, action hexwar.EventType, state *hexwar.GameState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcastCall{gameID: gameID, eventType: EventGameStateUpdate, action: action, state: state})
}

func (m *mockBroadcaster) last() (broadcastCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return broadcastCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

func (m *mockBroadcaster) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockCache struct {
	games   map[string]*model.Game
	getErr  error
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{games: make(map[string]*model.Game)}
}

func (m *mockCache) SetGame(_ context.Context, g *model.Game) error {
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *mockCache) GetGame(_ context.Context, id string) (*model.Game, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

func (m *mockCache) DeleteGame(_ context.Context, id string) error {
	m.deletes++
	delete(m.games, id)
	return nil
}

// racingRepo lets another writer win the next Save.
type racingRepo struct {
	repository.GameRepository
	race bool
}

func (r *racingRepo) Save(ctx context.Context, g *model.Game, expected int64) error {
	if r.race {
		r.race = false
		return repository.ErrVersionConflict
	}
	return r.GameRepository.Save(ctx, g, expected)
}

var errCacheDown = errors.New("cache down")

type fixture struct {
	scenarios *memory.ScenarioRepo
	games     *racingRepo
	cache     *mockCache
	bc        *mockBroadcaster
	scenSvc   *ScenarioService
	gameSvc   *GameService
	eventSvc  *EventService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		scenarios: memory.NewScenarioRepo(),
		games:     &racingRepo{GameRepository: memory.NewGameRepo()},
		cache:     newMockCache(),
		bc:        &mockBroadcaster{},
	}
	f.scenSvc = NewScenarioService(f.scenarios)
	f.gameSvc = NewGameService(f.games, f.scenarios, f.cache, f.bc)
	es, err := NewEventService(f.games, f.cache, f.bc)
	if err != nil {
		t.Fatalf("NewEventService: %v", err)
	}
	t.Cleanup(es.Close)
	f.eventSvc = es
	return f
}

// skirmish is a 5x5 map with a water hex at (2,2), two Player 1 units on
// (0,0) and one Player 2 unit on (4,4).
func skirmish() ScenarioInput {
	s := hexwar.NewScenario(5, 5)
	s.Hexes[2*5+2].Terrain = hexwar.Water
	s.Units = []hexwar.Unit{
		{ID: "inf", Player: hexwar.Player1, CombatStrength: 4, MovementAllowance: 2, Arm: hexwar.Infantry},
		{ID: "cav", Player: hexwar.Player1, CombatStrength: 3, MovementAllowance: 4, Arm: hexwar.Cavalry},
		{ID: "art", Player: hexwar.Player2, CombatStrength: 5, MovementAllowance: 1, Arm: hexwar.Artillery, Column: 4, Row: 4},
	}
	return ScenarioInput{Name: "Skirmish", Scenario: *s}
}

// activeGame creates the skirmish scenario and a game between alice and bob.
func (f *fixture) activeGame(t *testing.T) *model.Game {
	t.Helper()
	ctx := context.Background()
	sc, err := f.scenSvc.CreateScenario(ctx, "alice", skirmish())
	if err != nil {
		t.Fatalf("CreateScenario: %v", err)
	}
	g, err := f.gameSvc.CreateGame(ctx, sc.ID, "", "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	g, err = f.gameSvc.JoinGame(ctx, g.ID, "bob")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	return g
}
