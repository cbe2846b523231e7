// Package memory provides process-local repositories for development and
// tests. Values are cloned on the way in and out, so callers never share
// state with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
)

// GameRepo is an in-memory repository.GameRepository.
type GameRepo struct {
	mu    sync.RWMutex
	games map[string]*model.Game
	now   func() time.Time
}

// NewGameRepo creates an empty GameRepo.
func NewGameRepo() *GameRepo {
	return &GameRepo{games: make(map[string]*model.Game), now: time.Now}
}

func (r *GameRepo) Create(_ context.Context, g *model.Game) (*model.Game, error) {
	out := g.Clone()
	out.ID = uuid.NewString()
	out.Version = 1
	out.CreatedAt = r.now().UTC()
	out.UpdatedAt = out.CreatedAt

	r.mu.Lock()
	r.games[out.ID] = out.Clone()
	r.mu.Unlock()
	return out, nil
}

func (r *GameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

func (r *GameRepo) Save(_ context.Context, g *model.Game, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.games[g.ID]
	if !ok || cur.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	g.Version = expectedVersion + 1
	g.UpdatedAt = r.now().UTC()
	stored := g.Clone()
	stored.CreatedAt = cur.CreatedAt
	stored.ScenarioID = cur.ScenarioID
	stored.CreatorID = cur.CreatorID
	r.games[g.ID] = stored
	return nil
}

func (r *GameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	return r.filter(func(g *model.Game) bool { return g.Status == model.GameWaiting }), nil
}

func (r *GameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	return r.filter(func(g *model.Game) bool { return g.HasPlayer(userID) }), nil
}

// filter returns matching games newest first.
func (r *GameRepo) filter(keep func(*model.Game) bool) []model.Game {
	r.mu.RLock()
	var games []model.Game
	for _, g := range r.games {
		if keep(g) {
			games = append(games, *g.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(games, func(i, j int) bool { return games[i].CreatedAt.After(games[j].CreatedAt) })
	return games
}

func (r *GameRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.games, id)
	r.mu.Unlock()
	return nil
}

// ScenarioRepo is an in-memory repository.ScenarioRepository.
type ScenarioRepo struct {
	mu        sync.RWMutex
	scenarios map[string]*model.Scenario
	now       func() time.Time
}

// NewScenarioRepo creates an empty ScenarioRepo.
func NewScenarioRepo() *ScenarioRepo {
	return &ScenarioRepo{scenarios: make(map[string]*model.Scenario), now: time.Now}
}

func cloneScenario(s *model.Scenario) *model.Scenario {
	c := *s
	c.Scenario = *s.Scenario.Clone()
	return &c
}

func (r *ScenarioRepo) Create(_ context.Context, s *model.Scenario) (*model.Scenario, error) {
	out := cloneScenario(s)
	out.ID = uuid.NewString()
	out.CreatedAt = r.now().UTC()
	out.UpdatedAt = out.CreatedAt

	r.mu.Lock()
	r.scenarios[out.ID] = cloneScenario(out)
	r.mu.Unlock()
	return out, nil
}

func (r *ScenarioRepo) FindByID(_ context.Context, id string) (*model.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scenarios[id]
	if !ok {
		return nil, nil
	}
	return cloneScenario(s), nil
}

// List returns scenario summaries without hexes or units, newest first.
func (r *ScenarioRepo) List(_ context.Context) ([]model.Scenario, error) {
	r.mu.RLock()
	out := make([]model.Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		summary := *s
		summary.Hexes = nil
		summary.Units = nil
		out = append(out, summary)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ScenarioRepo) Update(_ context.Context, s *model.Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.scenarios[s.ID]
	if !ok {
		return nil
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = r.now().UTC()
	r.scenarios[s.ID] = cloneScenario(s)
	return nil
}

func (r *ScenarioRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.scenarios, id)
	r.mu.Unlock()
	return nil
}
