package repository

import (
	"context"
	"errors"

	"github.com/freeeve/hexwar/internal/model"
)

// ErrVersionConflict is returned by GameRepository.Save when the stored game
// no longer carries the version the caller read.
var ErrVersionConflict = errors.New("game was modified concurrently")

// ScenarioRepository defines scenario data operations. FindByID returns
// (nil, nil) when the scenario does not exist.
type ScenarioRepository interface {
	Create(ctx context.Context, s *model.Scenario) (*model.Scenario, error)
	FindByID(ctx context.Context, id string) (*model.Scenario, error)
	List(ctx context.Context) ([]model.Scenario, error)
	Update(ctx context.Context, s *model.Scenario) error
	Delete(ctx context.Context, id string) error
}

// GameRepository defines game data operations. FindByID returns (nil, nil)
// when the game does not exist.
type GameRepository interface {
	Create(ctx context.Context, g *model.Game) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	// Save writes g if the stored version still equals expectedVersion and
	// sets g.Version to the new version.
	Save(ctx context.Context, g *model.Game, expectedVersion int64) error
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	Delete(ctx context.Context, id string) error
}

// GameCache holds recently read games (Redis). GetGame returns (nil, nil) on
// a miss.
type GameCache interface {
	SetGame(ctx context.Context, g *model.Game) error
	GetGame(ctx context.Context, id string) (*model.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// NoopCache is a GameCache that stores nothing.
type NoopCache struct{}

func (NoopCache) SetGame(context.Context, *model.Game) error            { return nil }
func (NoopCache) GetGame(context.Context, string) (*model.Game, error) { return nil, nil }
func (NoopCache) DeleteGame(context.Context, string) error              { return nil }
