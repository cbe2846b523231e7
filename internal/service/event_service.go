package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

const rangeCacheTTL = 5 * time.Minute

// EventService applies player input to games.
type EventService struct {
	games       repository.GameRepository
	cache       repository.GameCache
	broadcaster Broadcaster
	ranges      *ristretto.Cache[string, hexwar.Range]
}

// NewEventService creates an EventService with its movement range cache.
func NewEventService(games repository.GameRepository, cache repository.GameCache, broadcaster Broadcaster) (*EventService, error) {
	ranges, err := ristretto.NewCache(&ristretto.Config[string, hexwar.Range]{
		NumCounters: 1e5,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create range cache: %w", err)
	}
	return &EventService{games: games, cache: cache, broadcaster: broadcaster, ranges: ranges}, nil
}

// Close releases the range cache.
func (s *EventService) Close() {
	s.ranges.Close()
}

// HandleEvent applies ev on behalf of userID and persists the result. The
// stored game is untouched when the event is rejected.
func (s *EventService) HandleEvent(ctx context.Context, gameID, userID string, ev hexwar.Event) (*model.Game, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	game, err := loadGame(ctx, s.games, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.GameActive {
		return nil, ErrGameNotActive
	}
	player := game.PlayerFor(userID)
	if player == hexwar.NoPlayer {
		return nil, ErrNotAPlayer
	}
	if err := checkPlayable(game); err != nil {
		return nil, err
	}
	grid, err := game.Scenario.Grid()
	if err != nil {
		return nil, fmt.Errorf("game %s snapshot: %w", gameID, err)
	}

	next, err := hexwar.Apply(game.State, grid, player, ev)
	if err != nil {
		log.Debug().Err(err).Str("gameId", gameID).Str("userId", userID).Str("eventType", string(ev.Type)).
			Str("step", game.State.Step.String()).Msg("Event rejected")
		return nil, err
	}

	expected := game.Version
	game.State = next
	if err := saveGame(ctx, s.games, s.cache, game, expected); err != nil {
		return nil, err
	}

	log.Info().Str("gameId", gameID).Str("userId", userID).Str("eventType", string(ev.Type)).
		Int("turn", next.TurnNumber).Int("activePlayer", int(next.ActivePlayer)).Str("step", next.Step.String()).
		Msg("Event applied")
	s.broadcaster.BroadcastStateUpdate(gameID, ev.Type, next)
	return game, nil
}

// MovementRange returns the hexes one of the caller's units can reach from
// its current position, with the cost of each.
func (s *EventService) MovementRange(ctx context.Context, gameID, userID, unitID string) (hexwar.Range, error) {
	game, err := readGame(ctx, s.games, s.cache, gameID)
	if err != nil {
		return nil, err
	}
	player := game.PlayerFor(userID)
	if player == hexwar.NoPlayer {
		return nil, ErrNotAPlayer
	}
	if err := checkPlayable(game); err != nil {
		return nil, err
	}
	unit := game.State.UnitByID(unitID)
	if unit == nil {
		return nil, fmt.Errorf("%w: %s", hexwar.ErrUnitNotFound, unitID)
	}
	if unit.Player != player {
		return nil, fmt.Errorf("%w: %s", hexwar.ErrUnitNotOwned, unitID)
	}

	key := fmt.Sprintf("%s:%d:%s", game.ID, game.Version, unitID)
	if r, ok := s.ranges.Get(key); ok {
		return r, nil
	}
	grid, err := game.Scenario.Grid()
	if err != nil {
		return nil, fmt.Errorf("game %s snapshot: %w", gameID, err)
	}
	r := hexwar.ComputeRange(grid, game.State.Units, unit.Coord(), unit.MovementAllowance, unit.Player, unit.Arm)
	s.ranges.SetWithTTL(key, r, int64(len(r))+1, rangeCacheTTL)
	return r, nil
}

// checkPlayable rejects a stored game that lost its snapshot or state.
func checkPlayable(game *model.Game) error {
	switch {
	case game.State == nil:
		return fmt.Errorf("game %s: %w", game.ID, hexwar.ErrStateMissing)
	case game.Scenario == nil:
		return fmt.Errorf("game %s snapshot: %w", game.ID, hexwar.ErrStateMissing)
	}
	return nil
}
