package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not waiting for players")
	ErrGameNotActive  = errors.New("game is not active")
	ErrGameInProgress = errors.New("game is in progress")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotAPlayer     = errors.New("you are not a player in this game")
	ErrInvalidFilter  = errors.New("unknown game filter")
)

// Game list filters.
const (
	FilterMy   = "my"
	FilterOpen = "open"
)

// GameService handles game lifecycle operations.
type GameService struct {
	games       repository.GameRepository
	scenarios   repository.ScenarioRepository
	cache       repository.GameCache
	broadcaster Broadcaster
}

// NewGameService creates a GameService.
func NewGameService(games repository.GameRepository, scenarios repository.ScenarioRepository, cache repository.GameCache, broadcaster Broadcaster) *GameService {
	return &GameService{games: games, scenarios: scenarios, cache: cache, broadcaster: broadcaster}
}

// CreateGame starts a game from a snapshot of the scenario. The creator plays
// Player 1 and the game waits for a second user.
func (s *GameService) CreateGame(ctx context.Context, scenarioID, name, creatorID string) (*model.Game, error) {
	sc, err := s.scenarios.FindByID(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrScenarioNotFound
	}
	snapshot := sc.Scenario.Clone()
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := snapshot.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = sc.Name
	}
	game, err := s.games.Create(ctx, &model.Game{
		Name:       name,
		ScenarioID: sc.ID,
		CreatorID:  creatorID,
		Player1ID:  creatorID,
		Status:     model.GameWaiting,
		Scenario:   snapshot,
		State:      hexwar.NewGameState(snapshot),
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("gameId", game.ID).Str("scenarioId", sc.ID).Str("userId", creatorID).Msg("Game created")
	return game, nil
}

// JoinGame seats userID as Player 2 and activates the game.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.HasPlayer(userID) {
		return nil, ErrAlreadyJoined
	}
	if game.Status != model.GameWaiting {
		return nil, ErrGameNotWaiting
	}

	expected := game.Version
	game.Player2ID = userID
	game.Status = model.GameActive
	if err := s.save(ctx, game, expected); err != nil {
		return nil, err
	}
	log.Info().Str("gameId", gameID).Str("userId", userID).Msg("Player joined, game active")
	s.broadcaster.BroadcastGameEvent(gameID, EventPlayerJoined, map[string]any{
		"player2Id": userID,
		"status":    game.Status,
	})
	return game, nil
}

// GetGame returns a game, preferring the cache.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return readGame(ctx, s.games, s.cache, gameID)
}

// ListGames returns the games matching filter: "my" (the default) lists the
// user's games, "open" lists games waiting for a second player.
func (s *GameService) ListGames(ctx context.Context, userID, filter string) ([]model.Game, error) {
	switch filter {
	case FilterOpen:
		return s.games.ListOpen(ctx)
	case FilterMy, "":
		return s.games.ListByUser(ctx, userID)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
}

// DeleteGame removes a game that is not in progress. Only its creator may
// delete it.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	if game.Status == model.GameActive {
		return ErrGameInProgress
	}
	if err := s.games.Delete(ctx, gameID); err != nil {
		return err
	}
	if err := s.cache.DeleteGame(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to evict deleted game from cache")
	}
	log.Info().Str("gameId", gameID).Str("userId", userID).Msg("Game deleted")
	return nil
}

// ConcedeGame ends an active game in favour of the other player.
func (s *GameService) ConcedeGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	player := game.PlayerFor(userID)
	if player == hexwar.NoPlayer {
		return nil, ErrNotAPlayer
	}
	if game.Status != model.GameActive {
		return nil, ErrGameNotActive
	}

	expected := game.Version
	game.Status = model.GameFinished
	game.Winner = player.Other()
	if err := s.save(ctx, game, expected); err != nil {
		return nil, err
	}
	log.Info().Str("gameId", gameID).Str("userId", userID).Int("winner", int(game.Winner)).Msg("Game conceded")
	s.broadcaster.BroadcastGameEvent(gameID, EventGameEnded, map[string]any{
		"winner": game.Winner,
		"reason": "concede",
	})
	return game, nil
}

// load reads a game from the repository, bypassing the cache so the version
// used for the next Save is current.
func (s *GameService) load(ctx context.Context, gameID string) (*model.Game, error) {
	return loadGame(ctx, s.games, gameID)
}

func (s *GameService) save(ctx context.Context, game *model.Game, expected int64) error {
	return saveGame(ctx, s.games, s.cache, game, expected)
}

func loadGame(ctx context.Context, games repository.GameRepository, gameID string) (*model.Game, error) {
	game, err := games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// readGame serves reads through the cache. Cache failures fall back to the
// repository.
func readGame(ctx context.Context, games repository.GameRepository, cache repository.GameCache, gameID string) (*model.Game, error) {
	cached, err := cache.GetGame(ctx, gameID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Game cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	game, err := loadGame(ctx, games, gameID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetGame(ctx, game); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Game cache write failed")
	}
	return game, nil
}

// saveGame persists game with a version check and refreshes the cache. A
// stale cache entry is evicted rather than left behind.
func saveGame(ctx context.Context, games repository.GameRepository, cache repository.GameCache, game *model.Game, expected int64) error {
	if err := games.Save(ctx, game, expected); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			log.Debug().Str("gameId", game.ID).Int64("version", expected).Msg("Game save lost a version race")
			if derr := cache.DeleteGame(ctx, game.ID); derr != nil {
				log.Warn().Err(derr).Str("gameId", game.ID).Msg("Game cache evict failed")
			}
		}
		return err
	}
	if err := cache.SetGame(ctx, game); err != nil {
		log.Warn().Err(err).Str("gameId", game.ID).Msg("Game cache write failed")
	}
	return nil
}
