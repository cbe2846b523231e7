package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
)

const gameColumns = `id, name, scenario_id, creator_id, player1_id, player2_id, status, winner,
	scenario, state, version, created_at, updated_at`

// GameRepo handles game database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var g model.Game
	var scenario, state []byte
	err := row.Scan(&g.ID, &g.Name, &g.ScenarioID, &g.CreatorID, &g.Player1ID, &g.Player2ID, &g.Status, &g.Winner,
		&scenario, &state, &g.Version, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scenario, &g.Scenario); err != nil {
		return nil, fmt.Errorf("decode scenario snapshot of game %s: %w", g.ID, err)
	}
	if err := json.Unmarshal(state, &g.State); err != nil {
		return nil, fmt.Errorf("decode state of game %s: %w", g.ID, err)
	}
	return &g, nil
}

func encodeGame(g *model.Game) (scenario, state []byte, err error) {
	scenario, err = json.Marshal(g.Scenario)
	if err != nil {
		return nil, nil, fmt.Errorf("encode scenario snapshot: %w", err)
	}
	state, err = json.Marshal(g.State)
	if err != nil {
		return nil, nil, fmt.Errorf("encode game state: %w", err)
	}
	return scenario, state, nil
}

// Create inserts a new game at version 1.
func (r *GameRepo) Create(ctx context.Context, g *model.Game) (*model.Game, error) {
	scenario, state, err := encodeGame(g)
	if err != nil {
		return nil, err
	}
	out := g.Clone()
	out.ID = uuid.NewString()
	out.Version = 1
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO games (id, name, scenario_id, creator_id, player1_id, player2_id, status, winner, scenario, state, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at, updated_at`,
		out.ID, out.Name, out.ScenarioID, out.CreatorID, out.Player1ID, out.Player2ID, out.Status, out.Winner,
		scenario, state, out.Version,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return out, nil
}

// FindByID returns a game by ID, or nil if it does not exist.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	return g, nil
}

// Save overwrites the game if its stored version still equals expectedVersion.
func (r *GameRepo) Save(ctx context.Context, g *model.Game, expectedVersion int64) error {
	scenario, state, err := encodeGame(g)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx,
		`UPDATE games
		 SET name = $1, player1_id = $2, player2_id = $3, status = $4, winner = $5,
		     scenario = $6, state = $7, version = version + 1, updated_at = now()
		 WHERE id = $8 AND version = $9
		 RETURNING version, updated_at`,
		g.Name, g.Player1ID, g.Player2ID, g.Status, g.Winner, scenario, state, g.ID, expectedVersion,
	).Scan(&g.Version, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// ListOpen returns games waiting for a second player.
func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	return r.list(ctx, "list open games",
		`SELECT `+gameColumns+` FROM games WHERE status = 'waiting' ORDER BY created_at DESC LIMIT 50`)
}

// ListByUser returns all games a user is seated in.
func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	return r.list(ctx, "list user games",
		`SELECT `+gameColumns+` FROM games WHERE player1_id = $1 OR player2_id = $1
		 ORDER BY created_at DESC LIMIT 50`, userID)
}

func (r *GameRepo) list(ctx context.Context, op, query string, args ...any) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// Delete removes a game.
func (r *GameRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
