// Package sqlite stores scenarios and games in a single SQLite file, for
// single-node and local runs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	creator_id  TEXT NOT NULL,
	grid_columns INTEGER NOT NULL,
	grid_rows    INTEGER NOT NULL,
	map_json    TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	scenario_id   TEXT NOT NULL,
	creator_id    TEXT NOT NULL,
	player1_id    TEXT NOT NULL,
	player2_id    TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	winner        INTEGER NOT NULL DEFAULT 0,
	scenario_json TEXT NOT NULL,
	state_json    TEXT NOT NULL,
	version       INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_status ON games(status, created_at);
CREATE INDEX IF NOT EXISTS idx_games_player1 ON games(player1_id);
CREATE INDEX IF NOT EXISTS idx_games_player2 ON games(player2_id);
`

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Games returns a repository.GameRepository backed by db.
func (db *DB) Games() *GameRepo {
	return &GameRepo{db: db.conn, now: time.Now}
}

// Scenarios returns a repository.ScenarioRepository backed by db.
func (db *DB) Scenarios() *ScenarioRepo {
	return &ScenarioRepo{db: db.conn, now: time.Now}
}

type gameRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	ScenarioID   string `db:"scenario_id"`
	CreatorID    string `db:"creator_id"`
	Player1ID    string `db:"player1_id"`
	Player2ID    string `db:"player2_id"`
	Status       string `db:"status"`
	Winner       int    `db:"winner"`
	ScenarioJSON string `db:"scenario_json"`
	StateJSON    string `db:"state_json"`
	Version      int64  `db:"version"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func toGameRow(g *model.Game) (*gameRow, error) {
	scenario, err := json.Marshal(g.Scenario)
	if err != nil {
		return nil, fmt.Errorf("encode scenario snapshot: %w", err)
	}
	state, err := json.Marshal(g.State)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return &gameRow{
		ID:           g.ID,
		Name:         g.Name,
		ScenarioID:   g.ScenarioID,
		CreatorID:    g.CreatorID,
		Player1ID:    g.Player1ID,
		Player2ID:    g.Player2ID,
		Status:       g.Status,
		Winner:       int(g.Winner),
		ScenarioJSON: string(scenario),
		StateJSON:    string(state),
		Version:      g.Version,
		CreatedAt:    g.CreatedAt.UnixMilli(),
		UpdatedAt:    g.UpdatedAt.UnixMilli(),
	}, nil
}

func (r *gameRow) toGame() (*model.Game, error) {
	g := &model.Game{
		ID:         r.ID,
		Name:       r.Name,
		ScenarioID: r.ScenarioID,
		CreatorID:  r.CreatorID,
		Player1ID:  r.Player1ID,
		Player2ID:  r.Player2ID,
		Status:     r.Status,
		Winner:     hexwar.Player(r.Winner),
		Version:    r.Version,
		CreatedAt:  time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:  time.UnixMilli(r.UpdatedAt).UTC(),
	}
	if err := json.Unmarshal([]byte(r.ScenarioJSON), &g.Scenario); err != nil {
		return nil, fmt.Errorf("decode scenario snapshot of game %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.StateJSON), &g.State); err != nil {
		return nil, fmt.Errorf("decode state of game %s: %w", r.ID, err)
	}
	return g, nil
}

// GameRepo handles game storage.
type GameRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func (r *GameRepo) Create(ctx context.Context, g *model.Game) (*model.Game, error) {
	out := g.Clone()
	out.ID = uuid.NewString()
	out.Version = 1
	out.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	out.UpdatedAt = out.CreatedAt
	row, err := toGameRow(out)
	if err != nil {
		return nil, err
	}
	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO games (id, name, scenario_id, creator_id, player1_id, player2_id, status, winner,
		                    scenario_json, state_json, version, created_at, updated_at)
		 VALUES (:id, :name, :scenario_id, :creator_id, :player1_id, :player2_id, :status, :winner,
		         :scenario_json, :state_json, :version, :created_at, :updated_at)`, row)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return out, nil
}

func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var row gameRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM games WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	return row.toGame()
}

func (r *GameRepo) Save(ctx context.Context, g *model.Game, expectedVersion int64) error {
	next := *g
	next.Version = expectedVersion + 1
	next.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	row, err := toGameRow(&next)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE games
		 SET name = ?, player1_id = ?, player2_id = ?, status = ?, winner = ?,
		     scenario_json = ?, state_json = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		row.Name, row.Player1ID, row.Player2ID, row.Status, row.Winner,
		row.ScenarioJSON, row.StateJSON, row.Version, row.UpdatedAt,
		row.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	if n == 0 {
		return repository.ErrVersionConflict
	}
	g.Version = next.Version
	g.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	return r.list(ctx, `SELECT * FROM games WHERE status = ? ORDER BY created_at DESC LIMIT 50`, model.GameWaiting)
}

func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	return r.list(ctx, `SELECT * FROM games WHERE player1_id = ? OR player2_id = ? ORDER BY created_at DESC LIMIT 50`,
		userID, userID)
}

func (r *GameRepo) list(ctx context.Context, query string, args ...any) ([]model.Game, error) {
	var rows []gameRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	games := make([]model.Game, 0, len(rows))
	for i := range rows {
		g, err := rows[i].toGame()
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, nil
}

func (r *GameRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

type scenarioRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreatorID   string `db:"creator_id"`
	Columns     int    `db:"grid_columns"`
	Rows        int    `db:"grid_rows"`
	MapJSON     string `db:"map_json"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r *scenarioRow) toScenario(withMap bool) (*model.Scenario, error) {
	s := &model.Scenario{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatorID:   r.CreatorID,
		CreatedAt:   time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(r.UpdatedAt).UTC(),
	}
	if withMap {
		if err := json.Unmarshal([]byte(r.MapJSON), &s.Scenario); err != nil {
			return nil, fmt.Errorf("decode scenario %s: %w", r.ID, err)
		}
	}
	s.Columns = r.Columns
	s.Rows = r.Rows
	return s, nil
}

// ScenarioRepo handles scenario storage.
type ScenarioRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func (r *ScenarioRepo) Create(ctx context.Context, s *model.Scenario) (*model.Scenario, error) {
	layout, err := json.Marshal(s.Scenario)
	if err != nil {
		return nil, fmt.Errorf("encode scenario: %w", err)
	}
	out := *s
	out.Scenario = *s.Scenario.Clone()
	out.ID = uuid.NewString()
	out.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	out.UpdatedAt = out.CreatedAt
	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO scenarios (id, name, description, creator_id, grid_columns, grid_rows, map_json, created_at, updated_at)
		 VALUES (:id, :name, :description, :creator_id, :grid_columns, :grid_rows, :map_json, :created_at, :updated_at)`,
		&scenarioRow{
			ID:          out.ID,
			Name:        out.Name,
			Description: out.Description,
			CreatorID:   out.CreatorID,
			Columns:     out.Columns,
			Rows:        out.Rows,
			MapJSON:     string(layout),
			CreatedAt:   out.CreatedAt.UnixMilli(),
			UpdatedAt:   out.UpdatedAt.UnixMilli(),
		})
	if err != nil {
		return nil, fmt.Errorf("create scenario: %w", err)
	}
	return &out, nil
}

func (r *ScenarioRepo) FindByID(ctx context.Context, id string) (*model.Scenario, error) {
	var row scenarioRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM scenarios WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find scenario: %w", err)
	}
	return row.toScenario(true)
}

// List returns scenario summaries without hexes or units, newest first.
func (r *ScenarioRepo) List(ctx context.Context) ([]model.Scenario, error) {
	var rows []scenarioRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, description, creator_id, grid_columns, grid_rows, '' AS map_json, created_at, updated_at
		 FROM scenarios ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	out := make([]model.Scenario, 0, len(rows))
	for i := range rows {
		s, _ := rows[i].toScenario(false)
		out = append(out, *s)
	}
	return out, nil
}

func (r *ScenarioRepo) Update(ctx context.Context, s *model.Scenario) error {
	layout, err := json.Marshal(s.Scenario)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	s.UpdatedAt = r.now().UTC().Truncate(time.Millisecond)
	_, err = r.db.ExecContext(ctx,
		`UPDATE scenarios SET name = ?, description = ?, grid_columns = ?, grid_rows = ?, map_json = ?, updated_at = ?
		 WHERE id = ?`,
		s.Name, s.Description, s.Columns, s.Rows, string(layout), s.UpdatedAt.UnixMilli(), s.ID)
	if err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	return nil
}

func (r *ScenarioRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}
