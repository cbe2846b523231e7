package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/freeeve/hexwar/internal/model"
)

// ScenarioRepo handles scenario database operations. The map and unit
// layout are stored together in one JSONB column.
type ScenarioRepo struct {
	db *sql.DB
}

// NewScenarioRepo creates a ScenarioRepo.
func NewScenarioRepo(db *sql.DB) *ScenarioRepo {
	return &ScenarioRepo{db: db}
}

func scanScenario(row rowScanner) (*model.Scenario, error) {
	var s model.Scenario
	var layout []byte
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.CreatorID, &layout, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(layout, &s.Scenario); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", s.ID, err)
	}
	return &s, nil
}

// Create inserts a new scenario and returns it with its ID and timestamps.
func (r *ScenarioRepo) Create(ctx context.Context, s *model.Scenario) (*model.Scenario, error) {
	layout, err := json.Marshal(s.Scenario)
	if err != nil {
		return nil, fmt.Errorf("encode scenario: %w", err)
	}
	out := *s
	out.Scenario = *s.Scenario.Clone()
	out.ID = uuid.NewString()
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO scenarios (id, name, description, creator_id, map)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		out.ID, out.Name, out.Description, out.CreatorID, layout,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create scenario: %w", err)
	}
	return &out, nil
}

// FindByID returns a scenario by ID, or nil if it does not exist.
func (r *ScenarioRepo) FindByID(ctx context.Context, id string) (*model.Scenario, error) {
	s, err := scanScenario(r.db.QueryRowContext(ctx,
		`SELECT id, name, description, creator_id, map, created_at, updated_at FROM scenarios WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find scenario: %w", err)
	}
	return s, nil
}

// List returns every scenario, newest first, without hexes or units.
func (r *ScenarioRepo) List(ctx context.Context) ([]model.Scenario, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, creator_id, (map->>'columns')::int, (map->>'rows')::int, created_at, updated_at
		 FROM scenarios ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []model.Scenario
	for rows.Next() {
		var s model.Scenario
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatorID, &s.Columns, &s.Rows, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

// Update overwrites the scenario's name, description and layout.
func (r *ScenarioRepo) Update(ctx context.Context, s *model.Scenario) error {
	layout, err := json.Marshal(s.Scenario)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`UPDATE scenarios SET name = $1, description = $2, map = $3, updated_at = now()
		 WHERE id = $4 RETURNING updated_at`,
		s.Name, s.Description, layout, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	return nil
}

// Delete removes a scenario. Games keep their own snapshot.
func (r *ScenarioRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}
