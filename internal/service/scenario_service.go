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
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrNameRequired     = errors.New("name is required")
	ErrNotCreator       = errors.New("only the creator can do that")
)

// ScenarioInput carries the editable fields of a scenario.
type ScenarioInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	hexwar.Scenario
}

// ScenarioService manages stored scenarios.
type ScenarioService struct {
	repo repository.ScenarioRepository
}

// NewScenarioService creates a ScenarioService.
func NewScenarioService(repo repository.ScenarioRepository) *ScenarioService {
	return &ScenarioService{repo: repo}
}

// prepare validates the input and fills every grid cell.
func prepare(in ScenarioInput) (*model.Scenario, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	layout := in.Scenario.Clone()
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := layout.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return &model.Scenario{Name: name, Description: in.Description, Scenario: *layout}, nil
}

// CreateScenario validates and stores a new scenario.
func (s *ScenarioService) CreateScenario(ctx context.Context, creatorID string, in ScenarioInput) (*model.Scenario, error) {
	sc, err := prepare(in)
	if err != nil {
		return nil, err
	}
	sc.CreatorID = creatorID
	created, err := s.repo.Create(ctx, sc)
	if err != nil {
		return nil, err
	}
	log.Info().Str("scenarioId", created.ID).Str("userId", creatorID).
		Int("columns", created.Columns).Int("rows", created.Rows).Int("units", len(created.Units)).
		Msg("Scenario created")
	return created, nil
}

// GetScenario returns a scenario with its full map.
func (s *ScenarioService) GetScenario(ctx context.Context, id string) (*model.Scenario, error) {
	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrScenarioNotFound
	}
	return sc, nil
}

// ListScenarios returns scenario summaries.
func (s *ScenarioService) ListScenarios(ctx context.Context) ([]model.Scenario, error) {
	return s.repo.List(ctx)
}

// UpdateScenario replaces a scenario's contents. Games already created from
// it keep their own snapshot.
func (s *ScenarioService) UpdateScenario(ctx context.Context, id, userID string, in ScenarioInput) (*model.Scenario, error) {
	cur, err := s.GetScenario(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.CreatorID != userID {
		return nil, ErrNotCreator
	}
	sc, err := prepare(in)
	if err != nil {
		return nil, err
	}
	sc.ID = cur.ID
	sc.CreatorID = cur.CreatorID
	sc.CreatedAt = cur.CreatedAt
	if err := s.repo.Update(ctx, sc); err != nil {
		return nil, err
	}
	log.Info().Str("scenarioId", id).Str("userId", userID).Msg("Scenario updated")
	return sc, nil
}

// DeleteScenario removes a scenario owned by userID.
func (s *ScenarioService) DeleteScenario(ctx context.Context, id, userID string) error {
	cur, err := s.GetScenario(ctx, id)
	if err != nil {
		return err
	}
	if cur.CreatorID != userID {
		return ErrNotCreator
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("scenarioId", id).Str("userId", userID).Msg("Scenario deleted")
	return nil
}
