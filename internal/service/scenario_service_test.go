package service

import (
	"context"
	"errors"
	"testing"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

func TestCreateScenario(t *testing.T) {
	f := newFixture(t)
	in := skirmish()
	in.Hexes = in.Hexes[:3] // sparse input is filled in

	sc, err := f.scenSvc.CreateScenario(context.Background(), "alice", in)
	if err != nil {
		t.Fatalf("CreateScenario: %v", err)
	}
	if sc.ID == "" || sc.CreatorID != "alice" || sc.Name != "Skirmish" {
		t.Errorf("unexpected scenario %+v", sc)
	}
	if len(sc.Hexes) != 25 {
		t.Errorf("expected 25 hexes after normalisation, got %d", len(sc.Hexes))
	}
	for _, u := range sc.Units {
		if u.Status != hexwar.StatusAvailable {
			t.Errorf("unit %s: expected default status available, got %s", u.ID, u.Status)
		}
	}
}

func TestCreateScenarioInvalid(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		mutate func(*ScenarioInput)
		want   error
	}{
		{"no name", func(in *ScenarioInput) { in.Name = "  " }, ErrNameRequired},
		{"unit on water", func(in *ScenarioInput) { in.Units[0].Column, in.Units[0].Row = 2, 2 }, ErrInvalidScenario},
		{"bad rating", func(in *ScenarioInput) { in.Units[0].MovementAllowance = 10 }, ErrInvalidScenario},
		{"too big", func(in *ScenarioInput) { in.Columns = hexwar.MaxGridSize + 1 }, ErrInvalidScenario},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := skirmish()
			tt.mutate(&in)
			_, err := f.scenSvc.CreateScenario(context.Background(), "alice", in)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateAndDeleteScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sc, _ := f.scenSvc.CreateScenario(ctx, "alice", skirmish())

	in := skirmish()
	in.Name = "Skirmish at dawn"
	in.Hexes[0].Terrain = hexwar.Town
	if _, err := f.scenSvc.UpdateScenario(ctx, sc.ID, "bob", in); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
	updated, err := f.scenSvc.UpdateScenario(ctx, sc.ID, "alice", in)
	if err != nil {
		t.Fatalf("UpdateScenario: %v", err)
	}
	if updated.Name != "Skirmish at dawn" || updated.CreatorID != "alice" {
		t.Errorf("unexpected update result %+v", updated)
	}
	got, _ := f.scenSvc.GetScenario(ctx, sc.ID)
	if got.Hexes[0].Terrain != hexwar.Town {
		t.Errorf("update not stored, terrain=%s", got.Hexes[0].Terrain)
	}

	if err := f.scenSvc.DeleteScenario(ctx, sc.ID, "bob"); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
	if err := f.scenSvc.DeleteScenario(ctx, sc.ID, "alice"); err != nil {
		t.Fatalf("DeleteScenario: %v", err)
	}
	if _, err := f.scenSvc.GetScenario(ctx, sc.ID); !errors.Is(err, ErrScenarioNotFound) {
		t.Errorf("expected ErrScenarioNotFound, got %v", err)
	}
}

func TestScenarioEditDoesNotReachGames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sc, _ := f.scenSvc.CreateScenario(ctx, "alice", skirmish())
	g, err := f.gameSvc.CreateGame(ctx, sc.ID, "snapshot", "alice")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	in := skirmish()
	in.Hexes[0].Terrain = hexwar.Mountain
	if _, err := f.scenSvc.UpdateScenario(ctx, sc.ID, "alice", in); err != nil {
		t.Fatalf("UpdateScenario: %v", err)
	}
	if err := f.scenSvc.DeleteScenario(ctx, sc.ID, "alice"); err != nil {
		t.Fatalf("DeleteScenario: %v", err)
	}

	f.cache.games = map[string]*model.Game{}
	got, err := f.gameSvc.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Scenario.Hexes[0].Terrain != hexwar.Clear {
		t.Errorf("game snapshot changed with its scenario: %s", got.Scenario.Hexes[0].Terrain)
	}
}
