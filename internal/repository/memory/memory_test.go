package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

func newGame() *model.Game {
	s := hexwar.NewScenario(3, 3)
	s.Units = []hexwar.Unit{{ID: "a", Player: hexwar.Player1, MovementAllowance: 2, Arm: hexwar.Infantry}}
	return &model.Game{
		Name:      "test",
		CreatorID: "alice",
		Player1ID: "alice",
		Status:    model.GameWaiting,
		Scenario:  s,
		State:     hexwar.NewGameState(s),
	}
}

func TestGameRepoCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepo()

	g, err := repo.Create(ctx, newGame())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.ID == "" || g.Version != 1 {
		t.Fatalf("expected id and version 1, got %q v%d", g.ID, g.Version)
	}

	found, err := repo.FindByID(ctx, g.ID)
	if err != nil || found == nil {
		t.Fatalf("find: %v, %v", found, err)
	}
	if found.Name != "test" || found.State.TurnNumber != 1 {
		t.Errorf("unexpected game %+v", found)
	}

	missing, err := repo.FindByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for a missing game, got %v, %v", missing, err)
	}
}

func TestGameRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepo()
	g, _ := repo.Create(ctx, newGame())

	found, _ := repo.FindByID(ctx, g.ID)
	found.State.Units[0].Column = 2
	found.Scenario.Units[0].Column = 2

	again, _ := repo.FindByID(ctx, g.ID)
	if again.State.Units[0].Column != 0 || again.Scenario.Units[0].Column != 0 {
		t.Error("mutating a returned game changed the stored one")
	}
}

func TestGameRepoSaveVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepo()
	g, _ := repo.Create(ctx, newGame())

	first, _ := repo.FindByID(ctx, g.ID)
	second, _ := repo.FindByID(ctx, g.ID)

	first.State.TurnNumber = 2
	if err := repo.Save(ctx, first, 1); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("expected version 2 after save, got %d", first.Version)
	}

	second.State.TurnNumber = 3
	if err := repo.Save(ctx, second, 1); !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, g.ID)
	if stored.State.TurnNumber != 2 {
		t.Errorf("losing write should not be stored, turn=%d", stored.State.TurnNumber)
	}
}

func TestGameRepoLists(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepo()
	open, _ := repo.Create(ctx, newGame())

	active := newGame()
	active.Player2ID = "bob"
	active.Status = model.GameActive
	active, _ = repo.Create(ctx, active)

	games, _ := repo.ListOpen(ctx)
	if len(games) != 1 || games[0].ID != open.ID {
		t.Errorf("expected only the waiting game, got %d games", len(games))
	}

	games, _ = repo.ListByUser(ctx, "bob")
	if len(games) != 1 || games[0].ID != active.ID {
		t.Errorf("expected bob's game, got %d games", len(games))
	}

	games, _ = repo.ListByUser(ctx, "alice")
	if len(games) != 2 {
		t.Errorf("expected 2 games for alice, got %d", len(games))
	}

	if err := repo.Delete(ctx, open.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if g, _ := repo.FindByID(ctx, open.ID); g != nil {
		t.Error("deleted game still found")
	}
}

func TestScenarioRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewScenarioRepo()

	in := &model.Scenario{Name: "ridge", CreatorID: "alice", Scenario: *hexwar.NewScenario(4, 4)}
	s, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID == "" || len(s.Hexes) != 16 {
		t.Fatalf("unexpected scenario %+v", s)
	}

	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].Hexes != nil || list[0].Columns != 4 {
		t.Errorf("expected one summary without hexes, got %+v", list)
	}

	s.Name = "valley"
	s.Hexes[0].Terrain = hexwar.Forest
	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	found, _ := repo.FindByID(ctx, s.ID)
	if found.Name != "valley" || found.Hexes[0].Terrain != hexwar.Forest {
		t.Errorf("update not stored: %+v", found)
	}

	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found, _ := repo.FindByID(ctx, s.ID); found != nil {
		t.Error("deleted scenario still found")
	}
}
