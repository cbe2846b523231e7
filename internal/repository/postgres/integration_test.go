//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/repository"
	"github.com/freeeve/hexwar/internal/testutil"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

func setup(t *testing.T) *sql.DB {
	t.Helper()
	db := testutil.SetupDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	testutil.CleanupDB(t, db)
	return db
}

func testGame(player1 string) *model.Game {
	s := hexwar.NewScenario(4, 4)
	s.Hexes[5].Terrain = hexwar.Forest
	s.Units = []hexwar.Unit{
		{ID: "p1-inf", Player: hexwar.Player1, CombatStrength: 3, MovementAllowance: 3, Arm: hexwar.Infantry},
		{ID: "p2-cav", Player: hexwar.Player2, CombatStrength: 2, MovementAllowance: 4, Arm: hexwar.Cavalry, Column: 3, Row: 3},
	}
	return &model.Game{
		Name:       "pg game",
		ScenarioID: "scenario-1",
		CreatorID:  player1,
		Player1ID:  player1,
		Status:     model.GameWaiting,
		Scenario:   s,
		State:      hexwar.NewGameState(s),
	}
}

// --- GameRepo Tests ---

func TestGameCreateAndFind(t *testing.T) {
	repo := NewGameRepo(setup(t))
	ctx := context.Background()

	g, err := repo.Create(ctx, testGame("alice"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.ID == "" || g.Version != 1 || g.CreatedAt.IsZero() {
		t.Fatalf("unexpected created game %+v", g)
	}

	found, err := repo.FindByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatal("expected game")
	}
	if found.Scenario.Hexes[5].Terrain != hexwar.Forest {
		t.Errorf("snapshot terrain lost: %s", found.Scenario.Hexes[5].Terrain)
	}
	if u := found.State.UnitByID("p2-cav"); u == nil || u.Status != hexwar.StatusUnavailable {
		t.Errorf("unexpected state unit %+v", u)
	}
}

func TestGameFindMissing(t *testing.T) {
	repo := NewGameRepo(setup(t))
	g, err := repo.FindByID(context.Background(), "missing")
	if err != nil || g != nil {
		t.Fatalf("expected nil, nil; got %v, %v", g, err)
	}
}

func TestGameSaveCompareAndSwap(t *testing.T) {
	repo := NewGameRepo(setup(t))
	ctx := context.Background()
	g, _ := repo.Create(ctx, testGame("alice"))

	g.Player2ID = "bob"
	g.Status = model.GameActive
	if err := repo.Save(ctx, g, 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if g.Version != 2 {
		t.Fatalf("expected version 2, got %d", g.Version)
	}

	stale := *g
	stale.Winner = hexwar.Player2
	if err := repo.Save(ctx, &stale, 1); !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	found, _ := repo.FindByID(ctx, g.ID)
	if found.Winner != hexwar.NoPlayer || found.Player2ID != "bob" {
		t.Errorf("unexpected stored game %+v", found)
	}
}

func TestGameListOpenAndByUser(t *testing.T) {
	repo := NewGameRepo(setup(t))
	ctx := context.Background()

	open, _ := repo.Create(ctx, testGame("alice"))
	active := testGame("carol")
	active.Player2ID = "alice"
	active.Status = model.GameActive
	active, _ = repo.Create(ctx, active)

	games, err := repo.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(games) != 1 || games[0].ID != open.ID {
		t.Fatalf("expected 1 open game, got %d", len(games))
	}

	games, err = repo.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for alice, got %d", len(games))
	}

	if err := repo.Delete(ctx, active.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	games, _ = repo.ListByUser(ctx, "carol")
	if len(games) != 0 {
		t.Fatalf("expected no games for carol, got %d", len(games))
	}
}

// --- ScenarioRepo Tests ---

func TestScenarioCRUD(t *testing.T) {
	repo := NewScenarioRepo(setup(t))
	ctx := context.Background()

	s, err := repo.Create(ctx, &model.Scenario{Name: "hills", CreatorID: "alice", Scenario: *hexwar.NewScenario(6, 5)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Columns != 6 || list[0].Rows != 5 {
		t.Fatalf("unexpected list %+v", list)
	}

	s.Description = "rolling hills"
	s.Hexes[0].Terrain = hexwar.Mountain
	if err := repo.Update(ctx, s); err != nil {
		t.Fatalf("update: %v", err)
	}
	found, err := repo.FindByID(ctx, s.ID)
	if err != nil || found == nil {
		t.Fatalf("find: %v, %v", found, err)
	}
	if found.Description != "rolling hills" || found.Hexes[0].Terrain != hexwar.Mountain {
		t.Errorf("update not stored: %+v", found)
	}

	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found, _ := repo.FindByID(ctx, s.ID); found != nil {
		t.Fatal("expected scenario to be deleted")
	}
}
