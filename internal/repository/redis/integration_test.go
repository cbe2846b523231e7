//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/freeeve/hexwar/internal/model"
	"github.com/freeeve/hexwar/internal/testutil"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

func setup(t *testing.T) (*Client, *goredis.Client) {
	t.Helper()
	rdb := testutil.SetupRedis(t)
	testutil.CleanupRedis(t, rdb)
	return NewClientFromPool(rdb, time.Minute), rdb
}

func TestGameCacheRoundTrip(t *testing.T) {
	c, rdb := setup(t)
	ctx := context.Background()

	s := hexwar.NewScenario(2, 2)
	s.Units = []hexwar.Unit{{ID: "a", Player: hexwar.Player1, Arm: hexwar.Artillery, MovementAllowance: 1}}
	g := &model.Game{ID: "g1", Name: "cached", Status: model.GameActive, Version: 4, Scenario: s, State: hexwar.NewGameState(s)}

	if err := c.SetGame(ctx, g); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.GetGame(ctx, "g1")
	if err != nil || got == nil {
		t.Fatalf("get: %v, %v", got, err)
	}
	if got.Version != 4 || got.State.UnitByID("a") == nil {
		t.Errorf("unexpected cached game %+v", got)
	}

	ttl, err := rdb.TTL(ctx, gameKey("g1")).Result()
	if err != nil || ttl <= 0 {
		t.Errorf("expected a positive TTL, got %v (%v)", ttl, err)
	}

	if err := c.DeleteGame(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := c.GetGame(ctx, "g1"); got != nil {
		t.Error("expected a miss after delete")
	}
}

func TestGameCacheMiss(t *testing.T) {
	c, _ := setup(t)
	got, err := c.GetGame(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for a missing game")
	}
}
