package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/hexwar/internal/model"
)

func gameKey(gameID string) string { return "game:" + gameID }

// SetGame caches the full game JSON.
func (c *Client) SetGame(ctx context.Context, g *model.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	return c.rdb.Set(ctx, gameKey(g.ID), data, c.ttl).Err()
}

// GetGame returns the cached game, or nil on a miss.
func (c *Client) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	data, err := c.rdb.Get(ctx, gameKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached game: %w", err)
	}
	var g model.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode cached game: %w", err)
	}
	return &g, nil
}

// DeleteGame evicts a game from the cache.
func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, gameKey(gameID)).Err()
}
