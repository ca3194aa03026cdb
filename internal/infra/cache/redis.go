package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/marketinghub/internal/entity"
)

// Client guarda métricas de campanha no Redis, serializadas em JSON.
type Client struct {
	Redis *redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	return &Client{Redis: client}, nil
}

func (c *Client) Close() error {
	return c.Redis.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}

// Get devolve miss como (nil, false, nil).
func (c *Client) Get(ctx context.Context, key string) ([]entity.CampaignMetric, bool, error) {
	raw, err := c.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rows []entity.CampaignMetric
	if err := json.Unmarshal(raw, &rows); err != nil {
		// Entrada corrompida conta como miss.
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *Client) Set(ctx context.Context, key string, rows []entity.CampaignMetric, ttl time.Duration) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding campaign rows: %w", err)
	}
	return c.Redis.Set(ctx, key, raw, ttl).Err()
}
