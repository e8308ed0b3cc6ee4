package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ds124wfegd/ocrsynth/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const healthKey = "ocrsynth:resource_health"

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	logrus.WithField("addr", cfg.Addr).Info("Redis client configured")
	return client
}

func NewHealthRepository(client *redis.Client) HealthRepository {
	return &redisHealthRepository{client: client, key: healthKey}
}

func (r *redisHealthRepository) Load(ctx context.Context) (map[string]int, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load health: %w", err)
	}
	scores := make(map[string]int, len(raw))
	for id, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			logrus.WithField("resource", id).Warnf("Ignoring malformed health score %q", v)
			continue
		}
		scores[id] = n
	}
	return scores, nil
}

func (r *redisHealthRepository) Store(ctx context.Context, scores map[string]int) error {
	if len(scores) == 0 {
		return nil
	}
	values := make(map[string]any, len(scores))
	for id, score := range scores {
		values[id] = score
	}
	if err := r.client.HSet(ctx, r.key, values).Err(); err != nil {
		return fmt.Errorf("store health: %w", err)
	}
	return nil
}
