package database

import (
	"context"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/config"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis opens the Redis connection used for the accrual-job advisory
// lock and the outbound notification queue. Callers may run without Redis
// (nil client) in single-instance deployments.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
