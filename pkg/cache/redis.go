package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/grade-calculator-api/pkg/config"
)

const (
	pingTimeout  = 5 * time.Second
	dialTimeout  = 2 * time.Second
	ioTimeout    = 500 * time.Millisecond
	poolTimeout  = time.Second
	minIdleConns = 2
)

// Options maps the configuration onto client options. Cached results are small and
// recomputable, so the timeouts are short and a slow Redis degrades to a miss.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         address(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		PoolTimeout:  poolTimeout,
		MinIdleConns: minIdleConns,
	}
}

// NewRedis returns a client that has answered a ping.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	if err := Pinger(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Pinger returns a check that pings client within pingTimeout.
func Pinger(client redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		return nil
	}
}

func address(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return host + ":" + strconv.Itoa(port)
}
