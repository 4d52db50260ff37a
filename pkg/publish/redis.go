package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ikenchina/rootbar/config"
)

// Redis mirrors the status line to a redis server, as a string key, a
// pub/sub message or both.
type Redis struct {
	cli     *redis.Client
	addr    string
	key     string
	channel string
	timeout time.Duration
}

func NewRedis(cfg config.RedisMirrorConfig) *Redis {
	cli := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.UserName,
		Password:     cfg.Password,
		DB:           cfg.Db,
		DialTimeout:  cfg.Timeout(),
		ReadTimeout:  cfg.Timeout(),
		WriteTimeout: cfg.Timeout(),
		MaxRetries:   -1,
	})
	return &Redis{
		cli:     cli,
		addr:    cfg.Address,
		key:     cfg.Key,
		channel: cfg.Channel,
		timeout: cfg.Timeout(),
	}
}

func (r *Redis) Publish(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	pipe := r.cli.Pipeline()
	if r.key != "" {
		pipe.Set(ctx, r.key, text, 0)
	}
	if r.channel != "" {
		pipe.Publish(ctx, r.channel, text)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis(%s) : %w", r.addr, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.cli.Close()
}
