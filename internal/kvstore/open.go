package kvstore

import (
	"context"
	"fmt"
	"io"

	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/redis/go-redis/v9"
)

// Open builds the Store selected by cfg.Driver. The returned closer releases
// any connection the driver holds and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, io.Closer, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), nopCloser{}, nil
	case "", "file":
		return NewFile(cfg.Path), nopCloser{}, nil
	case "sqlite":
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			ReadTimeout:  cfg.Redis.Timeout,
			WriteTimeout: cfg.Redis.Timeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(client, cfg.Redis.Prefix), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
