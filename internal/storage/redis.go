package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"torrentbot/pkg/logx"
)

const defaultNetTimeout = 5 * time.Second

type redisStore struct {
	cl  *redis.Client
	key string
	log logx.Logger
}

func openRedis(ctx context.Context, cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("redis url is required")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultNetTimeout
	}
	opt.DialTimeout = timeout
	opt.ReadTimeout = timeout
	opt.WriteTimeout = timeout

	cl := redis.NewClient(opt)
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := cl.Ping(pctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisStore(cl, cfg.Key, log), nil
}

func newRedisStore(cl *redis.Client, key string, log logx.Logger) *redisStore {
	if key == "" {
		key = DefaultKey
	}
	return &redisStore{cl: cl, key: key, log: log}
}

func (s *redisStore) Exists(ctx context.Context) (bool, error) {
	n, err := s.cl.Exists(ctx, s.key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) Load(ctx context.Context) (Preferences, error) {
	b, err := s.cl.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return validate(b)
}

func (s *redisStore) Save(ctx context.Context, p Preferences) error {
	data, err := normalize(p)
	if err != nil {
		return err
	}
	if err := s.cl.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.log.Debug("preferences saved", logx.Int("bytes", len(data)))
	return nil
}

func (s *redisStore) Close() error { return s.cl.Close() }
