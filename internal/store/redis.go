package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizbook/internal/progress"
)

const redisKeyPrefix = "quizbook:progress:"

// RedisStore keeps each user's progress record under its own Redis key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(username string) string {
	return redisKeyPrefix + username
}

func (s *RedisStore) Load(ctx context.Context, username string) (*progress.Progress, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	p, err := progress.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode progress for %q: %w", username, err)
	}
	return p, nil
}

func (s *RedisStore) Save(ctx context.Context, username string, p *progress.Progress) error {
	if err := checkUsername(username); err != nil {
		return err
	}

	data, err := progress.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(username), data, 0).Err(); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, username string) error {
	if err := checkUsername(username); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Usernames(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan progress keys: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
