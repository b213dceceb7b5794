package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/7Lumine/whitelistbot/internal/domain"
)

const redisPlayersKey = "whitelist:players"

// redisEntry es la forma JSON de cada elemento de la lista.
type redisEntry struct {
	Identity     string `json:"identity"`
	AccountID    string `json:"account_id,omitempty"`
	RegisteredAt string `json:"registered_at,omitempty"`
	Alternate    bool   `json:"alternate,omitempty"`
}

// RedisStore guarda la whitelist como una lista de JSON en orden de inserción.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient usa un cliente existente (tests).
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: redisPlayersKey}
}

func (s *RedisStore) Load(ctx context.Context) ([]domain.Entry, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load: %w", err)
	}
	out := make([]domain.Entry, 0, len(items))
	for i, raw := range items {
		var re redisEntry
		if err := json.Unmarshal([]byte(raw), &re); err != nil {
			return nil, fmt.Errorf("redis load: item %d: %w", i, err)
		}
		e := domain.Entry{Identity: re.Identity, AccountID: re.AccountID, RegisteredAt: re.RegisteredAt}
		if re.Alternate {
			e.Namespace = domain.Alternate
		}
		out = append(out, e)
	}
	return out, nil
}

// Save reemplaza la lista en un MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, entries []domain.Entry) error {
	values := make([]any, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(redisEntry{
			Identity:     e.Identity,
			AccountID:    e.AccountID,
			RegisteredAt: e.RegisteredAt,
			Alternate:    e.Alternate(),
		})
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.RPush(ctx, s.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
