package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redisclient "github.com/richxcame/secureverify/pkg/redis"
)

const scanBatch = 100

// RedisStore keeps blobs in Redis, one string key per user
type RedisStore struct {
	client *redisclient.Client
	keys   keyer
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl keeps records forever.
func NewRedisStore(client *redisclient.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, keys: newKeyer(prefix), ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	data, err := s.client.GetBytes(ctx, s.keys.key(userID))
	if errors.Is(err, redisclient.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("load", userID, err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, userID uuid.UUID, blob []byte) error {
	if err := s.client.SetWithExpiration(ctx, s.keys.key(userID), string(blob), s.ttl); err != nil {
		return wrap("save", userID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Delete(ctx, s.keys.key(userID)); err != nil {
		return wrap("delete", userID, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) (map[uuid.UUID][]byte, error) {
	keys, err := s.client.ScanKeys(ctx, s.keys.pattern(), scanBatch)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]byte, len(keys))
	for _, key := range keys {
		id, ok := s.keys.parse(key)
		if !ok {
			continue
		}
		data, err := s.client.GetBytes(ctx, key)
		if errors.Is(err, redisclient.ErrKeyNotFound) {
			// expired between SCAN and GET
			continue
		}
		if err != nil {
			return nil, wrap("list", id, err)
		}
		out[id] = data
	}
	return out, nil
}
