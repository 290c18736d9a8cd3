package sessionstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps blobs in process memory with an optional expiry
type MemoryStore struct {
	cache *cache.Cache
	keys  keyer
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps records forever.
func NewMemoryStore(prefix string, ttl time.Duration) *MemoryStore {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}
	return &MemoryStore{
		cache: cache.New(expiration, cleanup),
		keys:  newKeyer(prefix),
	}
}

func (s *MemoryStore) Load(_ context.Context, userID uuid.UUID) ([]byte, error) {
	v, ok := s.cache.Get(s.keys.key(userID))
	if !ok {
		return nil, ErrNotFound
	}
	return copyBlob(v.([]byte)), nil
}

func (s *MemoryStore) Save(_ context.Context, userID uuid.UUID, blob []byte) error {
	s.cache.Set(s.keys.key(userID), copyBlob(blob), cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.cache.Delete(s.keys.key(userID))
	return nil
}

func (s *MemoryStore) List(_ context.Context) (map[uuid.UUID][]byte, error) {
	items := s.cache.Items()
	out := make(map[uuid.UUID][]byte, len(items))
	for key, item := range items {
		id, ok := s.keys.parse(key)
		if !ok {
			continue
		}
		out[id] = copyBlob(item.Object.([]byte))
	}
	return out, nil
}
