package sessionstore

import (
	"errors"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/richxcame/secureverify/pkg/config"
	redisclient "github.com/richxcame/secureverify/pkg/redis"
)

// Backends carries the opened connections a store may use
type Backends struct {
	Redis *redisclient.Client
	Bolt  *bolt.DB
}

// New builds the store selected by cfg.Store. Networked and file backends are
// wrapped with retries and a circuit breaker.
func New(cfg config.SessionConfig, backends Backends) (Store, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return NewMemoryStore(cfg.KeyPrefix, cfg.TTL()), nil
	case config.StoreRedis:
		if backends.Redis == nil {
			return nil, errors.New("sessionstore: redis store selected without a redis client")
		}
		return NewResilientStore(NewRedisStore(backends.Redis, cfg.KeyPrefix, cfg.TTL()), "sessionstore-redis"), nil
	case config.StoreBolt:
		if backends.Bolt == nil {
			return nil, errors.New("sessionstore: bolt store selected without a bolt database")
		}
		return NewResilientStore(NewBoltStore(backends.Bolt, cfg.KeyPrefix), "sessionstore-bolt"), nil
	default:
		return nil, fmt.Errorf("sessionstore: unsupported store %q", cfg.Store)
	}
}
