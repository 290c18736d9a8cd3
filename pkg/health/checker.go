package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/redis/go-redis/v9"
)

// Checker reports the health of one dependency
type Checker func() error

// CheckerConfig holds settings shared by checkers
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default checker settings
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client *redis.Client) Checker {
	return RedisCheckerWithConfig(client, DefaultCheckerConfig())
}

// RedisCheckerWithConfig returns a Redis ping check bounded by config.Timeout
func RedisCheckerWithConfig(client *redis.Client, config CheckerConfig) Checker {
	return func() error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// BoltChecker verifies the bolt file is open and readable
func BoltChecker(db *bolt.DB) Checker {
	return func() error {
		if db == nil {
			return errors.New("bolt database is nil")
		}
		return db.View(func(tx *bolt.Tx) error {
			if tx.DB() == nil {
				return errors.New("bolt database is closed")
			}
			return nil
		})
	}
}

// Connector is anything that can report a live connection
type Connector interface {
	IsConnected() bool
}

// ConnectionChecker fails when the connector reports it is disconnected
func ConnectionChecker(name string, conn Connector) Checker {
	return func() error {
		if conn == nil || !conn.IsConnected() {
			return fmt.Errorf("%s is not connected", name)
		}
		return nil
	}
}

// CompositeChecker runs every checker and joins the failures under name
func CompositeChecker(name string, checkers map[string]Checker) Checker {
	keys := make([]string, 0, len(checkers))
	for k := range checkers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func() error {
		var failures []string
		for _, k := range keys {
			if err := checkers[k](); err != nil {
				failures = append(failures, fmt.Sprintf("%s.%s: %v", name, k, err))
			}
		}
		if len(failures) > 0 {
			return errors.New(strings.Join(failures, "; "))
		}
		return nil
	}
}

// AsyncChecker runs checker in a goroutine and gives up after timeout
func AsyncChecker(checker Checker, timeout time.Duration) Checker {
	return func() error {
		done := make(chan error, 1)
		go func() {
			done <- checker()
		}()

		select {
		case err := <-done:
			return err
		case <-time.After(timeout):
			return fmt.Errorf("health check timeout after %v", timeout)
		}
	}
}

// CachedChecker memoizes a checker's result for cacheTTL
type CachedChecker struct {
	checker   Checker
	cacheTTL  time.Duration
	mu        sync.Mutex
	lastCheck time.Time
	lastErr   error
}

// NewCachedChecker wraps checker with a result cache
func NewCachedChecker(checker Checker, cacheTTL time.Duration) *CachedChecker {
	return &CachedChecker{checker: checker, cacheTTL: cacheTTL}
}

// Check returns the cached result or runs the checker when the cache is stale
func (c *CachedChecker) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastCheck.IsZero() && time.Since(c.lastCheck) < c.cacheTTL {
		return c.lastErr
	}
	c.lastErr = c.checker()
	c.lastCheck = time.Now()
	return c.lastErr
}
