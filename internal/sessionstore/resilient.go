package sessionstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/resilience"
)

// ResilientStore retries transient backend failures behind a circuit breaker
type ResilientStore struct {
	next    Store
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewResilientStore wraps next. ErrNotFound is never retried or counted as a failure.
func NewResilientStore(next Store, name string) *ResilientStore {
	retry := resilience.StoreRetryConfig()
	retry.RetryableChecker = func(err error) bool {
		return !errors.Is(err, ErrNotFound)
	}
	return &ResilientStore{
		next:    next,
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(resilience.BuildSettings(name, 60, 15, 5, 1), resilience.GracefulDegradation(name)),
	}
}

func (s *ResilientStore) Load(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var notFound bool
	result, err := resilience.RetryWithBreaker(ctx, s.retry, s.breaker, func(ctx context.Context) (interface{}, error) {
		blob, err := s.next.Load(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			notFound = true
			return nil, nil
		}
		return blob, err
	})
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, ErrNotFound
	}
	blob, _ := result.([]byte)
	return blob, nil
}

func (s *ResilientStore) Save(ctx context.Context, userID uuid.UUID, blob []byte) error {
	_, err := resilience.RetryWithBreaker(ctx, s.retry, s.breaker, func(ctx context.Context) (interface{}, error) {
		return nil, s.next.Save(ctx, userID, blob)
	})
	return err
}

func (s *ResilientStore) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := resilience.RetryWithBreaker(ctx, s.retry, s.breaker, func(ctx context.Context) (interface{}, error) {
		return nil, s.next.Delete(ctx, userID)
	})
	return err
}

func (s *ResilientStore) List(ctx context.Context) (map[uuid.UUID][]byte, error) {
	result, err := resilience.RetryWithBreaker(ctx, s.retry, s.breaker, func(ctx context.Context) (interface{}, error) {
		return s.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	blobs, _ := result.(map[uuid.UUID][]byte)
	return blobs, nil
}
