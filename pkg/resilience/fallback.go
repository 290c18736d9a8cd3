package resilience

import (
	"context"

	"github.com/richxcame/secureverify/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc decides what a rejected call returns
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback reports ErrCircuitOpen
func NoopFallback(ctx context.Context, err error) (interface{}, error) {
	return nil, ErrCircuitOpen
}

// GracefulDegradation logs the degraded dependency with the caller's correlation id
func GracefulDegradation(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("dependency unavailable, call rejected",
			zap.String("dependency", dependency), zap.Error(err))
		return nil, ErrCircuitOpen
	}
}
