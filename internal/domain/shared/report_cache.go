package shared

import (
	"context"
	"time"
)

// ReportCache stores computed reports keyed by their query parameters
type ReportCache interface {
	// Get decodes the cached value for key into dest.
	// It returns false without error on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Close releases the cache's resources
	Close() error
}
