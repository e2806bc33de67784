package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surreal-sync/utils/logger"
)

// Retry runs fn up to attempts times, sleeping delay between each
// failure, and gives up early if ctx is done. It returns the last
// error, wrapped with the attempt count, if every attempt failed.
func Retry(ctx context.Context, attempts int, delay time.Duration, op string, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		logger.Warnf("%s: attempt %d/%d failed: %v", op, i+1, attempts, err)
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, err)
}
