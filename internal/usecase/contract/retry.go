package contract

import (
	"context"
	"errors"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const maxCommitAttempts = 3

// withOptimisticRetry перечитывает контракт и повторяет операцию,
// если версия контракта изменилась между чтением и записью.
func withOptimisticRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !errors.Is(err, apperror.ErrConcurrentUpdate) {
			return err
		}
	}
	return err
}
