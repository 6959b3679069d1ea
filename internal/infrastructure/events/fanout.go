package events

import (
	"context"
	"errors"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
)

// Fanout рассылает уведомление всем получателям. Ошибка одного не мешает остальным.
type Fanout []repository.Notifier

func (f Fanout) Notify(ctx context.Context, n entity.Notification) error {
	var errs []error
	for _, notifier := range f {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
