package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
)

// Send доставляет уведомления после фиксации изменений.
// Ошибки доставки только логируются: состояние уже сохранено.
func Send(ctx context.Context, notifier repository.Notifier, notifications ...entity.Notification) {
	if notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, n := range notifications {
		if err := notifier.Notify(ctx, n); err != nil {
			logger.WithFields(logrus.Fields{
				"event":   n.Event,
				"user_id": n.UserID,
				"error":   err.Error(),
			}).Warn("notify: не удалось доставить уведомление")
		}
	}
}
