package metrics

import (
	"context"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
)

// Notifier считает события перед передачей их дальше.
type Notifier struct {
	next repository.Notifier
}

func NewNotifier(next repository.Notifier) *Notifier {
	return &Notifier{next: next}
}

func (n *Notifier) Notify(ctx context.Context, notification entity.Notification) error {
	IncrementLifecycleEvent(notification.Event)
	if notification.Event == entity.EventPaymentConfirmed {
		if amount, ok := notification.Payload["amount"].(float64); ok {
			AddConfirmedPayment(amount)
		}
	}

	if n.next == nil {
		return nil
	}
	err := n.next.Notify(ctx, notification)
	if err != nil {
		NotificationFailures.WithLabelValues(notification.Event).Inc()
	}
	return err
}
