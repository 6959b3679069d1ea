package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventBidPlaced         = "bid.placed"
	EventBidAccepted       = "bid.accepted"
	EventBidRejected       = "bid.rejected"
	EventMilestoneUpdated  = "milestone.updated"
	EventPaymentConfirmed  = "payment.confirmed"
	EventContractCompleted = "contract.completed"
	EventMessageSent       = "message.sent"
)

// Notification — событие жизненного цикла, адресованное одному пользователю.
type Notification struct {
	Event      string
	UserID     uuid.UUID
	Payload    map[string]any
	OccurredAt time.Time
}

func NewNotification(event string, userID uuid.UUID, payload map[string]any) Notification {
	return Notification{
		Event:      event,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}
