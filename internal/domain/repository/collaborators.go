package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

// UserDirectory отдаёт публичные поля пользователей. Пользователями управляет внешний сервис.
type UserDirectory interface {
	FindPublicByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.PublicUser, error)
}

type ChargeMetadata struct {
	ContractID uuid.UUID
	ClientID   uuid.UUID
}

// PaymentGateway описывает внешний платёжный сервис.
type PaymentGateway interface {
	RecordCharge(ctx context.Context, amount float64, metadata ChargeMetadata) (*entity.PaymentIntent, error)
	FindIntent(ctx context.Context, intentID uuid.UUID) (*entity.PaymentIntent, error)
	// Capture подтверждает списание. Повторный вызов для того же намерения возвращает тот же чек.
	Capture(ctx context.Context, intentID uuid.UUID) (*entity.PaymentReceipt, error)
}

type Notifier interface {
	Notify(ctx context.Context, notification entity.Notification) error
}
