package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

// Actor — вызывающий пользователь, как его описывает внешний сервис авторизации.
type Actor struct {
	ID   uuid.UUID
	Role valueobject.Role
}

func (a Actor) IsClient() bool {
	return a.Role == valueobject.RoleClient
}

func (a Actor) IsFreelancer() bool {
	return a.Role == valueobject.RoleFreelancer
}

// PublicUser содержит публичные поля пользователя для подстановки в ответы.
type PublicUser struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Role        valueobject.Role
}

type PaymentIntent struct {
	ID           uuid.UUID  `db:"id"`
	ContractID   uuid.UUID  `db:"contract_id"`
	ClientID     uuid.UUID  `db:"client_id"`
	Amount       float64    `db:"amount"`
	AmountCents  int64      `db:"amount_cents"`
	Currency     string     `db:"currency"`
	Status       string     `db:"status"`
	ClientSecret string     `db:"client_secret"`
	CreatedAt    time.Time  `db:"created_at"`
	CapturedAt   *time.Time `db:"captured_at"`
}

const (
	PaymentIntentCreated  = "created"
	PaymentIntentCaptured = "captured"
)

// PaymentReceipt подтверждает, что деньги действительно списаны.
type PaymentReceipt struct {
	IntentID   uuid.UUID
	Amount     float64
	CapturedAt time.Time
}
