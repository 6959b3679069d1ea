package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// PaymentLedger ведёт внутренний реестр платёжных намерений, заменяющий внешний шлюз.
type PaymentLedger struct{ s *Store }

func (l *PaymentLedger) RecordCharge(ctx context.Context, amount float64, metadata repository.ChargeMetadata) (*entity.PaymentIntent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	id := uuid.New()
	intent := &entity.PaymentIntent{
		ID:           id,
		ContractID:   metadata.ContractID,
		ClientID:     metadata.ClientID,
		Amount:       amount,
		AmountCents:  valueobject.ToCents(amount),
		Currency:     "usd",
		Status:       entity.PaymentIntentCreated,
		ClientSecret: "pi_" + id.String() + "_secret_" + uuid.NewString(),
		CreatedAt:    time.Now(),
	}
	l.s.intents[id] = intent

	cp := *intent
	return &cp, nil
}

func (l *PaymentLedger) FindIntent(ctx context.Context, intentID uuid.UUID) (*entity.PaymentIntent, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	intent, ok := l.s.intents[intentID]
	if !ok {
		return nil, apperror.ErrIntentNotFound
	}
	cp := *intent
	return &cp, nil
}

func (l *PaymentLedger) Capture(ctx context.Context, intentID uuid.UUID) (*entity.PaymentReceipt, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	intent, ok := l.s.intents[intentID]
	if !ok {
		return nil, apperror.ErrIntentNotFound
	}
	if intent.Status != entity.PaymentIntentCaptured {
		now := time.Now()
		intent.Status = entity.PaymentIntentCaptured
		intent.CapturedAt = &now
	}
	return &entity.PaymentReceipt{
		IntentID:   intent.ID,
		Amount:     intent.Amount,
		CapturedAt: *intent.CapturedAt,
	}, nil
}
