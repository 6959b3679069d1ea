package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const intentColumns = `id, contract_id, client_id, amount, amount_cents, currency, status, client_secret, created_at, captured_at`

// PaymentLedgerAdapter хранит платёжные намерения в таблице payment_intents
// и выступает платёжным шлюзом, пока внешний провайдер не подключён.
type PaymentLedgerAdapter struct {
	db *sqlx.DB
}

func NewPaymentLedgerAdapter(db *sqlx.DB) *PaymentLedgerAdapter {
	return &PaymentLedgerAdapter{db: db}
}

func (r *PaymentLedgerAdapter) RecordCharge(ctx context.Context, amount float64, metadata repository.ChargeMetadata) (*entity.PaymentIntent, error) {
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

	query := `
		INSERT INTO payment_intents (` + intentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		intent.ID, intent.ContractID, intent.ClientID, intent.Amount, intent.AmountCents,
		intent.Currency, intent.Status, intent.ClientSecret, intent.CreatedAt, intent.CapturedAt,
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать платёжное намерение")
	}
	return intent, nil
}

func (r *PaymentLedgerAdapter) FindIntent(ctx context.Context, intentID uuid.UUID) (*entity.PaymentIntent, error) {
	var intent entity.PaymentIntent
	if err := r.db.GetContext(ctx, &intent, `SELECT `+intentColumns+` FROM payment_intents WHERE id = $1`, intentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrIntentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить платёжное намерение")
	}
	return &intent, nil
}

// Capture идемпотентен: повторный вызов возвращает время первого списания.
func (r *PaymentLedgerAdapter) Capture(ctx context.Context, intentID uuid.UUID) (*entity.PaymentReceipt, error) {
	var row struct {
		ID         uuid.UUID `db:"id"`
		Amount     float64   `db:"amount"`
		CapturedAt time.Time `db:"captured_at"`
	}
	query := `
		UPDATE payment_intents
		SET status = $2, captured_at = COALESCE(captured_at, NOW())
		WHERE id = $1
		RETURNING id, amount, captured_at
	`
	if err := r.db.GetContext(ctx, &row, query, intentID, entity.PaymentIntentCaptured); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrIntentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось подтвердить списание")
	}
	return &entity.PaymentReceipt{IntentID: row.ID, Amount: row.Amount, CapturedAt: row.CapturedAt}, nil
}
