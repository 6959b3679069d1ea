package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

// ContractRepository сохраняет контракт с проверкой версии:
// если версия в хранилище не совпадает с contract.Version, возвращается CONFLICT.
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)
	FindByProjectID(ctx context.Context, projectID uuid.UUID) (*entity.Contract, error)
	FindByParty(ctx context.Context, userID uuid.UUID) ([]*entity.Contract, error)
	Update(ctx context.Context, contract *entity.Contract) error
	// CommitPayment сохраняет контракт и запись о платеже в одной транзакции.
	CommitPayment(ctx context.Context, contract *entity.Contract, confirmation *entity.PaymentConfirmation) error
	// CommitCompletion завершает контракт и связанный проект в одной транзакции.
	CommitCompletion(ctx context.Context, contract *entity.Contract, project *entity.Project) error
	FindPaymentConfirmation(ctx context.Context, contractID uuid.UUID, key string) (*entity.PaymentConfirmation, error)
	// FindConfirmationByIntent возвращает nil, nil, если намерение ещё не учтено ни под одним ключом.
	FindConfirmationByIntent(ctx context.Context, intentID uuid.UUID) (*entity.PaymentConfirmation, error)
}
