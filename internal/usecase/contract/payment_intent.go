package contract

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type CreatePaymentIntentUseCase struct {
	contractRepo repository.ContractRepository
	gateway      repository.PaymentGateway
}

func NewCreatePaymentIntentUseCase(contractRepo repository.ContractRepository, gateway repository.PaymentGateway) *CreatePaymentIntentUseCase {
	return &CreatePaymentIntentUseCase{contractRepo: contractRepo, gateway: gateway}
}

func (uc *CreatePaymentIntentUseCase) Execute(ctx context.Context, contractID, clientID uuid.UUID, amount float64) (*entity.PaymentIntent, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperror.Validation(map[string]string{"amount": "сумма платежа должна быть положительной"})
	}

	contract, err := uc.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsClient(clientID) {
		return nil, apperror.ErrForbidden
	}
	if contract.Status == valueobject.ContractStatusCancelled {
		return nil, apperror.ErrContractNotActive
	}
	if uc.gateway == nil {
		return nil, apperror.ErrPaymentUnavailable
	}

	intent, err := uc.gateway.RecordCharge(ctx, valueobject.RoundCents(amount), repository.ChargeMetadata{
		ContractID: contract.ID,
		ClientID:   clientID,
	})
	if err != nil {
		return nil, asUpstream(err, "не удалось создать платёжное намерение")
	}
	return intent, nil
}
