package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/notify"
)

type ConfirmPaymentInput struct {
	ContractID      uuid.UUID
	MilestoneID     *uuid.UUID
	Amount          float64
	PaymentIntentID *uuid.UUID
	IdempotencyKey  string
	ActorID         uuid.UUID
}

type ConfirmPaymentUseCase struct {
	contractRepo repository.ContractRepository
	gateway      repository.PaymentGateway
	notifier     repository.Notifier
	capTotalPaid bool
}

func NewConfirmPaymentUseCase(contractRepo repository.ContractRepository, gateway repository.PaymentGateway, notifier repository.Notifier, capTotalPaid bool) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		contractRepo: contractRepo,
		gateway:      gateway,
		notifier:     notifier,
		capTotalPaid: capTotalPaid,
	}
}

// Execute учитывает платёж клиента. Если передано платёжное намерение,
// списание подтверждается во внешнем сервисе до сохранения контракта.
func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, input ConfirmPaymentInput) (*entity.Contract, error) {
	key := input.IdempotencyKey
	if key == "" && input.PaymentIntentID != nil {
		key = "intent:" + input.PaymentIntentID.String()
	}

	var (
		contract *entity.Contract
		receipt  *entity.PaymentReceipt
		replayed bool
	)
	err := withOptimisticRetry(ctx, func() error {
		var err error
		contract, err = uc.contractRepo.FindByID(ctx, input.ContractID)
		if err != nil {
			return err
		}
		if !contract.IsClient(input.ActorID) {
			return apperror.ErrForbidden
		}

		if key != "" {
			prior, err := uc.contractRepo.FindPaymentConfirmation(ctx, contract.ID, key)
			if err != nil {
				return err
			}
			if prior != nil {
				replayed = true
				return nil
			}
		}
		// одно намерение учитывается один раз, какой бы ключ ни прислал клиент
		if input.PaymentIntentID != nil {
			prior, err := uc.contractRepo.FindConfirmationByIntent(ctx, *input.PaymentIntentID)
			if err != nil {
				return err
			}
			if prior != nil {
				if prior.ContractID != contract.ID {
					return apperror.Validation(map[string]string{"payment_intent_id": "намерение относится к другому контракту"})
				}
				replayed = true
				return nil
			}
		}

		now := time.Now()
		if input.MilestoneID != nil {
			if _, err := contract.AdvanceMilestone(*input.MilestoneID, valueobject.MilestoneStatusPaid, now); err != nil {
				return err
			}
		}
		if err := contract.RecordPayment(input.Amount, uc.capTotalPaid, now); err != nil {
			return err
		}

		if input.PaymentIntentID != nil && receipt == nil {
			receipt, err = uc.capture(ctx, contract, *input.PaymentIntentID, input.Amount)
			if err != nil {
				return err
			}
		}

		return uc.contractRepo.CommitPayment(ctx, contract, &entity.PaymentConfirmation{
			ContractID:     contract.ID,
			IdempotencyKey: key,
			Amount:         valueobject.RoundCents(input.Amount),
			MilestoneID:    input.MilestoneID,
			IntentID:       input.PaymentIntentID,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return contract, nil
	}

	logger.WithFields(logrus.Fields{
		"contract_id":    contract.ID,
		"amount":         input.Amount,
		"total_paid":     contract.TotalPaid,
		"payment_status": contract.PaymentStatus,
	}).Info("contract: платёж подтверждён")

	payload := map[string]any{
		"contract_id":    contract.ID,
		"amount":         valueobject.RoundCents(input.Amount),
		"total_paid":     contract.TotalPaid,
		"payment_status": contract.PaymentStatus,
	}
	if input.MilestoneID != nil {
		payload["milestone_id"] = *input.MilestoneID
	}
	notify.Send(ctx, uc.notifier, entity.NewNotification(entity.EventPaymentConfirmed, contract.FreelancerID, payload))

	return contract, nil
}

// capture проверяет намерение и подтверждает списание во внешнем сервисе.
func (uc *ConfirmPaymentUseCase) capture(ctx context.Context, contract *entity.Contract, intentID uuid.UUID, amount float64) (*entity.PaymentReceipt, error) {
	if uc.gateway == nil {
		return nil, apperror.ErrPaymentUnavailable
	}

	intent, err := uc.gateway.FindIntent(ctx, intentID)
	if err != nil {
		return nil, asUpstream(err, "не удалось получить платёжное намерение")
	}
	if intent.ContractID != contract.ID || intent.ClientID != contract.ClientID {
		return nil, apperror.Validation(map[string]string{"payment_intent_id": "намерение относится к другому контракту"})
	}
	if intent.AmountCents != valueobject.ToCents(amount) {
		return nil, apperror.Validation(map[string]string{"amount": "сумма не совпадает с платёжным намерением"})
	}

	receipt, err := uc.gateway.Capture(ctx, intentID)
	if err != nil {
		return nil, asUpstream(err, "платёжный сервис не подтвердил списание")
	}
	return receipt, nil
}

// asUpstream сохраняет доменные ошибки (например NOT_FOUND), остальные превращает в UPSTREAM_ERROR.
func asUpstream(err error, message string) error {
	switch apperror.CodeOf(err) {
	case apperror.ErrCodeNotFound, apperror.ErrCodeValidation, apperror.ErrCodeConflict, apperror.ErrCodeUpstream:
		return err
	}
	return apperror.Upstream(err, message)
}
