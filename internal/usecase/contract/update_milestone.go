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

type UpdateMilestoneInput struct {
	ContractID  uuid.UUID
	MilestoneID uuid.UUID
	Status      string
	ActorID     uuid.UUID
}

type UpdateMilestoneUseCase struct {
	contractRepo repository.ContractRepository
	notifier     repository.Notifier
}

func NewUpdateMilestoneUseCase(contractRepo repository.ContractRepository, notifier repository.Notifier) *UpdateMilestoneUseCase {
	return &UpdateMilestoneUseCase{contractRepo: contractRepo, notifier: notifier}
}

func (uc *UpdateMilestoneUseCase) Execute(ctx context.Context, input UpdateMilestoneInput) (*entity.Contract, error) {
	next, err := valueobject.NewMilestoneStatus(input.Status)
	if err != nil {
		return nil, err
	}

	var (
		contract  *entity.Contract
		milestone *entity.Milestone
	)
	err = withOptimisticRetry(ctx, func() error {
		contract, err = uc.contractRepo.FindByID(ctx, input.ContractID)
		if err != nil {
			return err
		}
		if !contract.IsParty(input.ActorID) {
			return apperror.ErrForbidden
		}
		milestone, err = contract.AdvanceMilestone(input.MilestoneID, next, time.Now())
		if err != nil {
			return err
		}
		return uc.contractRepo.Update(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"contract_id":  contract.ID,
		"milestone_id": milestone.ID,
		"status":       milestone.Status,
	}).Info("contract: статус этапа обновлён")

	notify.Send(ctx, uc.notifier, entity.NewNotification(entity.EventMilestoneUpdated, contract.Counterpart(input.ActorID), map[string]any{
		"contract_id":  contract.ID,
		"milestone_id": milestone.ID,
		"status":       milestone.Status,
	}))

	return contract, nil
}
