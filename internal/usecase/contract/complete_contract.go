package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/notify"
)

type CompleteContractUseCase struct {
	contractRepo repository.ContractRepository
	projectRepo  repository.ProjectRepository
	notifier     repository.Notifier
}

func NewCompleteContractUseCase(contractRepo repository.ContractRepository, projectRepo repository.ProjectRepository, notifier repository.Notifier) *CompleteContractUseCase {
	return &CompleteContractUseCase{
		contractRepo: contractRepo,
		projectRepo:  projectRepo,
		notifier:     notifier,
	}
}

func (uc *CompleteContractUseCase) Execute(ctx context.Context, contractID, clientID uuid.UUID) (*entity.Contract, error) {
	var contract *entity.Contract
	err := withOptimisticRetry(ctx, func() error {
		var err error
		contract, err = uc.contractRepo.FindByID(ctx, contractID)
		if err != nil {
			return err
		}
		if !contract.IsClient(clientID) {
			return apperror.ErrForbidden
		}
		if err := contract.Complete(time.Now()); err != nil {
			return err
		}

		project, err := uc.projectRepo.FindByID(ctx, contract.ProjectID)
		if err != nil {
			return err
		}
		if err := project.Complete(); err != nil {
			return err
		}

		return uc.contractRepo.CommitCompletion(ctx, contract, project)
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"project_id":  contract.ProjectID,
	}).Info("contract: контракт завершён")

	notify.Send(ctx, uc.notifier, entity.NewNotification(entity.EventContractCompleted, contract.FreelancerID, map[string]any{
		"contract_id": contract.ID,
		"project_id":  contract.ProjectID,
	}))

	return contract, nil
}
