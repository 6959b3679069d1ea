package bid

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

const DefaultMilestoneDue = 30 * 24 * time.Hour

type AcceptBidUseCase struct {
	bidRepo      repository.BidRepository
	projectRepo  repository.ProjectRepository
	notifier     repository.Notifier
	milestoneDue time.Duration
}

func NewAcceptBidUseCase(bidRepo repository.BidRepository, projectRepo repository.ProjectRepository, notifier repository.Notifier, milestoneDue time.Duration) *AcceptBidUseCase {
	if milestoneDue <= 0 {
		milestoneDue = DefaultMilestoneDue
	}
	return &AcceptBidUseCase{
		bidRepo:      bidRepo,
		projectRepo:  projectRepo,
		notifier:     notifier,
		milestoneDue: milestoneDue,
	}
}

// Execute принимает заявку и возвращает созданный контракт.
// Все изменения фиксируются хранилищем одной транзакцией; при гонке
// выигрывает первая фиксация, остальные получают CONFLICT.
func (uc *AcceptBidUseCase) Execute(ctx context.Context, bidID, clientID uuid.UUID) (*entity.Contract, error) {
	bid, err := uc.bidRepo.FindByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	project, err := uc.projectRepo.FindByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}

	if !project.IsOwnedBy(clientID) {
		return nil, apperror.ErrForbidden
	}

	if err := bid.Accept(); err != nil {
		return nil, err
	}

	if err := project.AssignFreelancer(bid.FreelancerID); err != nil {
		return nil, err
	}

	contract := entity.NewContractFromBid(project, bid, time.Now(), uc.milestoneDue)

	acceptance := &entity.Acceptance{
		Bid:      bid,
		Project:  project,
		Contract: contract,
	}
	if err := uc.bidRepo.CommitAcceptance(ctx, acceptance); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"bid_id":        bid.ID,
		"project_id":    project.ID,
		"contract_id":   contract.ID,
		"rejected_bids": len(acceptance.Rejected),
	}).Info("bid: заявка принята, контракт создан")

	notifications := []entity.Notification{
		entity.NewNotification(entity.EventBidAccepted, bid.FreelancerID, map[string]any{
			"bid_id":      bid.ID,
			"project_id":  project.ID,
			"contract_id": contract.ID,
		}),
	}
	for _, rejected := range acceptance.Rejected {
		notifications = append(notifications, entity.NewNotification(entity.EventBidRejected, rejected.FreelancerID, map[string]any{
			"bid_id":     rejected.ID,
			"project_id": project.ID,
		}))
	}
	notify.Send(ctx, uc.notifier, notifications...)

	return contract, nil
}
