package bid

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/notify"
)

type RejectBidUseCase struct {
	bidRepo     repository.BidRepository
	projectRepo repository.ProjectRepository
	notifier    repository.Notifier
}

func NewRejectBidUseCase(bidRepo repository.BidRepository, projectRepo repository.ProjectRepository, notifier repository.Notifier) *RejectBidUseCase {
	return &RejectBidUseCase{
		bidRepo:     bidRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
	}
}

func (uc *RejectBidUseCase) Execute(ctx context.Context, bidID, clientID uuid.UUID) (*entity.Bid, error) {
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

	if err := bid.Reject(); err != nil {
		return nil, err
	}

	if err := uc.bidRepo.UpdateStatus(ctx, bid.ID, valueobject.BidStatusPending, valueobject.BidStatusRejected); err != nil {
		return nil, err
	}

	notify.Send(ctx, uc.notifier, entity.NewNotification(entity.EventBidRejected, bid.FreelancerID, map[string]any{
		"bid_id":     bid.ID,
		"project_id": project.ID,
	}))

	return bid, nil
}
