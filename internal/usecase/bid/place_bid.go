package bid

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/notify"
)

type PlaceBidInput struct {
	ProjectID    uuid.UUID
	Actor        entity.Actor
	Amount       float64
	Proposal     string
	DeliveryTime string
	Attachments  []string
}

type PlaceBidUseCase struct {
	bidRepo     repository.BidRepository
	projectRepo repository.ProjectRepository
	notifier    repository.Notifier
}

func NewPlaceBidUseCase(bidRepo repository.BidRepository, projectRepo repository.ProjectRepository, notifier repository.Notifier) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		bidRepo:     bidRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, input PlaceBidInput) (*entity.Bid, error) {
	if !input.Actor.IsFreelancer() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "подавать заявки могут только исполнители")
	}

	project, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if project.IsOwnedBy(input.Actor.ID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя подать заявку на собственный проект")
	}

	if !project.IsOpen() {
		return nil, apperror.ErrProjectNotOpen
	}

	existing, err := uc.bidRepo.FindByProjectAndFreelancer(ctx, project.ID, input.Actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.ErrBidAlreadyExists
	}

	bid, err := entity.NewBid(project.ID, input.Actor.ID, input.Amount, input.Proposal, input.DeliveryTime, input.Attachments)
	if err != nil {
		return nil, err
	}

	// уникальный индекс (project_id, freelancer_id) ловит параллельную вторую заявку
	if err := uc.bidRepo.Create(ctx, bid); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"bid_id":        bid.ID,
		"project_id":    project.ID,
		"freelancer_id": bid.FreelancerID,
	}).Info("bid: заявка подана")

	notify.Send(ctx, uc.notifier, entity.NewNotification(entity.EventBidPlaced, project.ClientID, map[string]any{
		"bid_id":        bid.ID,
		"project_id":    project.ID,
		"freelancer_id": bid.FreelancerID,
		"amount":        bid.Amount,
	}))

	return bid, nil
}
