package project

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type GetProjectUseCase struct {
	projectRepo  repository.ProjectRepository
	bidRepo      repository.BidRepository
	contractRepo repository.ContractRepository
	users        repository.UserDirectory
}

func NewGetProjectUseCase(
	projectRepo repository.ProjectRepository,
	bidRepo repository.BidRepository,
	contractRepo repository.ContractRepository,
	users repository.UserDirectory,
) *GetProjectUseCase {
	return &GetProjectUseCase{
		projectRepo:  projectRepo,
		bidRepo:      bidRepo,
		contractRepo: contractRepo,
		users:        users,
	}
}

// Execute загружает проект, его заявки и контракт параллельно, затем подставляет пользователей.
func (uc *GetProjectUseCase) Execute(ctx context.Context, projectID uuid.UUID) (*entity.ProjectDetails, error) {
	project, err := uc.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var (
		bids     []*entity.Bid
		contract *entity.Contract
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bids, err = uc.bidRepo.FindByProjectID(gctx, projectID)
		return err
	})
	if project.FreelancerID != nil {
		g.Go(func() error {
			c, err := uc.contractRepo.FindByProjectID(gctx, projectID)
			if apperror.IsNotFound(err) {
				return nil
			}
			contract = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := []uuid.UUID{project.ClientID}
	if project.FreelancerID != nil {
		ids = append(ids, *project.FreelancerID)
	}
	for _, b := range bids {
		ids = append(ids, b.FreelancerID)
	}
	users, err := uc.users.FindPublicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := &entity.ProjectDetails{
		Project:  project,
		Client:   entity.LookupUser(users, project.ClientID),
		Bids:     make([]entity.BidWithFreelancer, 0, len(bids)),
		Contract: contract,
	}
	if project.FreelancerID != nil {
		details.Freelancer = entity.LookupUser(users, *project.FreelancerID)
	}
	for _, b := range bids {
		details.Bids = append(details.Bids, entity.BidWithFreelancer{Bid: b, Freelancer: entity.LookupUser(users, b.FreelancerID)})
	}
	return details, nil
}
