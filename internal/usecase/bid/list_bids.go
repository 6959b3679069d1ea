package bid

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
)

type ListProjectBidsUseCase struct {
	bidRepo     repository.BidRepository
	projectRepo repository.ProjectRepository
	users       repository.UserDirectory
}

func NewListProjectBidsUseCase(bidRepo repository.BidRepository, projectRepo repository.ProjectRepository, users repository.UserDirectory) *ListProjectBidsUseCase {
	return &ListProjectBidsUseCase{bidRepo: bidRepo, projectRepo: projectRepo, users: users}
}

func (uc *ListProjectBidsUseCase) Execute(ctx context.Context, projectID uuid.UUID) ([]entity.BidWithFreelancer, error) {
	if _, err := uc.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	bids, err := uc.bidRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(bids))
	for _, b := range bids {
		ids = append(ids, b.FreelancerID)
	}
	users, err := uc.users.FindPublicByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]entity.BidWithFreelancer, 0, len(bids))
	for _, b := range bids {
		result = append(result, entity.BidWithFreelancer{Bid: b, Freelancer: entity.LookupUser(users, b.FreelancerID)})
	}
	return result, nil
}

type ListFreelancerBidsUseCase struct {
	bidRepo     repository.BidRepository
	projectRepo repository.ProjectRepository
}

func NewListFreelancerBidsUseCase(bidRepo repository.BidRepository, projectRepo repository.ProjectRepository) *ListFreelancerBidsUseCase {
	return &ListFreelancerBidsUseCase{bidRepo: bidRepo, projectRepo: projectRepo}
}

func (uc *ListFreelancerBidsUseCase) Execute(ctx context.Context, freelancerID uuid.UUID) ([]entity.BidWithProject, error) {
	bids, err := uc.bidRepo.FindByFreelancerID(ctx, freelancerID)
	if err != nil {
		return nil, err
	}

	projects := make(map[uuid.UUID]*entity.Project)
	result := make([]entity.BidWithProject, 0, len(bids))
	for _, b := range bids {
		p, ok := projects[b.ProjectID]
		if !ok {
			p, err = uc.projectRepo.FindByID(ctx, b.ProjectID)
			if err != nil {
				return nil, err
			}
			projects[b.ProjectID] = p
		}
		result = append(result, entity.BidWithProject{Bid: b, Project: p})
	}
	return result, nil
}
