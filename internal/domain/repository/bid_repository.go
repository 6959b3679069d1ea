package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

type BidRepository interface {
	// Create возвращает CONFLICT, если исполнитель уже подавал заявку на проект.
	Create(ctx context.Context, bid *entity.Bid) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	// FindByProjectAndFreelancer возвращает nil, nil если заявки нет.
	FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*entity.Bid, error)
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entity.Bid, error)
	FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Bid, error)
	// UpdateStatus меняет статус, только если текущий статус равен from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.BidStatus) error
	// CommitAcceptance атомарно принимает заявку, назначает исполнителя,
	// создаёт контракт и отклоняет остальные ожидающие заявки проекта.
	CommitAcceptance(ctx context.Context, acceptance *entity.Acceptance) error
}
