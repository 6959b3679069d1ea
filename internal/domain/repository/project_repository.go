package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	// UpdateDetails сохраняет редактируемые поля, пока проект открыт.
	UpdateDetails(ctx context.Context, project *entity.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*entity.Project, int, error)
	// Delete удаляет открытый проект вместе с его заявками.
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectFilter struct {
	Category *valueobject.Category
	Status   *valueobject.ProjectStatus
	ClientID *uuid.UUID
	Limit    int
	Offset   int
}
