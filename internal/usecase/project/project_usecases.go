package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type CreateProjectUseCase struct {
	projectRepo repository.ProjectRepository
}

func NewCreateProjectUseCase(projectRepo repository.ProjectRepository) *CreateProjectUseCase {
	return &CreateProjectUseCase{projectRepo: projectRepo}
}

func (uc *CreateProjectUseCase) Execute(ctx context.Context, actor entity.Actor, draft entity.ProjectDraft) (*entity.Project, error) {
	if !actor.IsClient() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "создавать проекты могут только клиенты")
	}

	project, err := entity.NewProject(actor.ID, draft)
	if err != nil {
		return nil, err
	}

	if err := uc.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"project_id": project.ID,
		"client_id":  project.ClientID,
	}).Info("project: проект создан")

	return project, nil
}

type UpdateProjectUseCase struct {
	projectRepo repository.ProjectRepository
}

func NewUpdateProjectUseCase(projectRepo repository.ProjectRepository) *UpdateProjectUseCase {
	return &UpdateProjectUseCase{projectRepo: projectRepo}
}

func (uc *UpdateProjectUseCase) Execute(ctx context.Context, projectID, clientID uuid.UUID, draft entity.ProjectDraft) (*entity.Project, error) {
	project, err := uc.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !project.IsOwnedBy(clientID) {
		return nil, apperror.ErrForbidden
	}

	if err := project.Edit(draft); err != nil {
		return nil, err
	}

	if err := uc.projectRepo.UpdateDetails(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

type DeleteProjectUseCase struct {
	projectRepo repository.ProjectRepository
}

func NewDeleteProjectUseCase(projectRepo repository.ProjectRepository) *DeleteProjectUseCase {
	return &DeleteProjectUseCase{projectRepo: projectRepo}
}

func (uc *DeleteProjectUseCase) Execute(ctx context.Context, projectID, clientID uuid.UUID) error {
	project, err := uc.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	if !project.IsOwnedBy(clientID) {
		return apperror.ErrForbidden
	}

	if err := project.EnsureDeletable(); err != nil {
		return err
	}

	if err := uc.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"project_id": projectID}).Info("project: проект удалён вместе с заявками")
	return nil
}

type ListProjectsInput struct {
	Category string
	Status   string
	ClientID *uuid.UUID
	Limit    int
	Offset   int
}

type ListProjectsUseCase struct {
	projectRepo repository.ProjectRepository
}

func NewListProjectsUseCase(projectRepo repository.ProjectRepository) *ListProjectsUseCase {
	return &ListProjectsUseCase{projectRepo: projectRepo}
}

func (uc *ListProjectsUseCase) Execute(ctx context.Context, input ListProjectsInput) ([]*entity.Project, int, error) {
	filter := repository.ProjectFilter{
		ClientID: input.ClientID,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	if input.Category != "" {
		category, err := valueobject.NewCategory(input.Category)
		if err != nil {
			return nil, 0, err
		}
		filter.Category = &category
	}
	if input.Status != "" {
		status, err := valueobject.NewProjectStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = &status
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return uc.projectRepo.List(ctx, filter)
}
