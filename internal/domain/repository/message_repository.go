package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	// FindByProjectID возвращает сообщения в порядке создания.
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entity.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
