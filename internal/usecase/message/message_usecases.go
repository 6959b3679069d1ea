package message

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/notify"
)

type ListMessagesUseCase struct {
	projectRepo repository.ProjectRepository
	msgRepo     repository.MessageRepository
}

func NewListMessagesUseCase(projectRepo repository.ProjectRepository, msgRepo repository.MessageRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{projectRepo: projectRepo, msgRepo: msgRepo}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, projectID, userID uuid.UUID) ([]*entity.Message, error) {
	project, err := uc.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !project.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	return uc.msgRepo.FindByProjectID(ctx, projectID)
}

type SendMessageInput struct {
	ProjectID   uuid.UUID
	SenderID    uuid.UUID
	Content     string
	Attachments []string
}

type SendMessageUseCase struct {
	projectRepo repository.ProjectRepository
	msgRepo     repository.MessageRepository
	notifier    repository.Notifier
}

func NewSendMessageUseCase(projectRepo repository.ProjectRepository, msgRepo repository.MessageRepository, notifier repository.Notifier) *SendMessageUseCase {
	return &SendMessageUseCase{projectRepo: projectRepo, msgRepo: msgRepo, notifier: notifier}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	project, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	msg, err := entity.NewMessage(project, input.SenderID, input.Content, input.Attachments)
	if err != nil {
		return nil, err
	}

	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	notify.Send(ctx, uc.notifier, entity.NewNotification(entity.EventMessageSent, msg.ReceiverID, map[string]any{
		"message_id": msg.ID,
		"project_id": msg.ProjectID,
		"sender_id":  msg.SenderID,
		"content":    msg.Content,
	}))

	return msg, nil
}

type MarkReadUseCase struct {
	msgRepo repository.MessageRepository
}

func NewMarkReadUseCase(msgRepo repository.MessageRepository) *MarkReadUseCase {
	return &MarkReadUseCase{msgRepo: msgRepo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, messageID, userID uuid.UUID) (*entity.Message, error) {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if err := msg.MarkRead(userID); err != nil {
		return nil, err
	}

	if err := uc.msgRepo.MarkRead(ctx, msg.ID); err != nil {
		return nil, err
	}
	return msg, nil
}
