package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
)

type SendMessageRequest struct {
	ProjectID   uuid.UUID `json:"project_id" binding:"required"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
}

type MessageResponse struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	ReceiverID  uuid.UUID `json:"receiver_id"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type AttachmentResponse struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	MIME string `json:"mime"`
}

func ToMessageResponse(message *entity.Message) MessageResponse {
	return MessageResponse{
		ID:          message.ID,
		ProjectID:   message.ProjectID,
		SenderID:    message.SenderID,
		ReceiverID:  message.ReceiverID,
		Content:     message.Content,
		Attachments: nonNil(message.Attachments),
		IsRead:      message.IsRead,
		CreatedAt:   message.CreatedAt,
	}
}

func ToMessageResponses(messages []*entity.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, ToMessageResponse(message))
	}
	return responses
}

func ToAttachmentResponse(file *storage.SavedFile) AttachmentResponse {
	return AttachmentResponse{Path: file.Path, Size: file.Size, MIME: file.MIME}
}
