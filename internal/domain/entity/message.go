package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const MaxMessageLength = 5000

type Message struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	Content     string
	Attachments []string
	IsRead      bool
	CreatedAt   time.Time
}

// NewMessage создаёт сообщение. Получатель вычисляется по проекту, а не передаётся клиентом.
func NewMessage(project *Project, senderID uuid.UUID, content string, attachments []string) (*Message, error) {
	receiverID, err := project.Counterpart(senderID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	content = strings.TrimSpace(content)
	switch {
	case content == "":
		fields["content"] = "сообщение не может быть пустым"
	case utf8.RuneCountInString(content) > MaxMessageLength:
		fields["content"] = "сообщение слишком длинное"
	}
	attachments = normalizeList(attachments)
	if len(attachments) > MaxAttachments {
		fields["attachments"] = "слишком много вложений"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	return &Message{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}, nil
}

// MarkRead доступен только получателю.
func (m *Message) MarkRead(userID uuid.UUID) error {
	if m.ReceiverID != userID {
		return apperror.ErrForbidden
	}
	m.IsRead = true
	return nil
}
