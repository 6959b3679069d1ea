package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/message"
)

type MessageHandler struct {
	sendMessageUC  *message.SendMessageUseCase
	listMessagesUC *message.ListMessagesUseCase
	markReadUC     *message.MarkReadUseCase
}

func NewMessageHandler(sendMessageUC *message.SendMessageUseCase, listMessagesUC *message.ListMessagesUseCase, markReadUC *message.MarkReadUseCase) *MessageHandler {
	return &MessageHandler{
		sendMessageUC:  sendMessageUC,
		listMessagesUC: listMessagesUC,
		markReadUC:     markReadUC,
	}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	sent, err := h.sendMessageUC.Execute(c.Request.Context(), message.SendMessageInput{
		ProjectID:   req.ProjectID,
		SenderID:    actor.ID,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(sent))
}

// ListMessages обрабатывает GET /projects/:id/messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	projectID, ok := uuidParam(c, "id", "некорректный ID проекта")
	if !ok {
		return
	}

	messages, err := h.listMessagesUC.Execute(c.Request.Context(), projectID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMessageResponses(messages))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	messageID, ok := uuidParam(c, "id", "некорректный ID сообщения")
	if !ok {
		return
	}

	read, err := h.markReadUC.Execute(c.Request.Context(), messageID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMessageResponse(read))
}
