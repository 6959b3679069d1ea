package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
)

// multipartOverhead — запас на заголовки multipart сверх размера файла.
const multipartOverhead = 1 << 20

type AttachmentSaver interface {
	Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (*storage.SavedFile, error)
}

type AttachmentHandler struct {
	storage        AttachmentSaver
	maxUploadBytes int64
}

func NewAttachmentHandler(storage AttachmentSaver, maxUploadMB int64) *AttachmentHandler {
	return &AttachmentHandler{
		storage:        storage,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}
}

// Upload обрабатывает POST /attachments (multipart, поле file).
// Возвращённый путь указывается во вложениях проекта, заявки или сообщения.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		response.ValidationFailed(c, "file", "поле file обязательно, размер не больше лимита")
		return
	}
	if file.Size > h.maxUploadBytes {
		response.ValidationFailed(c, "file", "размер файла превышает лимит")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	saved, err := h.storage.Save(c.Request.Context(), actor.ID, file.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAttachmentResponse(saved))
}
