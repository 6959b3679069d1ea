package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/contract"
)

const (
	idempotencyKeyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLength = 255
)

type PaymentHandler struct {
	createIntentUC   *contract.CreatePaymentIntentUseCase
	confirmPaymentUC *contract.ConfirmPaymentUseCase
}

func NewPaymentHandler(createIntentUC *contract.CreatePaymentIntentUseCase, confirmPaymentUC *contract.ConfirmPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		createIntentUC:   createIntentUC,
		confirmPaymentUC: confirmPaymentUC,
	}
}

// CreateIntent обрабатывает POST /payments/intents.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := h.createIntentUC.Execute(c.Request.Context(), req.ContractID, actor.ID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentIntentResponse(intent))
}

// ConfirmPayment обрабатывает POST /payments/confirm. Повтор с тем же
// Idempotency-Key возвращает текущий контракт без повторного зачисления.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	key := strings.TrimSpace(c.GetHeader(idempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		response.BadRequest(c, "слишком длинный Idempotency-Key")
		return
	}

	var req dto.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.confirmPaymentUC.Execute(c.Request.Context(), contract.ConfirmPaymentInput{
		ContractID:      req.ContractID,
		MilestoneID:     req.MilestoneID,
		Amount:          req.Amount,
		PaymentIntentID: req.PaymentIntentID,
		IdempotencyKey:  key,
		ActorID:         actor.ID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponse(updated))
}
