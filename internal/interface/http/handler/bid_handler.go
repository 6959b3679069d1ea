package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/bid"
)

type BidHandler struct {
	placeBidUC           *bid.PlaceBidUseCase
	acceptBidUC          *bid.AcceptBidUseCase
	rejectBidUC          *bid.RejectBidUseCase
	listProjectBidsUC    *bid.ListProjectBidsUseCase
	listFreelancerBidsUC *bid.ListFreelancerBidsUseCase
}

func NewBidHandler(
	placeBidUC *bid.PlaceBidUseCase,
	acceptBidUC *bid.AcceptBidUseCase,
	rejectBidUC *bid.RejectBidUseCase,
	listProjectBidsUC *bid.ListProjectBidsUseCase,
	listFreelancerBidsUC *bid.ListFreelancerBidsUseCase,
) *BidHandler {
	return &BidHandler{
		placeBidUC:           placeBidUC,
		acceptBidUC:          acceptBidUC,
		rejectBidUC:          rejectBidUC,
		listProjectBidsUC:    listProjectBidsUC,
		listFreelancerBidsUC: listFreelancerBidsUC,
	}
}

func (h *BidHandler) PlaceBid(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.PlaceBidRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.placeBidUC.Execute(c.Request.Context(), bid.PlaceBidInput{
		ProjectID:    req.ProjectID,
		Actor:        actor,
		Amount:       req.Amount,
		Proposal:     req.Proposal,
		DeliveryTime: req.DeliveryTime,
		Attachments:  req.Attachments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBidResponse(created))
}

// AcceptBid обрабатывает PUT /bids/:id/accept. В ответе созданный контракт.
func (h *BidHandler) AcceptBid(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	bidID, ok := uuidParam(c, "id", "некорректный ID заявки")
	if !ok {
		return
	}

	contract, err := h.acceptBidUC.Execute(c.Request.Context(), bidID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.AcceptBidResponse{
		BidID:    bidID,
		Status:   "accepted",
		Contract: dto.ToContractResponse(contract),
	})
}

func (h *BidHandler) RejectBid(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	bidID, ok := uuidParam(c, "id", "некорректный ID заявки")
	if !ok {
		return
	}

	rejected, err := h.rejectBidUC.Execute(c.Request.Context(), bidID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponse(rejected))
}

func (h *BidHandler) ListProjectBids(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "некорректный ID проекта")
	if !ok {
		return
	}

	bids, err := h.listProjectBidsUC.Execute(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidWithFreelancerResponses(bids))
}

func (h *BidHandler) ListFreelancerBids(c *gin.Context) {
	freelancerID, ok := uuidParam(c, "id", "некорректный ID пользователя")
	if !ok {
		return
	}

	bids, err := h.listFreelancerBidsUC.Execute(c.Request.Context(), freelancerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToFreelancerBidResponses(bids))
}
