package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/contract"
)

type ContractHandler struct {
	getContractUC      *contract.GetContractUseCase
	listMyContractsUC  *contract.ListMyContractsUseCase
	updateMilestoneUC  *contract.UpdateMilestoneUseCase
	completeContractUC *contract.CompleteContractUseCase
}

func NewContractHandler(
	getContractUC *contract.GetContractUseCase,
	listMyContractsUC *contract.ListMyContractsUseCase,
	updateMilestoneUC *contract.UpdateMilestoneUseCase,
	completeContractUC *contract.CompleteContractUseCase,
) *ContractHandler {
	return &ContractHandler{
		getContractUC:      getContractUC,
		listMyContractsUC:  listMyContractsUC,
		updateMilestoneUC:  updateMilestoneUC,
		completeContractUC: completeContractUC,
	}
}

func (h *ContractHandler) ListMyContracts(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	contracts, err := h.listMyContractsUC.Execute(c.Request.Context(), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponses(contracts))
}

func (h *ContractHandler) GetContract(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	contractID, ok := uuidParam(c, "id", "некорректный ID контракта")
	if !ok {
		return
	}

	found, err := h.getContractUC.Execute(c.Request.Context(), contractID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponse(found))
}

// UpdateMilestone обрабатывает PUT /contracts/:id/milestones/:milestoneId.
func (h *ContractHandler) UpdateMilestone(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	contractID, ok := uuidParam(c, "id", "некорректный ID контракта")
	if !ok {
		return
	}
	milestoneID, ok := uuidParam(c, "milestoneId", "некорректный ID этапа")
	if !ok {
		return
	}

	var req dto.UpdateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.updateMilestoneUC.Execute(c.Request.Context(), contract.UpdateMilestoneInput{
		ContractID:  contractID,
		MilestoneID: milestoneID,
		Status:      req.Status,
		ActorID:     actor.ID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponse(updated))
}

func (h *ContractHandler) CompleteContract(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	contractID, ok := uuidParam(c, "id", "некорректный ID контракта")
	if !ok {
		return
	}

	completed, err := h.completeContractUC.Execute(c.Request.Context(), contractID, actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToContractResponse(completed))
}
