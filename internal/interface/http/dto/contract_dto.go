package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type UpdateMilestoneRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreatePaymentIntentRequest struct {
	ContractID uuid.UUID `json:"contract_id" binding:"required"`
	Amount     float64   `json:"amount"`
}

type ConfirmPaymentRequest struct {
	ContractID      uuid.UUID  `json:"contract_id" binding:"required"`
	MilestoneID     *uuid.UUID `json:"milestone_id"`
	Amount          float64    `json:"amount"`
	PaymentIntentID *uuid.UUID `json:"payment_intent_id"`
}

type MilestoneResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Status      string     `json:"status"`
	DueDate     time.Time  `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
}

type ContractResponse struct {
	ID            uuid.UUID           `json:"id"`
	ProjectID     uuid.UUID           `json:"project_id"`
	ClientID      uuid.UUID           `json:"client_id"`
	FreelancerID  uuid.UUID           `json:"freelancer_id"`
	BidID         uuid.UUID           `json:"bid_id"`
	Amount        float64             `json:"amount"`
	Status        string              `json:"status"`
	Milestones    []MilestoneResponse `json:"milestones"`
	PaymentStatus string              `json:"payment_status"`
	TotalPaid     float64             `json:"total_paid"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       *time.Time          `json:"end_date"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type PaymentIntentResponse struct {
	ID           uuid.UUID `json:"id"`
	ContractID   uuid.UUID `json:"contract_id"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	ClientSecret string    `json:"client_secret"`
}

func ToContractResponse(contract *entity.Contract) ContractResponse {
	resp := ContractResponse{
		ID:            contract.ID,
		ProjectID:     contract.ProjectID,
		ClientID:      contract.ClientID,
		FreelancerID:  contract.FreelancerID,
		BidID:         contract.BidID,
		Amount:        contract.Amount,
		Status:        string(contract.Status),
		Milestones:    make([]MilestoneResponse, 0, len(contract.Milestones)),
		PaymentStatus: string(contract.PaymentStatus),
		TotalPaid:     contract.TotalPaid,
		StartDate:     contract.StartDate,
		EndDate:       contract.EndDate,
		CreatedAt:     contract.CreatedAt,
		UpdatedAt:     contract.UpdatedAt,
	}

	for _, m := range contract.Milestones {
		resp.Milestones = append(resp.Milestones, MilestoneResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
			Status:      string(m.Status),
			DueDate:     m.DueDate,
			CompletedAt: m.CompletedAt,
		})
	}

	return resp
}

func ToContractResponses(contracts []*entity.Contract) []ContractResponse {
	responses := make([]ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		responses = append(responses, ToContractResponse(contract))
	}
	return responses
}

func ToPaymentIntentResponse(intent *entity.PaymentIntent) PaymentIntentResponse {
	return PaymentIntentResponse{
		ID:           intent.ID,
		ContractID:   intent.ContractID,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
		Status:       intent.Status,
		ClientSecret: intent.ClientSecret,
	}
}
