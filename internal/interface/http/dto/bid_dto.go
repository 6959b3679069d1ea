package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type PlaceBidRequest struct {
	ProjectID    uuid.UUID `json:"project_id" binding:"required"`
	Amount       float64   `json:"amount"`
	Proposal     string    `json:"proposal"`
	DeliveryTime string    `json:"delivery_time"`
	Attachments  []string  `json:"attachments"`
}

type BidResponse struct {
	ID           uuid.UUID     `json:"id"`
	ProjectID    uuid.UUID     `json:"project_id"`
	FreelancerID uuid.UUID     `json:"freelancer_id"`
	Freelancer   *UserResponse `json:"freelancer,omitempty"`
	Amount       float64       `json:"amount"`
	Proposal     string        `json:"proposal"`
	DeliveryTime string        `json:"delivery_time"`
	Status       string        `json:"status"`
	Attachments  []string      `json:"attachments"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BidProjectSummary содержит краткие данные проекта в списке заявок исполнителя.
type BidProjectSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Budget float64   `json:"budget"`
	Status string    `json:"status"`
}

type FreelancerBidResponse struct {
	BidResponse
	Project *BidProjectSummary `json:"project"`
}

// AcceptBidResponse возвращает заявку вместе с созданным контрактом.
type AcceptBidResponse struct {
	BidID    uuid.UUID        `json:"bid_id"`
	Status   string           `json:"status"`
	Contract ContractResponse `json:"contract"`
}

func ToBidResponse(bid *entity.Bid) BidResponse {
	return BidResponse{
		ID:           bid.ID,
		ProjectID:    bid.ProjectID,
		FreelancerID: bid.FreelancerID,
		Amount:       bid.Amount,
		Proposal:     bid.Proposal,
		DeliveryTime: string(bid.DeliveryTime),
		Status:       string(bid.Status),
		Attachments:  nonNil(bid.Attachments),
		CreatedAt:    bid.CreatedAt,
		UpdatedAt:    bid.UpdatedAt,
	}
}

func ToBidWithFreelancerResponses(bids []entity.BidWithFreelancer) []BidResponse {
	responses := make([]BidResponse, 0, len(bids))
	for _, item := range bids {
		resp := ToBidResponse(item.Bid)
		resp.Freelancer = ToUserResponse(item.Freelancer)
		responses = append(responses, resp)
	}
	return responses
}

func ToFreelancerBidResponses(bids []entity.BidWithProject) []FreelancerBidResponse {
	responses := make([]FreelancerBidResponse, 0, len(bids))
	for _, item := range bids {
		resp := FreelancerBidResponse{BidResponse: ToBidResponse(item.Bid)}
		if item.Project != nil {
			resp.Project = &BidProjectSummary{
				ID:     item.Project.ID,
				Title:  item.Project.Title,
				Budget: item.Project.Budget.Amount,
				Status: string(item.Project.Status),
			}
		}
		responses = append(responses, resp)
	}
	return responses
}
