package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

// ProjectRequest используется и для создания, и для редактирования проекта.
// Содержательная валидация выполняется доменом и возвращается по полям.
type ProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Budget      float64  `json:"budget"`
	BudgetType  string   `json:"budget_type"`
	Duration    string   `json:"duration"`
	Skills      []string `json:"skills"`
	Attachments []string `json:"attachments"`
	Deadline    *string  `json:"deadline"`
}

func (r ProjectRequest) ToDraft() (entity.ProjectDraft, error) {
	deadline, err := ParseDeadline(r.Deadline)
	if err != nil {
		return entity.ProjectDraft{}, err
	}
	return entity.ProjectDraft{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Budget:      r.Budget,
		BudgetType:  r.BudgetType,
		Duration:    r.Duration,
		Skills:      r.Skills,
		Attachments: r.Attachments,
		Deadline:    deadline,
	}, nil
}

type ProjectResponse struct {
	ID           uuid.UUID  `json:"id"`
	ClientID     uuid.UUID  `json:"client_id"`
	FreelancerID *uuid.UUID `json:"freelancer_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Budget       float64    `json:"budget"`
	BudgetType   string     `json:"budget_type"`
	Duration     string     `json:"duration"`
	Skills       []string   `json:"skills"`
	Attachments  []string   `json:"attachments"`
	Deadline     *time.Time `json:"deadline"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProjectDetailsResponse — карточка проекта с участниками, заявками и контрактом.
type ProjectDetailsResponse struct {
	ProjectResponse
	Client     *UserResponse     `json:"client"`
	Freelancer *UserResponse     `json:"freelancer"`
	Bids       []BidResponse     `json:"bids"`
	Contract   *ContractResponse `json:"contract"`
}

func ToProjectResponse(project *entity.Project) ProjectResponse {
	return ProjectResponse{
		ID:           project.ID,
		ClientID:     project.ClientID,
		FreelancerID: project.FreelancerID,
		Title:        project.Title,
		Description:  project.Description,
		Category:     string(project.Category),
		Budget:       project.Budget.Amount,
		BudgetType:   string(project.Budget.Type),
		Duration:     string(project.Duration),
		Skills:       nonNil(project.Skills),
		Attachments:  nonNil(project.Attachments),
		Deadline:     project.Deadline,
		Status:       string(project.Status),
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

func ToProjectResponses(projects []*entity.Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, ToProjectResponse(project))
	}
	return responses
}

func ToProjectDetailsResponse(details *entity.ProjectDetails) ProjectDetailsResponse {
	resp := ProjectDetailsResponse{
		ProjectResponse: ToProjectResponse(details.Project),
		Client:          ToUserResponse(details.Client),
		Freelancer:      ToUserResponse(details.Freelancer),
		Bids:            ToBidWithFreelancerResponses(details.Bids),
	}
	if details.Contract != nil {
		contract := ToContractResponse(details.Contract)
		resp.Contract = &contract
	}
	return resp
}

// ParseDeadline принимает RFC3339 или дату в формате 2006-01-02.
func ParseDeadline(deadlineStr *string) (*time.Time, error) {
	if deadlineStr == nil || *deadlineStr == "" {
		return nil, nil
	}

	deadline, err := time.Parse(time.RFC3339, *deadlineStr)
	if err != nil {
		deadline, err = time.Parse(time.DateOnly, *deadlineStr)
		if err != nil {
			return nil, err
		}
	}

	return &deadline, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
