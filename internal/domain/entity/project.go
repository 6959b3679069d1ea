package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const (
	MaxProjectTitleLength       = 100
	MinProjectDescriptionLength = 10
	MaxProjectDescriptionLength = 2000
	MaxProjectSkills            = 20
	MaxAttachments              = 10
)

type Project struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	FreelancerID *uuid.UUID
	Title        string
	Description  string
	Category     valueobject.Category
	Budget       valueobject.Budget
	Duration     valueobject.Duration
	Skills       []string
	Attachments  []string
	Deadline     *time.Time
	Status       valueobject.ProjectStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectDraft содержит редактируемые клиентом поля проекта.
type ProjectDraft struct {
	Title       string
	Description string
	Category    string
	Budget      float64
	BudgetType  string
	Duration    string
	Skills      []string
	Attachments []string
	Deadline    *time.Time
}

func NewProject(clientID uuid.UUID, draft ProjectDraft) (*Project, error) {
	now := time.Now()
	p := &Project{
		ID:        uuid.New(),
		ClientID:  clientID,
		Status:    valueobject.ProjectStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.apply(draft, now); err != nil {
		return nil, err
	}
	return p, nil
}

// Edit применяет изменения клиента. Менять можно только открытый проект.
func (p *Project) Edit(draft ProjectDraft) error {
	if p.Status != valueobject.ProjectStatusOpen {
		return apperror.New(apperror.ErrCodeConflict, "редактировать можно только открытый проект")
	}
	now := time.Now()
	if err := p.apply(draft, now); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (p *Project) apply(draft ProjectDraft, now time.Time) error {
	fields := map[string]string{}

	title := strings.TrimSpace(draft.Title)
	switch {
	case title == "":
		fields["title"] = "название обязательно"
	case utf8.RuneCountInString(title) > MaxProjectTitleLength:
		fields["title"] = "название не может быть длиннее 100 символов"
	}

	description := strings.TrimSpace(draft.Description)
	if n := utf8.RuneCountInString(description); n < MinProjectDescriptionLength || n > MaxProjectDescriptionLength {
		fields["description"] = "описание должно содержать от 10 до 2000 символов"
	}

	category, err := valueobject.NewCategory(draft.Category)
	if err != nil {
		fields["category"] = "некорректная категория"
	}

	duration, err := valueobject.NewDuration(draft.Duration)
	if err != nil {
		fields["duration"] = "некорректная длительность проекта"
	}

	budget, err := valueobject.NewBudget(draft.Budget, draft.BudgetType)
	if err != nil {
		mergeFields(fields, err)
	}

	skills := normalizeList(draft.Skills)
	if len(skills) > MaxProjectSkills {
		fields["skills"] = "слишком много навыков"
	}

	attachments := normalizeList(draft.Attachments)
	if len(attachments) > MaxAttachments {
		fields["attachments"] = "слишком много вложений"
	}

	if draft.Deadline != nil && draft.Deadline.Before(now) {
		fields["deadline"] = "дедлайн не может быть в прошлом"
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}

	p.Title = title
	p.Description = description
	p.Category = category
	p.Budget = budget
	p.Duration = duration
	p.Skills = skills
	p.Attachments = attachments
	p.Deadline = draft.Deadline
	return nil
}

// AssignFreelancer переводит проект в работу при принятии заявки.
func (p *Project) AssignFreelancer(freelancerID uuid.UUID) error {
	if p.Status != valueobject.ProjectStatusOpen {
		return apperror.ErrProjectNotOpen
	}
	p.FreelancerID = &freelancerID
	p.Status = valueobject.ProjectStatusInProgress
	p.UpdatedAt = time.Now()
	return nil
}

// Complete закрывает проект вслед за контрактом.
func (p *Project) Complete() error {
	if !p.Status.CanTransitionTo(valueobject.ProjectStatusCompleted) {
		return apperror.New(apperror.ErrCodeConflict, "завершить можно только проект в работе")
	}
	if p.Status.HasAssignment() && p.FreelancerID == nil {
		return apperror.ErrNoAssignment
	}
	p.Status = valueobject.ProjectStatusCompleted
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Project) EnsureDeletable() error {
	if p.Status != valueobject.ProjectStatusOpen {
		return apperror.New(apperror.ErrCodeConflict, "удалить можно только открытый проект")
	}
	return nil
}

func (p *Project) IsOpen() bool {
	return p.Status == valueobject.ProjectStatusOpen
}

func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.ClientID == userID
}

func (p *Project) IsAssignedTo(userID uuid.UUID) bool {
	return p.FreelancerID != nil && *p.FreelancerID == userID
}

// IsParticipant сообщает, является ли пользователь клиентом проекта или назначенным исполнителем.
func (p *Project) IsParticipant(userID uuid.UUID) bool {
	return p.IsOwnedBy(userID) || p.IsAssignedTo(userID)
}

// Counterpart вычисляет получателя сообщения от sender.
func (p *Project) Counterpart(senderID uuid.UUID) (uuid.UUID, error) {
	if !p.IsParticipant(senderID) {
		return uuid.Nil, apperror.ErrForbidden
	}
	if p.FreelancerID == nil {
		return uuid.Nil, apperror.ErrNoAssignment
	}
	if p.IsOwnedBy(senderID) {
		return *p.FreelancerID, nil
	}
	return p.ClientID, nil
}

func normalizeList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func mergeFields(fields map[string]string, err error) {
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		return
	}
	for k, v := range appErr.Fields {
		fields[k] = v
	}
}
