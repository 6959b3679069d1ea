package entity

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const (
	DefaultMilestoneTitle       = "Project Completion"
	DefaultMilestoneDescription = "Complete the project as per requirements"
)

// Milestone принадлежит контракту и адресуется только внутри него.
type Milestone struct {
	ID          uuid.UUID                   `json:"id"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Amount      float64                     `json:"amount"`
	Status      valueobject.MilestoneStatus `json:"status"`
	DueDate     time.Time                   `json:"due_date"`
	CompletedAt *time.Time                  `json:"completed_at,omitempty"`
}

type Contract struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	ClientID      uuid.UUID
	FreelancerID  uuid.UUID
	BidID         uuid.UUID
	Amount        float64
	Status        valueobject.ContractStatus
	Milestones    []Milestone
	PaymentStatus valueobject.PaymentStatus
	TotalPaid     float64
	StartDate     time.Time
	EndDate       *time.Time
	// Version растёт при каждом сохранении и используется для оптимистичной блокировки.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewContractFromBid создаёт контракт по принятой заявке.
// Сумма копируется из заявки, единственный этап покрывает её целиком.
func NewContractFromBid(project *Project, bid *Bid, now time.Time, milestoneDue time.Duration) *Contract {
	return &Contract{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		ClientID:     project.ClientID,
		FreelancerID: bid.FreelancerID,
		BidID:        bid.ID,
		Amount:       bid.Amount,
		Status:       valueobject.ContractStatusActive,
		Milestones: []Milestone{{
			ID:          uuid.New(),
			Title:       DefaultMilestoneTitle,
			Description: DefaultMilestoneDescription,
			Amount:      bid.Amount,
			Status:      valueobject.MilestoneStatusPending,
			DueDate:     now.Add(milestoneDue),
		}},
		PaymentStatus: valueobject.PaymentStatusPending,
		StartDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (c *Contract) IsClient(userID uuid.UUID) bool {
	return c.ClientID == userID
}

func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

// Counterpart возвращает вторую сторону контракта.
func (c *Contract) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.ClientID == userID {
		return c.FreelancerID
	}
	return c.ClientID
}

func (c *Contract) FindMilestone(id uuid.UUID) (*Milestone, error) {
	for i := range c.Milestones {
		if c.Milestones[i].ID == id {
			return &c.Milestones[i], nil
		}
	}
	return nil, apperror.ErrMilestoneNotFound
}

// AdvanceMilestone переводит этап на один шаг вперёд.
func (c *Contract) AdvanceMilestone(id uuid.UUID, next valueobject.MilestoneStatus, now time.Time) (*Milestone, error) {
	if c.Status == valueobject.ContractStatusCancelled {
		return nil, apperror.ErrContractNotActive
	}
	if !next.IsValid() {
		return nil, apperror.Validation(map[string]string{"status": "некорректный статус этапа"})
	}

	m, err := c.FindMilestone(id)
	if err != nil {
		return nil, err
	}
	if !m.Status.CanTransitionTo(next) {
		return nil, apperror.New(apperror.ErrCodeConflict,
			"этап нельзя перевести из статуса "+string(m.Status)+" в "+string(next))
	}

	m.Status = next
	if next == valueobject.MilestoneStatusCompleted {
		m.CompletedAt = &now
	}
	c.UpdatedAt = now
	return m, nil
}

// RecordPayment учитывает поступивший платёж и пересчитывает статус оплаты.
// Если capTotal включён, сумма платежей не может превысить сумму контракта.
func (c *Contract) RecordPayment(amount float64, capTotal bool, now time.Time) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperror.Validation(map[string]string{"amount": "сумма платежа должна быть положительной"})
	}
	if c.Status == valueobject.ContractStatusCancelled {
		return apperror.ErrContractNotActive
	}

	total := valueobject.RoundCents(c.TotalPaid + amount)
	if capTotal && total > c.Amount {
		return apperror.Validation(map[string]string{"amount": "сумма платежей превышает сумму контракта"})
	}

	c.TotalPaid = total
	c.PaymentStatus = valueobject.DerivePaymentStatus(c.TotalPaid, c.Amount)
	c.UpdatedAt = now
	return nil
}

// Complete завершает контракт. Повторное завершение считается конфликтом.
func (c *Contract) Complete(now time.Time) error {
	if !c.Status.CanTransitionTo(valueobject.ContractStatusCompleted) {
		return apperror.ErrContractNotActive
	}
	c.Status = valueobject.ContractStatusCompleted
	c.EndDate = &now
	c.UpdatedAt = now
	return nil
}

// Clone возвращает копию с независимым списком этапов.
func (c *Contract) Clone() *Contract {
	cp := *c
	cp.Milestones = make([]Milestone, len(c.Milestones))
	copy(cp.Milestones, c.Milestones)
	if c.EndDate != nil {
		end := *c.EndDate
		cp.EndDate = &end
	}
	return &cp
}

// PaymentConfirmation хранит запись о подтверждённом платеже для защиты от повторов.
type PaymentConfirmation struct {
	ContractID     uuid.UUID
	IdempotencyKey string
	Amount         float64
	MilestoneID    *uuid.UUID
	IntentID       *uuid.UUID
	CreatedAt      time.Time
}
