package valueobject

import "github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"

type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusOpen, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

func (s ProjectStatus) CanTransitionTo(newStatus ProjectStatus) bool {
	transitions := map[ProjectStatus][]ProjectStatus{
		ProjectStatusOpen:       {ProjectStatusInProgress, ProjectStatusCancelled},
		ProjectStatusInProgress: {ProjectStatusCompleted, ProjectStatusCancelled},
		ProjectStatusCompleted:  {},
		ProjectStatusCancelled:  {},
	}
	return allowed(transitions[s], newStatus)
}

// HasAssignment сообщает, должен ли в этом статусе быть назначен исполнитель.
func (s ProjectStatus) HasAssignment() bool {
	return s == ProjectStatusInProgress || s == ProjectStatusCompleted
}

func NewProjectStatus(status string) (ProjectStatus, error) {
	s := ProjectStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation(map[string]string{"status": "некорректный статус проекта"})
	}
	return s, nil
}

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected:
		return true
	}
	return false
}

func (s BidStatus) CanTransitionTo(newStatus BidStatus) bool {
	if s != BidStatusPending {
		return false
	}
	return newStatus == BidStatusAccepted || newStatus == BidStatusRejected
}

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusCancelled:
		return true
	}
	return false
}

func (s ContractStatus) CanTransitionTo(newStatus ContractStatus) bool {
	if s != ContractStatusActive {
		return false
	}
	return newStatus == ContractStatusCompleted || newStatus == ContractStatusCancelled
}

type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"
	MilestoneStatusCompleted MilestoneStatus = "completed"
	MilestoneStatusPaid      MilestoneStatus = "paid"
)

func (s MilestoneStatus) IsValid() bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusCompleted, MilestoneStatusPaid:
		return true
	}
	return false
}

// CanTransitionTo допускает только один шаг вперёд: pending -> completed -> paid.
func (s MilestoneStatus) CanTransitionTo(newStatus MilestoneStatus) bool {
	transitions := map[MilestoneStatus][]MilestoneStatus{
		MilestoneStatusPending:   {MilestoneStatusCompleted},
		MilestoneStatusCompleted: {MilestoneStatusPaid},
		MilestoneStatusPaid:      {},
	}
	return allowed(transitions[s], newStatus)
}

func NewMilestoneStatus(status string) (MilestoneStatus, error) {
	s := MilestoneStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation(map[string]string{"status": "некорректный статус этапа"})
	}
	return s, nil
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusCompleted:
		return true
	}
	return false
}

// DerivePaymentStatus вычисляет статус оплаты по сумме поступивших платежей.
func DerivePaymentStatus(totalPaid, contractAmount float64) PaymentStatus {
	switch {
	case totalPaid <= 0:
		return PaymentStatusPending
	case totalPaid >= contractAmount:
		return PaymentStatusCompleted
	default:
		return PaymentStatusPartial
	}
}

func allowed[T comparable](list []T, target T) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
