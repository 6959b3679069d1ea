package entity

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const (
	MinProposalLength = 10
	MaxProposalLength = 1000
)

type Bid struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	FreelancerID uuid.UUID
	Amount       float64
	Proposal     string
	DeliveryTime valueobject.DeliveryTime
	Status       valueobject.BidStatus
	Attachments  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBid(projectID, freelancerID uuid.UUID, amount float64, proposal, deliveryTime string, attachments []string) (*Bid, error) {
	fields := map[string]string{}

	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		fields["amount"] = "сумма не может быть отрицательной"
	}

	proposal = strings.TrimSpace(proposal)
	if n := utf8.RuneCountInString(proposal); n < MinProposalLength || n > MaxProposalLength {
		fields["proposal"] = "текст заявки должен содержать от 10 до 1000 символов"
	}

	delivery, err := valueobject.NewDeliveryTime(deliveryTime)
	if err != nil {
		fields["delivery_time"] = "некорректный срок выполнения"
	}

	attachments = normalizeList(attachments)
	if len(attachments) > MaxAttachments {
		fields["attachments"] = "слишком много вложений"
	}

	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	now := time.Now()
	return &Bid{
		ID:           uuid.New(),
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Amount:       valueobject.RoundCents(amount),
		Proposal:     proposal,
		DeliveryTime: delivery,
		Status:       valueobject.BidStatusPending,
		Attachments:  attachments,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (b *Bid) Accept() error {
	if !b.Status.CanTransitionTo(valueobject.BidStatusAccepted) {
		return apperror.ErrBidNotPending
	}
	b.Status = valueobject.BidStatusAccepted
	b.UpdatedAt = time.Now()
	return nil
}

func (b *Bid) Reject() error {
	if !b.Status.CanTransitionTo(valueobject.BidStatusRejected) {
		return apperror.ErrBidNotPending
	}
	b.Status = valueobject.BidStatusRejected
	b.UpdatedAt = time.Now()
	return nil
}

func (b *Bid) IsOwnedBy(userID uuid.UUID) bool {
	return b.FreelancerID == userID
}

func (b *Bid) IsPending() bool {
	return b.Status == valueobject.BidStatusPending
}

// Acceptance фиксируется хранилищем одной транзакцией.
type Acceptance struct {
	Bid      *Bid
	Project  *Project
	Contract *Contract
	// Rejected заполняется хранилищем: заявки, отклонённые вместе с принятием.
	Rejected []*Bid
}
