package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

func TestMilestoneStatus_ForwardOnly(t *testing.T) {
	assert.True(t, MilestoneStatusPending.CanTransitionTo(MilestoneStatusCompleted))
	assert.True(t, MilestoneStatusCompleted.CanTransitionTo(MilestoneStatusPaid))

	assert.False(t, MilestoneStatusPending.CanTransitionTo(MilestoneStatusPaid))
	assert.False(t, MilestoneStatusPaid.CanTransitionTo(MilestoneStatusPending))
	assert.False(t, MilestoneStatusPaid.CanTransitionTo(MilestoneStatusCompleted))
	assert.False(t, MilestoneStatusCompleted.CanTransitionTo(MilestoneStatusPending))
}

func TestBidStatus_OnlyFromPending(t *testing.T) {
	assert.True(t, BidStatusPending.CanTransitionTo(BidStatusAccepted))
	assert.True(t, BidStatusPending.CanTransitionTo(BidStatusRejected))
	assert.False(t, BidStatusRejected.CanTransitionTo(BidStatusAccepted))
	assert.False(t, BidStatusAccepted.CanTransitionTo(BidStatusRejected))
}

func TestContractStatus_TerminalStates(t *testing.T) {
	assert.True(t, ContractStatusActive.CanTransitionTo(ContractStatusCompleted))
	assert.False(t, ContractStatusCompleted.CanTransitionTo(ContractStatusActive))
	assert.False(t, ContractStatusCancelled.CanTransitionTo(ContractStatusCompleted))
}

func TestProjectStatus_HasAssignment(t *testing.T) {
	assert.False(t, ProjectStatusOpen.HasAssignment())
	assert.True(t, ProjectStatusInProgress.HasAssignment())
	assert.True(t, ProjectStatusCompleted.HasAssignment())
	assert.False(t, ProjectStatusCancelled.HasAssignment())
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(0, 4500))
	assert.Equal(t, PaymentStatusPartial, DerivePaymentStatus(1000, 4500))
	assert.Equal(t, PaymentStatusCompleted, DerivePaymentStatus(4500, 4500))
	assert.Equal(t, PaymentStatusCompleted, DerivePaymentStatus(5000, 4500))
}

func TestVocabularies(t *testing.T) {
	_, err := NewCategory("data-science")
	assert.NoError(t, err)

	_, err = NewCategory("gardening")
	assert.True(t, apperror.IsValidation(err))

	_, err = NewDeliveryTime("2-to-4-weeks")
	assert.NoError(t, err)

	// у проекта и заявки разные наборы корзин
	_, err = NewDeliveryTime("1-to-4-weeks")
	assert.True(t, apperror.IsValidation(err))
	_, err = NewDuration("1-to-2-weeks")
	assert.True(t, apperror.IsValidation(err))
}

func TestNewBudget(t *testing.T) {
	b, err := NewBudget(5000, "fixed")
	assert.NoError(t, err)
	assert.Equal(t, 5000.0, b.Amount)

	_, err = NewBudget(-1, "weekly")
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "budget")
	assert.Contains(t, appErr.Fields, "budget_type")
}
