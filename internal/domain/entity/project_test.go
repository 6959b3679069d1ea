package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(uuid.New(), ProjectDraft{
		Title:       "Mobile app",
		Description: "Delivery app for a bakery",
		Category:    "mobile-development",
		Budget:      3000,
		BudgetType:  "fixed",
		Duration:    "1-to-3-months",
	})
	require.NoError(t, err)
	return p
}

func TestProject_CompleteRequiresFreelancer(t *testing.T) {
	p := newTestProject(t)
	p.Status = valueobject.ProjectStatusInProgress

	err := p.Complete()
	assert.ErrorIs(t, err, apperror.ErrNoAssignment)
	assert.Equal(t, valueobject.ProjectStatusInProgress, p.Status)
}

func TestProject_AssignThenComplete(t *testing.T) {
	p := newTestProject(t)
	freelancerID := uuid.New()

	require.NoError(t, p.AssignFreelancer(freelancerID))
	assert.True(t, p.IsAssignedTo(freelancerID))
	require.NoError(t, p.Complete())
	assert.Equal(t, valueobject.ProjectStatusCompleted, p.Status)

	assert.ErrorIs(t, p.AssignFreelancer(uuid.New()), apperror.ErrProjectNotOpen)
}
