package project_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/memory"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/project"
)

func validDraft() entity.ProjectDraft {
	return entity.ProjectDraft{
		Title:       "Online store",
		Description: "Need an online store for handmade goods",
		Category:    "web-development",
		Budget:      2500,
		BudgetType:  "fixed",
		Duration:    "1-to-3-months",
		Skills:      []string{" Go ", "React", ""},
	}
}

func client() entity.Actor {
	return entity.Actor{ID: uuid.New(), Role: valueobject.RoleClient}
}

func TestCreateProjectUseCase_Success(t *testing.T) {
	store := memory.NewStore()
	uc := project.NewCreateProjectUseCase(store.Projects())
	actor := client()

	p, err := uc.Execute(context.Background(), actor, validDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, actor.ID, p.ClientID)
	assert.Equal(t, valueobject.ProjectStatusOpen, p.Status)
	assert.Nil(t, p.FreelancerID)
	assert.Equal(t, []string{"Go", "React"}, p.Skills)

	stored, err := store.Projects().FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, stored.Title)
}

func TestCreateProjectUseCase_Validation(t *testing.T) {
	uc := project.NewCreateProjectUseCase(memory.NewStore().Projects())

	draft := validDraft()
	draft.Title = ""
	draft.Budget = -1
	draft.Category = "gardening"

	_, err := uc.Execute(context.Background(), client(), draft)

	require.True(t, apperror.IsValidation(err))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "title")
	assert.Contains(t, appErr.Fields, "budget")
	assert.Contains(t, appErr.Fields, "category")
}

func TestCreateProjectUseCase_FreelancerForbidden(t *testing.T) {
	uc := project.NewCreateProjectUseCase(memory.NewStore().Projects())

	_, err := uc.Execute(context.Background(), entity.Actor{ID: uuid.New(), Role: valueobject.RoleFreelancer}, validDraft())

	assert.True(t, apperror.IsForbidden(err))
}

func TestUpdateProjectUseCase(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	actor := client()
	created, err := project.NewCreateProjectUseCase(store.Projects()).Execute(ctx, actor, validDraft())
	require.NoError(t, err)

	uc := project.NewUpdateProjectUseCase(store.Projects())
	draft := validDraft()
	draft.Title = "Online store v2"

	_, err = uc.Execute(ctx, created.ID, uuid.New(), draft)
	assert.True(t, apperror.IsForbidden(err))

	updated, err := uc.Execute(ctx, created.ID, actor.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, "Online store v2", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

// acceptedProject создаёт проект с принятой заявкой.
func acceptedProject(t *testing.T, store *memory.Store) (*entity.Project, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	actor := client()
	p, err := project.NewCreateProjectUseCase(store.Projects()).Execute(ctx, actor, validDraft())
	require.NoError(t, err)

	freelancerID := uuid.New()
	placed, err := bid.NewPlaceBidUseCase(store.Bids(), store.Projects(), nil).Execute(ctx, bid.PlaceBidInput{
		ProjectID:    p.ID,
		Actor:        entity.Actor{ID: freelancerID, Role: valueobject.RoleFreelancer},
		Amount:       2400,
		Proposal:     "I have built several stores like this",
		DeliveryTime: "1-to-2-months",
	})
	require.NoError(t, err)
	_, err = bid.NewAcceptBidUseCase(store.Bids(), store.Projects(), nil, 0).Execute(ctx, placed.ID, actor.ID)
	require.NoError(t, err)

	p, err = store.Projects().FindByID(ctx, p.ID)
	require.NoError(t, err)
	return p, freelancerID
}

func TestUpdateProjectUseCase_NotOpen(t *testing.T) {
	store := memory.NewStore()
	p, _ := acceptedProject(t, store)

	_, err := project.NewUpdateProjectUseCase(store.Projects()).Execute(context.Background(), p.ID, p.ClientID, validDraft())

	assert.True(t, apperror.IsConflict(err))
}

func TestDeleteProjectUseCase_CascadesBids(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	actor := client()
	p, err := project.NewCreateProjectUseCase(store.Projects()).Execute(ctx, actor, validDraft())
	require.NoError(t, err)

	placed, err := bid.NewPlaceBidUseCase(store.Bids(), store.Projects(), nil).Execute(ctx, bid.PlaceBidInput{
		ProjectID:    p.ID,
		Actor:        entity.Actor{ID: uuid.New(), Role: valueobject.RoleFreelancer},
		Amount:       2000,
		Proposal:     "Can do it in three weeks",
		DeliveryTime: "2-to-4-weeks",
	})
	require.NoError(t, err)

	uc := project.NewDeleteProjectUseCase(store.Projects())
	assert.True(t, apperror.IsForbidden(uc.Execute(ctx, p.ID, uuid.New())))

	require.NoError(t, uc.Execute(ctx, p.ID, actor.ID))

	_, err = store.Projects().FindByID(ctx, p.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = store.Bids().FindByID(ctx, placed.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteProjectUseCase_NotOpen(t *testing.T) {
	store := memory.NewStore()
	p, _ := acceptedProject(t, store)

	err := project.NewDeleteProjectUseCase(store.Projects()).Execute(context.Background(), p.ID, p.ClientID)

	assert.True(t, apperror.IsConflict(err))
}

func TestListProjectsUseCase_FiltersAndPaging(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	create := project.NewCreateProjectUseCase(store.Projects())
	owner := client()

	for i := 0; i < 3; i++ {
		_, err := create.Execute(ctx, owner, validDraft())
		require.NoError(t, err)
	}
	design := validDraft()
	design.Category = "design"
	_, err := create.Execute(ctx, client(), design)
	require.NoError(t, err)

	uc := project.NewListProjectsUseCase(store.Projects())

	all, total, err := uc.Execute(ctx, project.ListProjectsInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, all, 4)
	assert.Equal(t, valueobject.Category("design"), all[0].Category, "новые проекты первыми")

	page, total, err := uc.Execute(ctx, project.ListProjectsInput{Category: "web-development", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)

	mine, total, err := uc.Execute(ctx, project.ListProjectsInput{ClientID: &owner.ID, Status: "open"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, mine, 3)

	_, _, err = uc.Execute(ctx, project.ListProjectsInput{Status: "archived"})
	assert.True(t, apperror.IsValidation(err))
}

func TestGetProjectUseCase_Details(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	p, freelancerID := acceptedProject(t, store)
	store.Users().Add(entity.PublicUser{ID: p.ClientID, Username: "client", Role: valueobject.RoleClient})
	store.Users().Add(entity.PublicUser{ID: freelancerID, Username: "dev", Role: valueobject.RoleFreelancer})

	uc := project.NewGetProjectUseCase(store.Projects(), store.Bids(), store.Contracts(), store.Users())
	details, err := uc.Execute(ctx, p.ID)
	require.NoError(t, err)

	require.NotNil(t, details.Client)
	assert.Equal(t, "client", details.Client.Username)
	require.NotNil(t, details.Freelancer)
	assert.Equal(t, "dev", details.Freelancer.Username)
	require.Len(t, details.Bids, 1)
	assert.Equal(t, valueobject.BidStatusAccepted, details.Bids[0].Bid.Status)
	require.NotNil(t, details.Contract)
	assert.Equal(t, 2400.0, details.Contract.Amount)

	_, err = uc.Execute(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}
