package message_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/memory"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/message"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []entity.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func seedProject(t *testing.T, store *memory.Store, clientID uuid.UUID, freelancerID *uuid.UUID) *entity.Project {
	t.Helper()
	project, err := entity.NewProject(clientID, entity.ProjectDraft{
		Title:       "Landing page",
		Description: "Landing page for a coffee shop",
		Category:    "web-development",
		Budget:      800,
		BudgetType:  "fixed",
		Duration:    "less-than-1-week",
	})
	require.NoError(t, err)
	if freelancerID != nil {
		require.NoError(t, project.AssignFreelancer(*freelancerID))
	}
	require.NoError(t, store.Projects().Create(context.Background(), project))
	return project
}

func TestSendMessageUseCase_ResolvesReceiver(t *testing.T) {
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	clientID, freelancerID := uuid.New(), uuid.New()
	project := seedProject(t, store, clientID, &freelancerID)
	uc := message.NewSendMessageUseCase(store.Projects(), store.Messages(), notifier)
	ctx := context.Background()

	fromClient, err := uc.Execute(ctx, message.SendMessageInput{ProjectID: project.ID, SenderID: clientID, Content: "Привет!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, freelancerID, fromClient.ReceiverID)
	assert.False(t, fromClient.IsRead)

	fromFreelancer, err := uc.Execute(ctx, message.SendMessageInput{ProjectID: project.ID, SenderID: freelancerID, Content: "Добрый день"})
	require.NoError(t, err)
	assert.Equal(t, clientID, fromFreelancer.ReceiverID)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, entity.EventMessageSent, notifier.sent[0].Event)
	assert.Equal(t, freelancerID, notifier.sent[0].UserID)
	assert.Equal(t, clientID, notifier.sent[1].UserID)
}

func TestSendMessageUseCase_Errors(t *testing.T) {
	store := memory.NewStore()
	clientID, freelancerID := uuid.New(), uuid.New()
	unassigned := seedProject(t, store, clientID, nil)
	assigned := seedProject(t, store, clientID, &freelancerID)
	uc := message.NewSendMessageUseCase(store.Projects(), store.Messages(), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input message.SendMessageInput
		check func(error) bool
	}{
		{"no freelancer assigned", message.SendMessageInput{ProjectID: unassigned.ID, SenderID: clientID, Content: "hello"}, apperror.IsConflict},
		{"stranger", message.SendMessageInput{ProjectID: assigned.ID, SenderID: uuid.New(), Content: "hello"}, apperror.IsForbidden},
		{"empty content", message.SendMessageInput{ProjectID: assigned.ID, SenderID: clientID, Content: "   "}, apperror.IsValidation},
		{"unknown project", message.SendMessageInput{ProjectID: uuid.New(), SenderID: clientID, Content: "hello"}, apperror.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.input)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	msgs, err := store.Messages().FindByProjectID(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListMessagesUseCase_OrderedAndScoped(t *testing.T) {
	store := memory.NewStore()
	clientID, freelancerID := uuid.New(), uuid.New()
	project := seedProject(t, store, clientID, &freelancerID)
	send := message.NewSendMessageUseCase(store.Projects(), store.Messages(), nil)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		_, err := send.Execute(ctx, message.SendMessageInput{ProjectID: project.ID, SenderID: clientID, Content: content})
		require.NoError(t, err)
	}

	list := message.NewListMessagesUseCase(store.Projects(), store.Messages())
	msgs, err := list.Execute(ctx, project.ID, freelancerID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)

	_, err = list.Execute(ctx, project.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}

func TestMarkReadUseCase(t *testing.T) {
	store := memory.NewStore()
	clientID, freelancerID := uuid.New(), uuid.New()
	project := seedProject(t, store, clientID, &freelancerID)
	ctx := context.Background()

	msg, err := message.NewSendMessageUseCase(store.Projects(), store.Messages(), nil).Execute(ctx, message.SendMessageInput{
		ProjectID: project.ID, SenderID: clientID, Content: "Макет готов",
	})
	require.NoError(t, err)

	uc := message.NewMarkReadUseCase(store.Messages())

	_, err = uc.Execute(ctx, msg.ID, clientID)
	assert.True(t, apperror.IsForbidden(err), "отправитель не может отметить своё сообщение")

	read, err := uc.Execute(ctx, msg.ID, freelancerID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	stored, err := store.Messages().FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)

	_, err = uc.Execute(ctx, uuid.New(), freelancerID)
	assert.True(t, apperror.IsNotFound(err))
}
