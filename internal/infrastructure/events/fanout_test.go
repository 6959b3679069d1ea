package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(ctx context.Context, n entity.Notification) error {
	c.calls++
	return c.err
}

func TestFanout_DeliversToAll(t *testing.T) {
	failing := &countingNotifier{err: errors.New("broker down")}
	ok := &countingNotifier{}

	err := Fanout{failing, nil, ok}.Notify(context.Background(), entity.NewNotification(entity.EventBidPlaced, uuid.New(), nil))

	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls, "ошибка первого получателя не должна блокировать второго")
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, Fanout{}.Notify(context.Background(), entity.Notification{}))
}
