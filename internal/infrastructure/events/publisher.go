// Package events доставляет уведомления о событиях маркетплейса во внешние каналы.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

const ExchangeName = "marketplace.events"

// Publisher публикует события в topic-exchange RabbitMQ. Ключ маршрутизации равен имени события.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: не удалось подключиться к RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: не удалось открыть канал: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: не удалось объявить exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// envelope описывает формат сообщения в очереди.
type envelope struct {
	ID         uuid.UUID      `json:"id"`
	Event      string         `json:"event"`
	UserID     uuid.UUID      `json:"user_id"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (p *Publisher) Notify(ctx context.Context, n entity.Notification) error {
	body, err := json.Marshal(envelope{
		ID:         uuid.New(),
		Event:      n.Event,
		UserID:     n.UserID,
		Payload:    n.Payload,
		OccurredAt: n.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("events: не удалось сериализовать событие: %w", err)
	}

	// канал AMQP нельзя использовать из нескольких горутин одновременно
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn.IsClosed() {
		return fmt.Errorf("events: соединение с RabbitMQ закрыто")
	}

	return p.channel.PublishWithContext(ctx,
		ExchangeName,
		n.Event,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    n.OccurredAt,
		},
	)
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
