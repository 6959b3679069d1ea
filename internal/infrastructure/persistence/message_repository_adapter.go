package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type MessageRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMessageRepositoryAdapter(db *sqlx.DB) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db}
}

func (r *MessageRepositoryAdapter) Create(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (id, project_id, sender_id, receiver_id, content, attachments, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.ProjectID, msg.SenderID, msg.ReceiverID, msg.Content,
		pq.Array(msg.Attachments), msg.IsRead, msg.CreatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить сообщение")
	}
	return nil
}

func (r *MessageRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var row messageRow
	query := `SELECT id, project_id, sender_id, receiver_id, content, attachments, is_read, created_at FROM messages WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrMessageNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщение")
	}
	return row.toEntity(), nil
}

func (r *MessageRepositoryAdapter) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entity.Message, error) {
	var rows []messageRow
	query := `
		SELECT id, project_id, sender_id, receiver_id, content, attachments, is_read, created_at
		FROM messages WHERE project_id = $1 ORDER BY seq ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения")
	}
	result := make([]*entity.Message, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *MessageRepositoryAdapter) MarkRead(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отметить сообщение")
	}
	return expectOne(res, apperror.ErrMessageNotFound)
}

type messageRow struct {
	ID          uuid.UUID      `db:"id"`
	ProjectID   uuid.UUID      `db:"project_id"`
	SenderID    uuid.UUID      `db:"sender_id"`
	ReceiverID  uuid.UUID      `db:"receiver_id"`
	Content     string         `db:"content"`
	Attachments pq.StringArray `db:"attachments"`
	IsRead      bool           `db:"is_read"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (m *messageRow) toEntity() *entity.Message {
	return &entity.Message{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Content:     m.Content,
		Attachments: []string(m.Attachments),
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}
