package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// UserDirectoryAdapter читает таблицу users, которую ведёт сервис учётных записей.
type UserDirectoryAdapter struct {
	db *sqlx.DB
}

func NewUserDirectoryAdapter(db *sqlx.DB) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{db: db}
}

func (r *UserDirectoryAdapter) FindPublicByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.PublicUser, error) {
	result := make(map[uuid.UUID]entity.PublicUser, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	var rows []struct {
		ID          uuid.UUID `db:"id"`
		Username    string    `db:"username"`
		DisplayName *string   `db:"display_name"`
		Role        string    `db:"role"`
	}
	query := `SELECT id, username, display_name, role FROM users WHERE id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(keys)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователей")
	}

	for _, row := range rows {
		user := entity.PublicUser{ID: row.ID, Username: row.Username, Role: valueobject.Role(row.Role)}
		if row.DisplayName != nil {
			user.DisplayName = *row.DisplayName
		}
		result[row.ID] = user
	}
	return result, nil
}
