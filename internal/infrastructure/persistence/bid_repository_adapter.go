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
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const bidColumns = `id, project_id, freelancer_id, amount, proposal, delivery_time, status, attachments, created_at, updated_at`

type BidRepositoryAdapter struct {
	db *sqlx.DB
}

func NewBidRepositoryAdapter(db *sqlx.DB) *BidRepositoryAdapter {
	return &BidRepositoryAdapter{db: db}
}

func (r *BidRepositoryAdapter) Create(ctx context.Context, bid *entity.Bid) error {
	query := `
		INSERT INTO bids (id, project_id, freelancer_id, amount, proposal, delivery_time, status, attachments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		bid.ID, bid.ProjectID, bid.FreelancerID, bid.Amount, bid.Proposal, string(bid.DeliveryTime),
		string(bid.Status), pq.Array(bid.Attachments), bid.CreatedAt, bid.UpdatedAt,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperror.ErrBidAlreadyExists
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку")
	}
	return nil
}

func (r *BidRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*entity.Bid, error) {
	var row bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE project_id = $1 AND freelancer_id = $2`
	if err := r.db.GetContext(ctx, &row, query, projectID, freelancerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	return row.toEntity(), nil
}

func (r *BidRepositoryAdapter) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entity.Bid, error) {
	var rows []bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE project_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}
	return toBidEntities(rows), nil
}

func (r *BidRepositoryAdapter) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Bid, error) {
	var rows []bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE freelancer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}
	return toBidEntities(rows), nil
}

func (r *BidRepositoryAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.BidStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bids SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку")
	}
	n, err := rowsAffected(res)
	if err != nil || n > 0 {
		return err
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return apperror.ErrBidNotPending
}

// CommitAcceptance выполняет принятие заявки одной транзакцией.
// Проект блокируется FOR UPDATE, поэтому параллельные принятия по одному проекту выстраиваются в очередь.
func (r *BidRepositoryAdapter) CommitAcceptance(ctx context.Context, acceptance *entity.Acceptance) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var projectStatus string
		err := tx.GetContext(ctx, &projectStatus, `SELECT status FROM projects WHERE id = $1 FOR UPDATE`, acceptance.Project.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrProjectNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заблокировать проект")
		}
		if projectStatus != string(valueobject.ProjectStatusOpen) {
			return apperror.ErrProjectNotOpen
		}

		bid := acceptance.Bid
		res, err := tx.ExecContext(ctx,
			`UPDATE bids SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending'`,
			bid.ID, string(bid.Status), bid.UpdatedAt,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять заявку")
		}
		if err := expectOne(res, apperror.ErrBidNotPending); err != nil {
			return err
		}

		project := acceptance.Project
		_, err = tx.ExecContext(ctx,
			`UPDATE projects SET freelancer_id = $2, status = $3, updated_at = $4 WHERE id = $1`,
			project.ID, project.FreelancerID, string(project.Status), project.UpdatedAt,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось назначить исполнителя")
		}

		if err := insertContract(ctx, tx, acceptance.Contract); err != nil {
			return err
		}

		var rejected []bidRow
		err = tx.SelectContext(ctx, &rejected, `
			UPDATE bids SET status = 'rejected', updated_at = NOW()
			WHERE project_id = $1 AND id <> $2 AND status = 'pending'
			RETURNING `+bidColumns,
			project.ID, bid.ID,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить остальные заявки")
		}
		acceptance.Rejected = toBidEntities(rejected)
		return nil
	})
}

type bidRow struct {
	ID           uuid.UUID      `db:"id"`
	ProjectID    uuid.UUID      `db:"project_id"`
	FreelancerID uuid.UUID      `db:"freelancer_id"`
	Amount       float64        `db:"amount"`
	Proposal     string         `db:"proposal"`
	DeliveryTime string         `db:"delivery_time"`
	Status       string         `db:"status"`
	Attachments  pq.StringArray `db:"attachments"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (b *bidRow) toEntity() *entity.Bid {
	return &entity.Bid{
		ID:           b.ID,
		ProjectID:    b.ProjectID,
		FreelancerID: b.FreelancerID,
		Amount:       b.Amount,
		Proposal:     b.Proposal,
		DeliveryTime: valueobject.DeliveryTime(b.DeliveryTime),
		Status:       valueobject.BidStatus(b.Status),
		Attachments:  []string(b.Attachments),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toBidEntities(rows []bidRow) []*entity.Bid {
	result := make([]*entity.Bid, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
