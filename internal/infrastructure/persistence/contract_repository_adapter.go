package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const contractColumns = `id, project_id, client_id, freelancer_id, bid_id, amount, status, milestones,
	payment_status, total_paid, start_date, end_date, version, created_at, updated_at`

type ContractRepositoryAdapter struct {
	db *sqlx.DB
}

func NewContractRepositoryAdapter(db *sqlx.DB) *ContractRepositoryAdapter {
	return &ContractRepositoryAdapter{db: db}
}

func insertContract(ctx context.Context, tx *sqlx.Tx, c *entity.Contract) error {
	query := `
		INSERT INTO contracts (id, project_id, client_id, freelancer_id, bid_id, amount, status, milestones,
			payment_status, total_paid, start_date, end_date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := tx.ExecContext(ctx, query,
		c.ID, c.ProjectID, c.ClientID, c.FreelancerID, c.BidID, c.Amount, string(c.Status),
		milestoneList(c.Milestones), string(c.PaymentStatus), c.TotalPaid, c.StartDate, c.EndDate,
		c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperror.New(apperror.ErrCodeConflict, "по проекту уже заключён контракт")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать контракт")
	}
	return nil
}

func (r *ContractRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	return r.findOne(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
}

func (r *ContractRepositoryAdapter) FindByProjectID(ctx context.Context, projectID uuid.UUID) (*entity.Contract, error) {
	return r.findOne(ctx, `SELECT `+contractColumns+` FROM contracts WHERE project_id = $1`, projectID)
}

func (r *ContractRepositoryAdapter) findOne(ctx context.Context, query string, arg interface{}) (*entity.Contract, error) {
	var row contractRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrContractNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить контракт")
	}
	return row.toEntity(), nil
}

func (r *ContractRepositoryAdapter) FindByParty(ctx context.Context, userID uuid.UUID) ([]*entity.Contract, error) {
	var rows []contractRow
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE client_id = $1 OR freelancer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить контракты")
	}
	result := make([]*entity.Contract, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *ContractRepositoryAdapter) Update(ctx context.Context, contract *entity.Contract) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return updateContract(ctx, tx, contract)
	})
}

// CommitPayment сохраняет контракт и ключ идемпотентности. Повторный ключ или повторное
// намерение означают, что параллельный запрос уже учёл платёж: вызывающий перечитает контракт и вернёт его.
func (r *ContractRepositoryAdapter) CommitPayment(ctx context.Context, contract *entity.Contract, confirmation *entity.PaymentConfirmation) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if confirmation != nil && confirmation.IdempotencyKey != "" {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO payment_confirmations (contract_id, idempotency_key, amount, milestone_id, intent_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				confirmation.ContractID, confirmation.IdempotencyKey, confirmation.Amount,
				confirmation.MilestoneID, confirmation.IntentID, confirmation.CreatedAt,
			)
			if err != nil {
				if _, ok := isUniqueViolation(err); ok {
					return apperror.ErrConcurrentUpdate
				}
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить подтверждение платежа")
			}
		}
		return updateContract(ctx, tx, contract)
	})
}

func (r *ContractRepositoryAdapter) CommitCompletion(ctx context.Context, contract *entity.Contract, project *entity.Project) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := updateContract(ctx, tx, contract); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'in-progress'`,
			project.ID, string(project.Status), project.UpdatedAt,
		)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить проект")
		}
		return expectOne(res, apperror.New(apperror.ErrCodeConflict, "проект не находится в работе"))
	})
}

type confirmationRow struct {
	ContractID     uuid.UUID  `db:"contract_id"`
	IdempotencyKey string     `db:"idempotency_key"`
	Amount         float64    `db:"amount"`
	MilestoneID    *uuid.UUID `db:"milestone_id"`
	IntentID       *uuid.UUID `db:"intent_id"`
	CreatedAt      time.Time  `db:"created_at"`
}

const confirmationColumns = `contract_id, idempotency_key, amount, milestone_id, intent_id, created_at`

func (r *ContractRepositoryAdapter) FindPaymentConfirmation(ctx context.Context, contractID uuid.UUID, key string) (*entity.PaymentConfirmation, error) {
	query := `SELECT ` + confirmationColumns + ` FROM payment_confirmations WHERE contract_id = $1 AND idempotency_key = $2`
	return r.findConfirmation(ctx, query, contractID, key)
}

func (r *ContractRepositoryAdapter) FindConfirmationByIntent(ctx context.Context, intentID uuid.UUID) (*entity.PaymentConfirmation, error) {
	query := `SELECT ` + confirmationColumns + ` FROM payment_confirmations WHERE intent_id = $1`
	return r.findConfirmation(ctx, query, intentID)
}

func (r *ContractRepositoryAdapter) findConfirmation(ctx context.Context, query string, args ...any) (*entity.PaymentConfirmation, error) {
	var row confirmationRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить подтверждение платежа")
	}
	return &entity.PaymentConfirmation{
		ContractID:     row.ContractID,
		IdempotencyKey: row.IdempotencyKey,
		Amount:         row.Amount,
		MilestoneID:    row.MilestoneID,
		IntentID:       row.IntentID,
		CreatedAt:      row.CreatedAt,
	}, nil
}

// updateContract записывает контракт, только если версия в базе совпадает с contract.Version.
func updateContract(ctx context.Context, tx *sqlx.Tx, c *entity.Contract) error {
	query := `
		UPDATE contracts SET status = $3, milestones = $4, payment_status = $5, total_paid = $6,
			end_date = $7, updated_at = $8, version = version + 1
		WHERE id = $1 AND version = $2
	`
	res, err := tx.ExecContext(ctx, query,
		c.ID, c.Version, string(c.Status), milestoneList(c.Milestones), string(c.PaymentStatus),
		c.TotalPaid, c.EndDate, c.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить контракт")
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM contracts WHERE id = $1)`, c.ID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить контракт")
		}
		if !exists {
			return apperror.ErrContractNotFound
		}
		return apperror.ErrConcurrentUpdate
	}
	c.Version++
	return nil
}

// milestoneList хранит этапы контракта в колонке JSONB.
type milestoneList []entity.Milestone

func (m milestoneList) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]entity.Milestone(m))
}

func (m *milestoneList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = milestoneList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("milestones: неожиданный тип %T", src)
	}
	return json.Unmarshal(data, (*[]entity.Milestone)(m))
}

type contractRow struct {
	ID            uuid.UUID     `db:"id"`
	ProjectID     uuid.UUID     `db:"project_id"`
	ClientID      uuid.UUID     `db:"client_id"`
	FreelancerID  uuid.UUID     `db:"freelancer_id"`
	BidID         uuid.UUID     `db:"bid_id"`
	Amount        float64       `db:"amount"`
	Status        string        `db:"status"`
	Milestones    milestoneList `db:"milestones"`
	PaymentStatus string        `db:"payment_status"`
	TotalPaid     float64       `db:"total_paid"`
	StartDate     time.Time     `db:"start_date"`
	EndDate       *time.Time    `db:"end_date"`
	Version       int           `db:"version"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

func (c *contractRow) toEntity() *entity.Contract {
	return &entity.Contract{
		ID:            c.ID,
		ProjectID:     c.ProjectID,
		ClientID:      c.ClientID,
		FreelancerID:  c.FreelancerID,
		BidID:         c.BidID,
		Amount:        c.Amount,
		Status:        valueobject.ContractStatus(c.Status),
		Milestones:    []entity.Milestone(c.Milestones),
		PaymentStatus: valueobject.PaymentStatus(c.PaymentStatus),
		TotalPaid:     c.TotalPaid,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
