package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const projectColumns = `id, client_id, freelancer_id, title, description, category, budget, budget_type,
	duration, skills, attachments, deadline, status, created_at, updated_at`

type ProjectRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProjectRepositoryAdapter(db *sqlx.DB) *ProjectRepositoryAdapter {
	return &ProjectRepositoryAdapter{db: db}
}

func (r *ProjectRepositoryAdapter) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (id, client_id, freelancer_id, title, description, category, budget, budget_type,
			duration, skills, attachments, deadline, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.ClientID, project.FreelancerID, project.Title, project.Description,
		string(project.Category), project.Budget.Amount, string(project.Budget.Type), string(project.Duration),
		pq.Array(project.Skills), pq.Array(project.Attachments), project.Deadline, string(project.Status),
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать проект")
	}
	return nil
}

func (r *ProjectRepositoryAdapter) UpdateDetails(ctx context.Context, project *entity.Project) error {
	query := `
		UPDATE projects SET title = $2, description = $3, category = $4, budget = $5, budget_type = $6,
			duration = $7, skills = $8, attachments = $9, deadline = $10, updated_at = $11
		WHERE id = $1 AND status = 'open'
	`
	res, err := r.db.ExecContext(ctx, query,
		project.ID, project.Title, project.Description, string(project.Category),
		project.Budget.Amount, string(project.Budget.Type), string(project.Duration),
		pq.Array(project.Skills), pq.Array(project.Attachments), project.Deadline, project.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить проект")
	}
	n, err := rowsAffected(res)
	if err != nil || n > 0 {
		return err
	}
	return r.missingOrNotOpen(ctx, project.ID, "редактировать можно только открытый проект")
}

func (r *ProjectRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var row projectRow
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}
	return row.toEntity(), nil
}

func (r *ProjectRepositoryAdapter) List(ctx context.Context, filter repository.ProjectFilter) ([]*entity.Project, int, error) {
	baseQuery := `FROM projects WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Category != nil {
		baseQuery += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, string(*filter.Category))
		argNum++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}
	if filter.ClientID != nil {
		baseQuery += fmt.Sprintf(" AND client_id = $%d", argNum)
		args = append(args, *filter.ClientID)
		argNum++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать проекты")
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		projectColumns, baseQuery, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проекты")
	}

	projects := make([]*entity.Project, len(rows))
	for i := range rows {
		projects[i] = rows[i].toEntity()
	}
	return projects, total, nil
}

// Delete удаляет открытый проект. Заявки удаляются каскадом (ON DELETE CASCADE).
func (r *ProjectRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND status = 'open'`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить проект")
	}
	n, err := rowsAffected(res)
	if err != nil || n > 0 {
		return err
	}
	return r.missingOrNotOpen(ctx, id, "удалить можно только открытый проект")
}

// missingOrNotOpen уточняет, почему условное изменение не затронуло строк.
func (r *ProjectRepositoryAdapter) missingOrNotOpen(ctx context.Context, id uuid.UUID, message string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return apperror.New(apperror.ErrCodeConflict, message)
}

type projectRow struct {
	ID           uuid.UUID      `db:"id"`
	ClientID     uuid.UUID      `db:"client_id"`
	FreelancerID *uuid.UUID     `db:"freelancer_id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Category     string         `db:"category"`
	Budget       float64        `db:"budget"`
	BudgetType   string         `db:"budget_type"`
	Duration     string         `db:"duration"`
	Skills       pq.StringArray `db:"skills"`
	Attachments  pq.StringArray `db:"attachments"`
	Deadline     *time.Time     `db:"deadline"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (p *projectRow) toEntity() *entity.Project {
	return &entity.Project{
		ID:           p.ID,
		ClientID:     p.ClientID,
		FreelancerID: p.FreelancerID,
		Title:        p.Title,
		Description:  p.Description,
		Category:     valueobject.Category(p.Category),
		Budget:       valueobject.Budget{Amount: p.Budget, Type: valueobject.BudgetType(p.BudgetType)},
		Duration:     valueobject.Duration(p.Duration),
		Skills:       []string(p.Skills),
		Attachments:  []string(p.Attachments),
		Deadline:     p.Deadline,
		Status:       valueobject.ProjectStatus(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
