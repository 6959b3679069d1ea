package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.projects[project.ID] = record[*entity.Project]{value: copyProject(project), seq: r.s.nextSeq()}
	return nil
}

func (r *ProjectRepository) UpdateDetails(ctx context.Context, project *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.projects[project.ID]
	if !ok {
		return apperror.ErrProjectNotFound
	}
	if rec.value.Status != valueobject.ProjectStatusOpen {
		return apperror.New(apperror.ErrCodeConflict, "редактировать можно только открытый проект")
	}

	stored := copyProject(project)
	stored.Status = rec.value.Status
	stored.FreelancerID = rec.value.FreelancerID
	stored.ClientID = rec.value.ClientID
	stored.CreatedAt = rec.value.CreatedAt
	rec.value = stored
	r.s.projects[project.ID] = rec
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.projects[id]
	if !ok {
		return nil, apperror.ErrProjectNotFound
	}
	return copyProject(rec.value), nil
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]*entity.Project, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]record[*entity.Project], 0)
	for _, rec := range r.s.projects {
		p := rec.value
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.ClientID != nil && p.ClientID != *filter.ClientID {
			continue
		}
		matched = append(matched, rec)
	}
	newestFirst(matched, func(p *entity.Project) time.Time { return p.CreatedAt })

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	result := make([]*entity.Project, 0, end-start)
	for _, rec := range matched[start:end] {
		result = append(result, copyProject(rec.value))
	}
	return result, total, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.projects[id]
	if !ok {
		return apperror.ErrProjectNotFound
	}
	if rec.value.Status != valueobject.ProjectStatusOpen {
		return apperror.New(apperror.ErrCodeConflict, "удалить можно только открытый проект")
	}

	for bidID, b := range r.s.bids {
		if b.value.ProjectID == id {
			delete(r.s.bids, bidID)
		}
	}
	delete(r.s.projects, id)
	return nil
}

type BidRepository struct{ s *Store }

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range r.s.bids {
		if rec.value.ProjectID == bid.ProjectID && rec.value.FreelancerID == bid.FreelancerID {
			return apperror.ErrBidAlreadyExists
		}
	}
	r.s.bids[bid.ID] = record[*entity.Bid]{value: copyBid(bid), seq: r.s.nextSeq()}
	return nil
}

func (r *BidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.bids[id]
	if !ok {
		return nil, apperror.ErrBidNotFound
	}
	return copyBid(rec.value), nil
}

func (r *BidRepository) FindByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*entity.Bid, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.bids {
		if rec.value.ProjectID == projectID && rec.value.FreelancerID == freelancerID {
			return copyBid(rec.value), nil
		}
	}
	return nil, nil
}

func (r *BidRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entity.Bid, error) {
	return r.filter(func(b *entity.Bid) bool { return b.ProjectID == projectID }), nil
}

func (r *BidRepository) FindByFreelancerID(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Bid, error) {
	return r.filter(func(b *entity.Bid) bool { return b.FreelancerID == freelancerID }), nil
}

func (r *BidRepository) filter(match func(*entity.Bid) bool) []*entity.Bid {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]record[*entity.Bid], 0)
	for _, rec := range r.s.bids {
		if match(rec.value) {
			matched = append(matched, rec)
		}
	}
	newestFirst(matched, func(b *entity.Bid) time.Time { return b.CreatedAt })

	result := make([]*entity.Bid, 0, len(matched))
	for _, rec := range matched {
		result = append(result, copyBid(rec.value))
	}
	return result
}

func (r *BidRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to valueobject.BidStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.bids[id]
	if !ok {
		return apperror.ErrBidNotFound
	}
	if rec.value.Status != from {
		return apperror.ErrBidNotPending
	}
	updated := copyBid(rec.value)
	updated.Status = to
	updated.UpdatedAt = time.Now()
	rec.value = updated
	r.s.bids[id] = rec
	return nil
}

func (r *BidRepository) CommitAcceptance(ctx context.Context, acceptance *entity.Acceptance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	bidRec, ok := r.s.bids[acceptance.Bid.ID]
	if !ok {
		return apperror.ErrBidNotFound
	}
	if !bidRec.value.IsPending() {
		return apperror.ErrBidNotPending
	}
	projectRec, ok := r.s.projects[acceptance.Project.ID]
	if !ok {
		return apperror.ErrProjectNotFound
	}
	if projectRec.value.Status != valueobject.ProjectStatusOpen {
		return apperror.ErrProjectNotOpen
	}

	now := time.Now()
	bidRec.value = copyBid(acceptance.Bid)
	r.s.bids[acceptance.Bid.ID] = bidRec

	projectRec.value = copyProject(acceptance.Project)
	r.s.projects[acceptance.Project.ID] = projectRec

	r.s.contracts[acceptance.Contract.ID] = record[*entity.Contract]{value: acceptance.Contract.Clone(), seq: r.s.nextSeq()}

	acceptance.Rejected = acceptance.Rejected[:0]
	for id, rec := range r.s.bids {
		b := rec.value
		if b.ProjectID != acceptance.Project.ID || id == acceptance.Bid.ID || !b.IsPending() {
			continue
		}
		rejected := copyBid(b)
		rejected.Status = valueobject.BidStatusRejected
		rejected.UpdatedAt = now
		rec.value = rejected
		r.s.bids[id] = rec
		acceptance.Rejected = append(acceptance.Rejected, copyBid(rejected))
	}
	return nil
}

type ContractRepository struct{ s *Store }

func (r *ContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.contracts[id]
	if !ok {
		return nil, apperror.ErrContractNotFound
	}
	return rec.value.Clone(), nil
}

func (r *ContractRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) (*entity.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.contracts {
		if rec.value.ProjectID == projectID {
			return rec.value.Clone(), nil
		}
	}
	return nil, apperror.ErrContractNotFound
}

func (r *ContractRepository) FindByParty(ctx context.Context, userID uuid.UUID) ([]*entity.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]record[*entity.Contract], 0)
	for _, rec := range r.s.contracts {
		if rec.value.IsParty(userID) {
			matched = append(matched, rec)
		}
	}
	newestFirst(matched, func(c *entity.Contract) time.Time { return c.CreatedAt })

	result := make([]*entity.Contract, 0, len(matched))
	for _, rec := range matched {
		result = append(result, rec.value.Clone())
	}
	return result, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract *entity.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.swap(contract)
}

func (r *ContractRepository) CommitPayment(ctx context.Context, contract *entity.Contract, confirmation *entity.PaymentConfirmation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var key confirmationKey
	if confirmation != nil && confirmation.IdempotencyKey != "" {
		key = confirmationKey{contractID: contract.ID, key: confirmation.IdempotencyKey}
		if _, exists := r.s.confirmations[key]; exists {
			return apperror.ErrConcurrentUpdate
		}
	}
	if confirmation != nil && confirmation.IntentID != nil {
		if _, exists := r.s.byIntent[*confirmation.IntentID]; exists {
			return apperror.ErrConcurrentUpdate
		}
	}

	if err := r.swap(contract); err != nil {
		return err
	}
	if confirmation == nil {
		return nil
	}
	cp := *confirmation
	if key.key != "" {
		r.s.confirmations[key] = &cp
	}
	if cp.IntentID != nil {
		r.s.byIntent[*cp.IntentID] = &cp
	}
	return nil
}

func (r *ContractRepository) CommitCompletion(ctx context.Context, contract *entity.Contract, project *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	projectRec, ok := r.s.projects[project.ID]
	if !ok {
		return apperror.ErrProjectNotFound
	}
	if projectRec.value.Status != valueobject.ProjectStatusInProgress {
		return apperror.New(apperror.ErrCodeConflict, "проект не находится в работе")
	}
	if err := r.swap(contract); err != nil {
		return err
	}
	projectRec.value = copyProject(project)
	r.s.projects[project.ID] = projectRec
	return nil
}

func (r *ContractRepository) FindPaymentConfirmation(ctx context.Context, contractID uuid.UUID, key string) (*entity.PaymentConfirmation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.confirmations[confirmationKey{contractID: contractID, key: key}]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *ContractRepository) FindConfirmationByIntent(ctx context.Context, intentID uuid.UUID) (*entity.PaymentConfirmation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.byIntent[intentID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// swap сохраняет контракт, если версия не изменилась. Вызывается под блокировкой.
func (r *ContractRepository) swap(contract *entity.Contract) error {
	rec, ok := r.s.contracts[contract.ID]
	if !ok {
		return apperror.ErrContractNotFound
	}
	if rec.value.Version != contract.Version {
		return apperror.ErrConcurrentUpdate
	}
	contract.Version++
	rec.value = contract.Clone()
	r.s.contracts[contract.ID] = rec
	return nil
}

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages[message.ID] = record[*entity.Message]{value: copyMessage(message), seq: r.s.nextSeq()}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.messages[id]
	if !ok {
		return nil, apperror.ErrMessageNotFound
	}
	return copyMessage(rec.value), nil
}

func (r *MessageRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*entity.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]record[*entity.Message], 0)
	for _, rec := range r.s.messages {
		if rec.value.ProjectID == projectID {
			matched = append(matched, rec)
		}
	}
	newestFirst(matched, func(m *entity.Message) time.Time { return m.CreatedAt })

	// сообщения отдаются в порядке создания
	result := make([]*entity.Message, len(matched))
	for i, rec := range matched {
		result[len(matched)-1-i] = copyMessage(rec.value)
	}
	return result, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.messages[id]
	if !ok {
		return apperror.ErrMessageNotFound
	}
	updated := copyMessage(rec.value)
	updated.IsRead = true
	rec.value = updated
	r.s.messages[id] = rec
	return nil
}

type UserDirectory struct{ s *Store }

// Add регистрирует пользователя. Используется для запуска без БД и в тестах.
func (d *UserDirectory) Add(user entity.PublicUser) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.users[user.ID] = user
}

func (d *UserDirectory) FindPublicByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]entity.PublicUser, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	result := make(map[uuid.UUID]entity.PublicUser, len(ids))
	for _, id := range ids {
		if u, ok := d.s.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}
