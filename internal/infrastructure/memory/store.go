// Package memory хранит данные маркетплейса в памяти процесса.
// Все изменения выполняются под одним мьютексом, поэтому составные операции
// (принятие заявки, платёж, завершение контракта) атомарны так же, как транзакции в PostgreSQL.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type record[T any] struct {
	value T
	seq   int64
}

type Store struct {
	mu  sync.RWMutex
	seq int64

	projects      map[uuid.UUID]record[*entity.Project]
	bids          map[uuid.UUID]record[*entity.Bid]
	contracts     map[uuid.UUID]record[*entity.Contract]
	messages      map[uuid.UUID]record[*entity.Message]
	intents       map[uuid.UUID]*entity.PaymentIntent
	confirmations map[confirmationKey]*entity.PaymentConfirmation
	byIntent      map[uuid.UUID]*entity.PaymentConfirmation
	users         map[uuid.UUID]entity.PublicUser
}

type confirmationKey struct {
	contractID uuid.UUID
	key        string
}

func NewStore() *Store {
	return &Store{
		projects:      make(map[uuid.UUID]record[*entity.Project]),
		bids:          make(map[uuid.UUID]record[*entity.Bid]),
		contracts:     make(map[uuid.UUID]record[*entity.Contract]),
		messages:      make(map[uuid.UUID]record[*entity.Message]),
		intents:       make(map[uuid.UUID]*entity.PaymentIntent),
		confirmations: make(map[confirmationKey]*entity.PaymentConfirmation),
		byIntent:      make(map[uuid.UUID]*entity.PaymentConfirmation),
		users:         make(map[uuid.UUID]entity.PublicUser),
	}
}

func (s *Store) Projects() *ProjectRepository   { return &ProjectRepository{s: s} }
func (s *Store) Bids() *BidRepository           { return &BidRepository{s: s} }
func (s *Store) Contracts() *ContractRepository { return &ContractRepository{s: s} }
func (s *Store) Messages() *MessageRepository   { return &MessageRepository{s: s} }
func (s *Store) Users() *UserDirectory          { return &UserDirectory{s: s} }
func (s *Store) Payments() *PaymentLedger       { return &PaymentLedger{s: s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// newestFirst сортирует записи по убыванию времени создания, при равенстве по порядку вставки.
func newestFirst[T any](items []record[T], createdAt func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		ti, tj := createdAt(items[i].value), createdAt(items[j].value)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return items[i].seq > items[j].seq
	})
}

func copyProject(p *entity.Project) *entity.Project {
	cp := *p
	cp.Skills = append([]string(nil), p.Skills...)
	cp.Attachments = append([]string(nil), p.Attachments...)
	if p.FreelancerID != nil {
		id := *p.FreelancerID
		cp.FreelancerID = &id
	}
	if p.Deadline != nil {
		d := *p.Deadline
		cp.Deadline = &d
	}
	return &cp
}

func copyBid(b *entity.Bid) *entity.Bid {
	cp := *b
	cp.Attachments = append([]string(nil), b.Attachments...)
	return &cp
}

func copyMessage(m *entity.Message) *entity.Message {
	cp := *m
	cp.Attachments = append([]string(nil), m.Attachments...)
	return &cp
}
