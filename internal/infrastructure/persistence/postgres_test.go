package persistence

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/db"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/migrations"
)

// Тесты адаптеров идут против настоящей базы и пропускаются без TEST_DATABASE_URL.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	ctx := context.Background()
	conn, err := db.NewPostgres(ctx, dsn, db.PoolConfig{MaxOpenConns: 8})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(ctx, conn, migrations.FS))
	return conn
}

func createOpenProject(t *testing.T, conn *sqlx.DB) *entity.Project {
	t.Helper()
	p, err := entity.NewProject(uuid.New(), entity.ProjectDraft{
		Title:       "Online store",
		Description: "Store for handmade ceramics",
		Category:    "web-development",
		Budget:      2000,
		BudgetType:  "fixed",
		Duration:    "1-to-4-weeks",
	})
	require.NoError(t, err)
	require.NoError(t, NewProjectRepositoryAdapter(conn).Create(context.Background(), p))
	return p
}

func createBid(t *testing.T, conn *sqlx.DB, p *entity.Project, amount float64) *entity.Bid {
	t.Helper()
	b, err := entity.NewBid(p.ID, uuid.New(), amount, "Have done three similar stores", "2-to-4-weeks", nil)
	require.NoError(t, err)
	require.NoError(t, NewBidRepositoryAdapter(conn).Create(context.Background(), b))
	return b
}

func acceptanceFor(t *testing.T, p *entity.Project, b *entity.Bid) *entity.Acceptance {
	t.Helper()
	project := *p
	bid := *b
	require.NoError(t, bid.Accept())
	require.NoError(t, project.AssignFreelancer(bid.FreelancerID))
	c := entity.NewContractFromBid(&project, &bid, time.Now(), 24*time.Hour)
	return &entity.Acceptance{Bid: &bid, Project: &project, Contract: c}
}

func TestBidRepositoryAdapter_CommitAcceptance_SingleWinner(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	p := createOpenProject(t, conn)
	bids := []*entity.Bid{createBid(t, conn, p, 1800), createBid(t, conn, p, 1900), createBid(t, conn, p, 1700)}

	repo := NewBidRepositoryAdapter(conn)
	errs := make([]error, len(bids))
	var wg sync.WaitGroup
	for i, b := range bids {
		acceptance := acceptanceFor(t, p, b)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CommitAcceptance(ctx, acceptance)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.True(t, apperror.IsConflict(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, winners)

	stored, err := repo.FindByProjectID(ctx, p.ID)
	require.NoError(t, err)
	accepted := 0
	for _, b := range stored {
		if b.Status == valueobject.BidStatusAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)

	_, err = NewContractRepositoryAdapter(conn).FindByProjectID(ctx, p.ID)
	assert.NoError(t, err)
}

func TestContractRepositoryAdapter_StaleVersionRejected(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	p := createOpenProject(t, conn)
	acceptance := acceptanceFor(t, p, createBid(t, conn, p, 1500))
	require.NoError(t, NewBidRepositoryAdapter(conn).CommitAcceptance(ctx, acceptance))

	repo := NewContractRepositoryAdapter(conn)
	first, err := repo.FindByID(ctx, acceptance.Contract.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, acceptance.Contract.ID)
	require.NoError(t, err)

	require.NoError(t, first.RecordPayment(100, false, time.Now()))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.RecordPayment(200, false, time.Now()))
	assert.ErrorIs(t, repo.Update(ctx, second), apperror.ErrConcurrentUpdate)

	stored, err := repo.FindByID(ctx, acceptance.Contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.TotalPaid)
	assert.Equal(t, first.Version, stored.Version)
}

func TestContractRepositoryAdapter_CommitCompletion(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	p := createOpenProject(t, conn)
	acceptance := acceptanceFor(t, p, createBid(t, conn, p, 1500))
	require.NoError(t, NewBidRepositoryAdapter(conn).CommitAcceptance(ctx, acceptance))

	repo := NewContractRepositoryAdapter(conn)
	c, err := repo.FindByID(ctx, acceptance.Contract.ID)
	require.NoError(t, err)
	require.NoError(t, c.Complete(time.Now()))
	project := *acceptance.Project
	require.NoError(t, project.Complete())
	require.NoError(t, repo.CommitCompletion(ctx, c, &project))

	storedProject, err := NewProjectRepositoryAdapter(conn).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, project.Status, storedProject.Status)

	// проект уже завершён, вторая попытка не меняет контракт
	again, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	version := again.Version
	err = repo.CommitCompletion(ctx, again, &project)
	assert.True(t, apperror.IsConflict(err))
	after, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, version, after.Version)
}

func TestContractRepositoryAdapter_IntentAppliedOnce(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	p := createOpenProject(t, conn)
	acceptance := acceptanceFor(t, p, createBid(t, conn, p, 1500))
	require.NoError(t, NewBidRepositoryAdapter(conn).CommitAcceptance(ctx, acceptance))

	intent, err := NewPaymentLedgerAdapter(conn).RecordCharge(ctx, 50, repository.ChargeMetadata{
		ContractID: acceptance.Contract.ID,
		ClientID:   acceptance.Contract.ClientID,
	})
	require.NoError(t, err)

	repo := NewContractRepositoryAdapter(conn)
	c, err := repo.FindByID(ctx, acceptance.Contract.ID)
	require.NoError(t, err)
	require.NoError(t, c.RecordPayment(50, false, time.Now()))
	require.NoError(t, repo.CommitPayment(ctx, c, &entity.PaymentConfirmation{
		ContractID: c.ID, IdempotencyKey: "k-1", Amount: 50, IntentID: &intent.ID, CreatedAt: time.Now(),
	}))

	require.NoError(t, c.RecordPayment(50, false, time.Now()))
	err = repo.CommitPayment(ctx, c, &entity.PaymentConfirmation{
		ContractID: c.ID, IdempotencyKey: "k-2", Amount: 50, IntentID: &intent.ID, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, apperror.ErrConcurrentUpdate)

	prior, err := repo.FindConfirmationByIntent(ctx, intent.ID)
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, "k-1", prior.IdempotencyKey)

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.TotalPaid)
}

func TestMessageRepositoryAdapter_SameTimestampKeepsInsertOrder(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	p := createOpenProject(t, conn)
	acceptance := acceptanceFor(t, p, createBid(t, conn, p, 1500))
	require.NoError(t, NewBidRepositoryAdapter(conn).CommitAcceptance(ctx, acceptance))

	repo := NewMessageRepositoryAdapter(conn)
	at := time.Now().Truncate(time.Second)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		m, err := entity.NewMessage(acceptance.Project, p.ClientID, fmt.Sprintf("message %d", i), nil)
		require.NoError(t, err)
		m.CreatedAt = at
		require.NoError(t, repo.Create(ctx, m))
		ids = append(ids, m.ID)
	}

	list, err := repo.FindByProjectID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, list[i].ID)
	}
}
