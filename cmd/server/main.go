package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/config"
	"github.com/ignatzorin/freelance-marketplace/internal/db"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/goroutine"
	"github.com/ignatzorin/freelance-marketplace/internal/http/middleware"
	httpRouter "github.com/ignatzorin/freelance-marketplace/internal/http/router"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/events"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/memory"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/metrics"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/persistence"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/contract"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/message"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/project"
	"github.com/ignatzorin/freelance-marketplace/internal/ws"
	"github.com/ignatzorin/freelance-marketplace/migrations"
)

const shutdownTimeout = 10 * time.Second

// repositories собирает реализации портов выбранного хранилища.
type repositories struct {
	projects  repository.ProjectRepository
	bids      repository.BidRepository
	contracts repository.ContractRepository
	messages  repository.MessageRepository
	users     repository.UserDirectory
	payments  repository.PaymentGateway
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.IsProduction() {
		logger.Init("info")
	} else {
		logger.Init("debug")
		logger.SetTextFormatter()
	}

	checks := map[string]handler.HealthCheck{}

	repos, closeStorage, err := openStorage(ctx, cfg, checks)
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}
	defer closeStorage()

	// Уведомления: websocket всегда, RabbitMQ если задан AMQP_URL.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	sinks := events.Fanout{hub}
	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Log.Fatalf("main: не удалось подключиться к RabbitMQ: %v", err)
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
		checks["events"] = func(context.Context) error {
			if !publisher.IsConnected() {
				return errors.New("соединение с RabbitMQ закрыто")
			}
			return nil
		}
	}
	notifier := metrics.NewNotifier(sinks)

	// Хранилище счётчиков rate limit: Redis если задан REDIS_URL.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatalf("main: некорректный REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Log.Fatalf("main: Redis недоступен: %v", err)
		}
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	limiterStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		logger.Log.Fatalf("main: не удалось создать хранилище rate limit: %v", err)
	}

	attachments, err := storage.NewAttachmentStorage(cfg.AttachmentsPath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Use cases.
	createProjectUC := project.NewCreateProjectUseCase(repos.projects)
	updateProjectUC := project.NewUpdateProjectUseCase(repos.projects)
	deleteProjectUC := project.NewDeleteProjectUseCase(repos.projects)
	getProjectUC := project.NewGetProjectUseCase(repos.projects, repos.bids, repos.contracts, repos.users)
	listProjectsUC := project.NewListProjectsUseCase(repos.projects)

	placeBidUC := bid.NewPlaceBidUseCase(repos.bids, repos.projects, notifier)
	acceptBidUC := bid.NewAcceptBidUseCase(repos.bids, repos.projects, notifier, cfg.MilestoneDue)
	rejectBidUC := bid.NewRejectBidUseCase(repos.bids, repos.projects, notifier)
	listProjectBidsUC := bid.NewListProjectBidsUseCase(repos.bids, repos.projects, repos.users)
	listFreelancerBidsUC := bid.NewListFreelancerBidsUseCase(repos.bids, repos.projects)

	getContractUC := contract.NewGetContractUseCase(repos.contracts)
	listMyContractsUC := contract.NewListMyContractsUseCase(repos.contracts)
	updateMilestoneUC := contract.NewUpdateMilestoneUseCase(repos.contracts, notifier)
	completeContractUC := contract.NewCompleteContractUseCase(repos.contracts, repos.projects, notifier)
	createIntentUC := contract.NewCreatePaymentIntentUseCase(repos.contracts, repos.payments)
	confirmPaymentUC := contract.NewConfirmPaymentUseCase(repos.contracts, repos.payments, notifier, cfg.CapTotalPaid)

	sendMessageUC := message.NewSendMessageUseCase(repos.projects, repos.messages, notifier)
	listMessagesUC := message.NewListMessagesUseCase(repos.projects, repos.messages)
	markReadUC := message.NewMarkReadUseCase(repos.messages)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, service.NewTokenVerifier(cfg.JWTSecret), limiterStore, httpRouter.Handlers{
		Project:    handler.NewProjectHandler(createProjectUC, updateProjectUC, deleteProjectUC, getProjectUC, listProjectsUC),
		Bid:        handler.NewBidHandler(placeBidUC, acceptBidUC, rejectBidUC, listProjectBidsUC, listFreelancerBidsUC),
		Contract:   handler.NewContractHandler(getContractUC, listMyContractsUC, updateMilestoneUC, completeContractUC),
		Payment:    handler.NewPaymentHandler(createIntentUC, confirmPaymentUC),
		Message:    handler.NewMessageHandler(sendMessageUC, listMessagesUC, markReadUC),
		Attachment: handler.NewAttachmentHandler(attachments, cfg.MaxUploadSizeMB),
		WS:         handler.NewWSHandler(hub, cfg.AllowedOrigins),
		Health:     handler.NewHealthHandler(checks),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithFields(logrus.Fields{"error": err.Error()}).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"storage": cfg.StorageDriver,
		"env":     cfg.Env,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
	logger.Log.Info("main: сервер остановлен")
}

// openStorage подключает выбранное хранилище и возвращает функцию его закрытия.
func openStorage(ctx context.Context, cfg *config.Config, checks map[string]handler.HealthCheck) (repositories, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Log.Warn("main: данные хранятся в памяти процесса и пропадут при перезапуске")
		store := memory.NewStore()
		return repositories{
			projects:  store.Projects(),
			bids:      store.Bids(),
			contracts: store.Contracts(),
			messages:  store.Messages(),
			users:     store.Users(),
			payments:  store.Payments(),
		}, func() {}, nil
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return repositories{}, nil, err
	}

	var migrationFS fs.FS = migrations.FS
	if cfg.MigrationsPath != "" {
		migrationFS = os.DirFS(cfg.MigrationsPath)
	}
	if err := db.RunMigrations(ctx, dbConn, migrationFS); err != nil {
		safeClose(dbConn)
		return repositories{}, nil, err
	}

	checks["database"] = dbConn.PingContext

	return repositories{
		projects:  persistence.NewProjectRepositoryAdapter(dbConn),
		bids:      persistence.NewBidRepositoryAdapter(dbConn),
		contracts: persistence.NewContractRepositoryAdapter(dbConn),
		messages:  persistence.NewMessageRepositoryAdapter(dbConn),
		users:     persistence.NewUserDirectoryAdapter(dbConn),
		payments:  persistence.NewPaymentLedgerAdapter(dbConn),
	}, func() { safeClose(dbConn) }, nil
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.WithFields(logrus.Fields{"error": err.Error()}).Error("main: ошибка закрытия базы")
	}
}
