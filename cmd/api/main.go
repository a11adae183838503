package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/estatedesk/estate-service/internal/api/http"
	"github.com/estatedesk/estate-service/internal/api/http/handlers"
	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/config"
	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/mail"
	"github.com/estatedesk/estate-service/internal/observability"
	"github.com/estatedesk/estate-service/internal/persistence"
	"github.com/estatedesk/estate-service/internal/repository"
	"github.com/estatedesk/estate-service/internal/service"
	"github.com/estatedesk/estate-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	landlordRepo := repository.NewLandlordRepository(pool)
	tenantRepo := repository.NewTenantRepository(pool)
	propertyRepo := repository.NewPropertyRepository(pool)
	leaseRepo := repository.NewLeaseRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	suspensionRepo := repository.NewSuspensionRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	invitationStore := repository.NewInvitationStore(rdb.Client)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		LandlordRepo:      landlordRepo,
		TenantRepo:        tenantRepo,
		PasswordResetRepo: resetRepo,
		AuditRepo:         auditRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		UserRepo:        userRepo,
		AgentRepo:       agentRepo,
		PropertyRepo:    propertyRepo,
		SuspensionRepo:  suspensionRepo,
		AuditRepo:       auditRepo,
		InvitationStore: invitationStore,
		Dispatcher:      dispatcher,
		Logger:          logger,
	}, service.LifecycleOptions{
		BcryptCost:    cfg.Auth.BcryptCost,
		InvitationTTL: cfg.Auth.InvitationTTL(),
		BaseURL:       cfg.App.BaseURL,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		PropertyRepo: propertyRepo,
		AgentRepo:    agentRepo,
		LandlordRepo: landlordRepo,
		AuditRepo:    auditRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	propertyService := service.NewPropertyService(propertyRepo, landlordRepo, agentRepo)
	leasingService := service.NewLeasingService(service.LeasingDependencies{
		LeaseRepo:    leaseRepo,
		PaymentRepo:  paymentRepo,
		PropertyRepo: propertyRepo,
		TenantRepo:   tenantRepo,
		LandlordRepo: landlordRepo,
		AgentRepo:    agentRepo,
		AuditRepo:    auditRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	sender := mail.NewSender(cfg.Mail, logger)
	notificationService := service.NewNotificationService(dispatcher, sender, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(authService),
		Agents:         handlers.NewAgentsHandler(lifecycleService, assignmentService, authService, !cfg.App.IsProduction()),
		Properties:     handlers.NewPropertiesHandler(propertyService, leasingService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
