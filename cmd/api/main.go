package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-site-api/internal/config"
	"github.com/noah-isme/gema-site-api/internal/database"
	"github.com/noah-isme/gema-site-api/internal/handler"
	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/observability"
	"github.com/noah-isme/gema-site-api/internal/repository"
	"github.com/noah-isme/gema-site-api/internal/router"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/pkg/githubrepo"
	"github.com/noah-isme/gema-site-api/pkg/mailer"
	"github.com/noah-isme/gema-site-api/pkg/oauth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if !cfg.IsProduction() {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	redisClient, err := database.ConnectRedis(rootCtx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable; audit events will not be published")
		} else {
			defer conn.Drain()
			publisher = conn
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	adminRepo := mustRepo(repository.NewAdminUserRepository(cfg.DataDir))
	subscriberRepo := mustRepo(repository.NewSubscriberRepository(cfg.DataDir))
	emailLogRepo := mustRepo(repository.NewEmailLogRepository(cfg.DataDir))
	contributorRepo := mustRepo(repository.NewContributorRepository(cfg.DataDir))
	contentRepo := mustRepo(repository.NewContentRepository(cfg.ContentDir))
	auditRepo, errorRepo := logRepositories(db, cfg.DataDir)

	var remote service.RemoteRepository
	if cfg.GitHubConfigured() {
		client, err := githubrepo.New(githubrepo.Config{
			Token:  cfg.GitHubToken,
			Owner:  cfg.GitHubOwner,
			Repo:   cfg.GitHubRepo,
			Branch: cfg.GitHubBranch,
		}, nil, logger)
		if err != nil {
			log.Fatalf("failed to create github client: %v", err)
		}
		remote = client
	}

	var sender service.EmailSender = service.NewLogEmailSender(logger)
	if cfg.EmailAPIKey != "" {
		resend, err := mailer.NewResend(mailer.Config{APIKey: cfg.EmailAPIKey, From: cfg.EmailFrom}, nil, logger)
		if err != nil {
			log.Fatalf("failed to create mailer: %v", err)
		}
		sender = resend
	}

	var provider handler.IdentityProvider
	if cfg.GoogleConfigured() {
		google, err := oauth.NewGoogleProvider(oauth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		if err != nil {
			log.Fatalf("failed to create oauth provider: %v", err)
		}
		provider = google
	}

	sessionService := service.NewSessionService(cfg.SessionSecret, cfg.SessionTTL, cfg.AppName)
	accessValidator := service.NewAccessValidator(adminRepo, cfg.BootstrapAdmins, logger)
	auditService := service.NewAuditService(auditRepo, publisher, cfg.NATSAuditSubject, logger)
	errorLogService := service.NewErrorLogService(errorRepo, auditService, validate, logger)
	adminUserService := service.NewAdminUserService(adminRepo, auditService, validate, logger)
	commitService := service.NewContentCommitService(remote, auditService, validate, logger)
	newsletterService := service.NewNewsletterService(subscriberRepo, emailLogRepo, sender, auditService, validate, service.NewsletterConfig{
		BaseURL:    cfg.BaseURL,
		SiteName:   cfg.AppName,
		RatePerSec: cfg.EmailRatePerSec,
	}, logger)
	blogService := service.NewBlogService(contentRepo, newsletterService, auditService, validate, cfg.BaseURL, logger)
	contributorService := service.NewContributorService(contributorRepo, remote, redisClient, auditService, validate, service.ContributorConfig{
		CacheTTL:      cfg.CacheTTL,
		FetchActivity: cfg.GitHubStats,
	}, logger)

	maintenanceService, err := service.NewMaintenanceService(cfg.DataDir, cfg.EnvFile, cfg.MaintenanceEnabled, auditService, logger)
	if err != nil {
		log.Fatalf("failed to initialise maintenance mode: %v", err)
	}
	go func() {
		if err := maintenanceService.Watch(rootCtx); err != nil {
			logger.Warn().Err(err).Msg("maintenance watcher stopped")
		}
	}()

	monitor := observability.NewMonitor()
	dashboardService := service.NewDashboardService(service.DashboardSources{
		Admins:       adminRepo,
		Subscribers:  subscriberRepo,
		Contributors: contributorRepo,
		Content:      contentRepo,
		Audit:        auditRepo,
		Errors:       errorLogService,
		Maintenance:  maintenanceService,
	}, redisClient, cfg.CacheTTL, logger)
	diagnosticsService := service.NewDiagnosticsService(service.DiagnosticsConfig{
		DataDir:          cfg.DataDir,
		ContentDir:       cfg.ContentDir,
		GitHubConfigured: cfg.GitHubConfigured(),
		EmailConfigured:  cfg.EmailAPIKey != "",
	}, redisClient, maintenanceService, logger)

	scheduler := service.NewScheduler(logger)
	if err := scheduler.AddErrorLogRetention(cfg.PruneSchedule, errorLogService, cfg.ErrorRetentionDays); err != nil {
		log.Fatalf("failed to schedule error log retention: %v", err)
	}
	if cfg.ContributorSyncSchedule != "" && remote != nil {
		if err := scheduler.AddContributorSync(cfg.ContributorSyncSchedule, contributorService); err != nil {
			log.Fatalf("failed to schedule contributor sync: %v", err)
		}
	}
	scheduler.Start(rootCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		Recorder:  monitor,
		AccessLog: !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		Sessions:      sessionService,
		Access:        accessValidator,
		Maintenance:   maintenanceService,
		ErrorReporter: errorLogService,
		Logger:        logger,

		HealthHandler: handler.NewHealthHandler(cfg, redisClient),
		AuthHandler: handler.NewAuthHandler(provider, sessionService, accessValidator, handler.AuthConfig{
			SecureCookies: cfg.IsProduction(),
		}, logger),
		AdminUserHandler:   handler.NewAdminUserHandler(adminUserService, logger),
		AuditLogHandler:    handler.NewAuditLogHandler(auditService, logger),
		ErrorLogHandler:    handler.NewErrorLogHandler(errorLogService, logger),
		ContentHandler:     handler.NewContentHandler(commitService, logger),
		BlogHandler:        handler.NewBlogHandler(blogService, logger),
		NewsletterHandler:  handler.NewNewsletterHandler(newsletterService, logger),
		ContributorHandler: handler.NewContributorHandler(contributorService, logger),
		OperationsHandler: handler.NewOperationsHandler(handler.OperationsServices{
			Dashboard:   dashboardService,
			Diagnostics: diagnosticsService,
			Monitoring:  monitor,
			Maintenance: maintenanceService,
		}, validate, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(rootCtx, app)
}

func mustRepo[T any](repo T, err error) T {
	if err != nil {
		log.Fatalf("failed to open repository: %v", err)
	}
	return repo
}

func logRepositories(db *gorm.DB, dataDir string) (repository.AuditLogRepository, repository.ErrorLogRepository) {
	if db != nil {
		return repository.NewGormAuditLogRepository(db), repository.NewGormErrorLogRepository(db)
	}
	return mustRepo(repository.NewJSONAuditLogRepository(dataDir)), mustRepo(repository.NewJSONErrorLogRepository(dataDir))
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
