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

	"github.com/noah-isme/kasku-go-api/internal/config"
	"github.com/noah-isme/kasku-go-api/internal/database"
	"github.com/noah-isme/kasku-go-api/internal/handler"
	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
	"github.com/noah-isme/kasku-go-api/internal/router"
	"github.com/noah-isme/kasku-go-api/internal/scheduler"
	"github.com/noah-isme/kasku-go-api/internal/service"
	"github.com/noah-isme/kasku-go-api/internal/token"
	cloud "github.com/noah-isme/kasku-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.Student{},
		&models.Payment{},
		&models.Expense{},
		&models.Event{},
		&models.EventPayment{},
		&models.Setting{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, proof uploads disabled")
	}

	var sender service.MessageSender
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Close()
		sender = service.NewNATSSender(conn, cfg.WhatsAppSubject)
	} else {
		logger.Warn().Msg("nats not configured, reminders are logged instead of delivered")
		sender = service.NewLogSender(logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	eventRepo := repository.NewEventRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	sessionService := service.NewSessionService(sessionRepo, logger)
	authService := service.NewAuthService(userRepo, sessionService, issuer, auditService, validate, logger)
	studentService := service.NewStudentService(studentRepo, validate, logger)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, settingRepo, storage, cfg.ProofMaxSizeMB, validate, logger)
	expenseService := service.NewExpenseService(expenseRepo, validate, logger)
	eventService := service.NewEventService(eventRepo, studentRepo, validate, logger)
	settingsService := service.NewSettingsService(settingRepo, validate, logger)
	fundService := service.NewFundService(paymentRepo, expenseRepo, redisClient, cfg.FundCacheTTL, logger)
	reminderService := service.NewReminderService(studentRepo, paymentRepo, settingRepo, redisClient, sender, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     handler.NewAuthHandler(authService, auditService, logger),
		SessionHandler:  handler.NewSessionHandler(sessionService, logger),
		AuditHandler:    handler.NewAuditHandler(auditService, logger),
		StudentHandler:  handler.NewStudentHandler(studentService, auditService, logger),
		PaymentHandler:  handler.NewPaymentHandler(paymentService, fundService, auditService, logger),
		ExpenseHandler:  handler.NewExpenseHandler(expenseService, fundService, auditService, logger),
		EventHandler:    handler.NewEventHandler(eventService, fundService, auditService, logger),
		SettingsHandler: handler.NewSettingsHandler(settingsService, auditService, logger),
		FundHandler:     handler.NewFundHandler(fundService, logger),
		Authenticate:    middleware.Authenticate(issuer, userRepo, sessionRepo, logger),
		AdminOnly:       middleware.RequireRole(models.RoleAdmin),
	})

	jobs := scheduler.New(reminderService, sessionService, logger)
	jobs.Configure(cfg.SchedulerInterval)
	jobs.Start(context.Background())

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, jobs)
}

func waitForShutdown(app *fiber.App, jobs *scheduler.Scheduler) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	jobs.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
