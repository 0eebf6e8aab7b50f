package main

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"pharmawaste/config"
	"pharmawaste/messaging"
	"pharmawaste/middleware"
	"pharmawaste/routes"
	"pharmawaste/scheduler"
	"pharmawaste/worker"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if config.AppConfig.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Warnf("Sentry init failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Providers and the shared follow-up scheduler
	cfg := config.AppConfig
	emailSender := messaging.NewSMTPSender(cfg.SMTP, cfg.AdminEmail, cfg.SpecialistPhone, logger)
	smsSender := messaging.NewTwilioSender(cfg.Twilio, cfg.BaseURL, logger)
	voiceSender := messaging.NewBlandClient(cfg.Bland, cfg.BaseURL, cfg.SpecialistPhone, logger)
	sched := scheduler.New(config.DB, emailSender, smsSender, voiceSender, cfg.SpecialistPhone, logger)

	// Create Fiber app
	app := fiber.New()
	app.Use(middleware.CORS())

	// Setup routes
	routes.Setup(app, config.DB, sched, logger)

	// Optional in-process processor; external cron can drive the same
	// endpoints instead.
	if cfg.EnableWorker {
		sequenceWorker := worker.NewSequenceWorker(sched, logger)
		if err := sequenceWorker.SetupJobs(); err != nil {
			logger.Fatalf("Failed to set up sequence worker: %v", err)
		}
		sequenceWorker.Start()
		defer sequenceWorker.Stop()
	}

	// Start server
	logger.Infof("🚀 Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
