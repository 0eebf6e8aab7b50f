package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	controller "pharmawaste/controllers"
	"pharmawaste/middleware"
	"pharmawaste/scheduler"
)

// Setup wires every HTTP route. The processor and the controllers share
// one Scheduler instance so HTTP triggers and the in-process worker
// drain the same durable queue.
func Setup(app *fiber.App, db *gorm.DB, sched *scheduler.Scheduler, log *logrus.Logger) {
	leadController := controller.NewLeadController(db, sched, log)
	schedulerController := controller.NewSchedulerController(db, sched, log)
	emailWebhookController := controller.NewEmailWebhookController(db, sched, log)
	callWebhookController := controller.NewCallWebhookController(db, sched, log)
	smsWebhookController := controller.NewSMSWebhookController(db, sched, log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	requestLog := logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})

	// Public quote form intake, rate limited per client IP
	leads := app.Group("/api/leads", requestLog)
	leads.Post("/", middleware.IntakeRateLimiter(), leadController.CreateLead)
	leads.Get("/:id", middleware.CronAuth(), leadController.GetLead)

	// Scheduler triggers for external cron, bearer-secret protected
	cron := app.Group("/api/cron", middleware.CronAuth(), requestLog)
	cron.Get("/process-emails", schedulerController.ProcessEmails)
	cron.Get("/process-sms", schedulerController.ProcessSMS)
	cron.Get("/process-calls", schedulerController.ProcessCalls)
	cron.Get("/master", schedulerController.Master)
	cron.Post("/send", schedulerController.Send)

	// Provider webhooks. Unauthenticated by provider contract; handlers
	// always answer 200 and attribute events internally.
	webhooks := app.Group("/api/webhooks", requestLog)
	webhooks.Post("/email", emailWebhookController.Handle)
	webhooks.Post("/call", callWebhookController.Handle)
	webhooks.Post("/sms", smsWebhookController.Handle)
}
