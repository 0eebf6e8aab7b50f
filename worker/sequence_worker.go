package worker

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"pharmawaste/scheduler"
)

// SequenceWorker drives the follow-up processor from inside the process.
// It is the in-process alternative to an external cron hitting the
// trigger endpoints; both drain the same durable rows, and the atomic
// claim keeps concurrent ticks safe.
type SequenceWorker struct {
	cron      *cron.Cron
	scheduler *scheduler.Scheduler
	logger    *logrus.Logger
}

func NewSequenceWorker(sched *scheduler.Scheduler, logger *logrus.Logger) *SequenceWorker {
	return &SequenceWorker{
		cron:      cron.New(),
		scheduler: sched,
		logger:    logger,
	}
}

// SetupJobs configures the per-channel ticks.
func (w *SequenceWorker) SetupJobs() error {
	// Every minute: emails and SMS
	if _, err := w.cron.AddFunc("* * * * *", func() {
		now := time.Now()
		w.report("emails", w.scheduler.ProcessDueEmails(now))
		w.report("sms", w.scheduler.ProcessDueSMS(now))
	}); err != nil {
		return err
	}

	// Every minute, separately: calls. The first call attempt is due 90
	// seconds after intake, so a minute tick keeps it close to on time.
	if _, err := w.cron.AddFunc("* * * * *", func() {
		w.report("calls", w.scheduler.ProcessDueCalls(time.Now()))
	}); err != nil {
		return err
	}

	w.logger.Info("Sequence worker jobs configured")
	return nil
}

func (w *SequenceWorker) report(channel string, summary scheduler.Summary) {
	if summary.Processed == 0 {
		return
	}
	w.logger.WithFields(logrus.Fields{
		"channel":    channel,
		"processed":  summary.Processed,
		"successful": summary.Successful,
		"failed":     summary.Failed,
	}).Info("Processor tick completed")
}

// Start starts the cron scheduler
func (w *SequenceWorker) Start() {
	w.logger.Info("Starting sequence worker")
	w.cron.Start()
}

// Stop stops the cron scheduler
func (w *SequenceWorker) Stop() {
	w.logger.Info("Stopping sequence worker")
	w.cron.Stop()
}
