package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderScheduler triggers the daily materialize-then-dispatch run. It is
// the only invoker of the Materializer and Dispatcher in normal operation;
// both assume serial, at-most-once-per-day invocation.
type ReminderScheduler struct {
	cron         *cron.Cron
	location     *time.Location
	materializer *Materializer
	dispatcher   *Dispatcher
}

func NewReminderScheduler(db *gorm.DB, mailer Mailer) *ReminderScheduler {
	location := time.UTC
	if tz := os.Getenv("REMINDER_TIMEZONE"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			location = loc
		} else {
			log.Printf("Warning: Invalid REMINDER_TIMEZONE %q, falling back to UTC: %v", tz, err)
		}
	}

	return &ReminderScheduler{
		cron:         cron.New(cron.WithLocation(location)),
		location:     location,
		materializer: NewMaterializer(db),
		dispatcher:   NewDispatcher(db, mailer),
	}
}

// Start registers the daily job and starts the cron loop. The run time comes
// from REMINDER_RUN_TIME (HH:MM, default 09:00).
func (s *ReminderScheduler) Start() error {
	runTime := os.Getenv("REMINDER_RUN_TIME")
	if runTime == "" {
		runTime = "09:00"
	}
	parts := strings.Split(runTime, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid REMINDER_RUN_TIME format: %s", runTime)
	}

	spec := fmt.Sprintf("%s %s * * *", parts[1], parts[0])
	if _, err := s.cron.AddFunc(spec, s.runDaily); err != nil {
		return fmt.Errorf("failed to schedule daily reminder run: %w", err)
	}

	s.cron.Start()
	log.Printf("Reminder scheduler started (daily at %s)", runTime)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (s *ReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Reminder scheduler stopped")
}

func (s *ReminderScheduler) runDaily() {
	created, result, err := s.RunNow()
	if err != nil {
		log.Printf("Error: Daily reminder run failed: %v", err)
		return
	}
	log.Printf("Daily reminder run: %d materialized, %d sent, %d failed, %d skipped",
		created, result.Sent, result.Failed, result.Skipped)
}

// RunNow runs the cycle for the current calendar day in the scheduler's
// configured zone. The day must come from that zone, not the server's; on a
// UTC host a zone ahead of UTC is already on the next date at run time.
func (s *ReminderScheduler) RunNow() (int, DispatchResult, error) {
	return s.RunOnce(time.Now().In(s.location))
}

// RunOnce performs one materialize-then-dispatch cycle for the given day.
// It is also the entry point for the manual operator trigger.
func (s *ReminderScheduler) RunOnce(today time.Time) (int, DispatchResult, error) {
	created, err := s.materializer.MaterializeToday(today)
	if err != nil {
		return 0, DispatchResult{}, fmt.Errorf("materialize: %w", err)
	}

	result, err := s.dispatcher.DispatchPending(today)
	if err != nil {
		return created, result, fmt.Errorf("dispatch: %w", err)
	}

	return created, result, nil
}
