package handlers

import (
	"net/http"

	"birthdaybook/internal/services"

	"github.com/gin-gonic/gin"
)

var reminderScheduler *services.ReminderScheduler

// InitReminderScheduler wires the scheduler used by the manual trigger endpoint
func InitReminderScheduler(s *services.ReminderScheduler) {
	reminderScheduler = s
}

// RunReminders triggers the materialize-then-dispatch pipeline for today.
// Running it repeatedly in one day is safe: materialization is idempotent
// and already-sent reminders are never re-dispatched.
func RunReminders(c *gin.Context) {
	if reminderScheduler == nil {
		handleError(c, http.StatusServiceUnavailable, "Reminder scheduler is not available", nil)
		return
	}

	created, result, err := reminderScheduler.RunNow()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Reminder run failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"materialized": created,
		"sent":         result.Sent,
		"failed":       result.Failed,
		"skipped":      result.Skipped,
	})
}
