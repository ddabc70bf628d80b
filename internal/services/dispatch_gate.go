package services

import (
	"log"
	"time"

	"birthdaybook/internal/models"

	"gorm.io/gorm"
)

// Mailer is the external email-sending collaborator. Any non-nil error is a
// terminal failure for that attempt.
type Mailer interface {
	SendBirthdayReminder(account models.Account, birthday models.Birthday, label string, daysUntil int) error
}

// DispatchResult summarizes one dispatch run
type DispatchResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Dispatcher hands materialized, not-yet-sent reminders to the mailer and
// records the outcome. Failed records stay failed; there is no automatic
// retry, so a reminder is attempted at most once.
type Dispatcher struct {
	db     *gorm.DB
	mailer Mailer
}

func NewDispatcher(db *gorm.DB, mailer Mailer) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer}
}

// DispatchPending sends every pending reminder targeted at today. A user who
// has disabled reminders since materialization is skipped, not failed; the
// decision not to send is not a delivery failure.
func (d *Dispatcher) DispatchPending(today time.Time) (DispatchResult, error) {
	today = BeginningOfDay(today)

	var records []models.ReminderRecord
	if err := d.db.Where("status = ? AND target_date = ?", models.ReminderPending, today).Find(&records).Error; err != nil {
		return DispatchResult{}, err
	}

	var result DispatchResult
	for _, record := range records {
		var pref models.ReminderPreference
		if err := d.db.Where("username = ?", record.Username).First(&pref).Error; err == nil && !pref.IsEnabled() {
			result.Skipped++
			continue
		}

		if err := d.dispatchRecord(record); err != nil {
			log.Printf("Error: Failed to dispatch reminder %s: %v", record.ID, err)
			d.markStatus(&record, models.ReminderFailed)
			result.Failed++
			continue
		}

		d.markStatus(&record, models.ReminderSent)
		result.Sent++
	}

	return result, nil
}

func (d *Dispatcher) dispatchRecord(record models.ReminderRecord) error {
	var account models.Account
	if err := d.db.Where("username = ?", record.Username).First(&account).Error; err != nil {
		return err
	}

	var birthday models.Birthday
	if err := d.db.Where("id = ?", record.BirthdayID).First(&birthday).Error; err != nil {
		// Birthday deleted between materialization and dispatch
		return err
	}

	daysUntil := DaysUntilNextOccurrence(birthday.Month, birthday.Day, record.TargetDate)
	return d.mailer.SendBirthdayReminder(account, birthday, record.Label, daysUntil)
}

func (d *Dispatcher) markStatus(record *models.ReminderRecord, status models.ReminderStatus) {
	updates := map[string]interface{}{"status": status}
	if status == models.ReminderSent {
		now := time.Now()
		updates["sent_at"] = &now
	}
	if err := d.db.Model(record).Updates(updates).Error; err != nil {
		log.Printf("Error: Failed to update reminder %s status to %s: %v", record.ID, status, err)
	}
}
