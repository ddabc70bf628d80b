package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"birthdaybook/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Materializer decides once per day which reminders are due and records each
// decision durably, so a re-run (or a concurrent run) never produces a
// duplicate email.
type Materializer struct {
	db *gorm.DB
}

func NewMaterializer(db *gorm.DB) *Materializer {
	return &Materializer{db: db}
}

// MaterializeToday evaluates every birthday against its owner's resolved
// reminder preferences and creates pending ReminderRecords for today.
// Returns the number of records created. A failure on one birthday is logged
// and skipped; it never aborts processing of the others.
func (m *Materializer) MaterializeToday(today time.Time) (int, error) {
	today = BeginningOfDay(today)

	var usernames []string
	if err := m.db.Model(&models.Birthday{}).Distinct("username").Pluck("username", &usernames).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, username := range usernames {
		pref, err := EnsurePreference(m.db, username)
		if err != nil {
			log.Printf("Warning: Skipping reminders for %s: %v", username, err)
			continue
		}
		if !pref.IsEnabled() {
			continue
		}

		resolved := ResolveReminders(pref)

		var birthdays []models.Birthday
		if err := m.db.Where("username = ?", username).Find(&birthdays).Error; err != nil {
			log.Printf("Warning: Failed to load birthdays for %s: %v", username, err)
			continue
		}

		for _, birthday := range birthdays {
			n, err := m.materializeBirthday(resolved, birthday, today)
			if err != nil {
				log.Printf("Warning: Skipping birthday %s (%s): %v", birthday.ID, birthday.Name, err)
				continue
			}
			created += n
		}
	}

	return created, nil
}

func (m *Materializer) materializeBirthday(resolved []ResolvedReminder, birthday models.Birthday, today time.Time) (int, error) {
	if err := models.ValidateMonthDay(birthday.Month, birthday.Day); err != nil {
		return 0, err
	}

	daysUntil := DaysUntilNextOccurrence(birthday.Month, birthday.Day, today)

	created := 0
	for _, reminder := range resolved {
		if reminder.OffsetDays != daysUntil {
			continue
		}
		wasCreated, err := m.ensureRecord(birthday, reminder.Label, reminder.NotifyTime, today)
		if err != nil {
			return created, err
		}
		if wasCreated {
			created++
		}
	}

	// Close relationships get a day-of reminder without an explicit toggle
	if daysUntil == 0 && birthday.Relationship.IsClose() {
		wasCreated, err := m.ensureRecord(birthday, LabelDayOf, models.DefaultNotifyTime, today)
		if err != nil {
			return created, err
		}
		if wasCreated {
			created++
		}
	}

	return created, nil
}

// ensureRecord creates the reminder record for the given key if it does not
// exist yet. The existence check keeps re-runs quiet; the unique index on the
// key is what actually guarantees at-most-once under concurrent runs, with a
// duplicate-key insert treated as already materialized.
func (m *Materializer) ensureRecord(birthday models.Birthday, label, notifyTime string, targetDate time.Time) (bool, error) {
	var count int64
	err := m.db.Model(&models.ReminderRecord{}).
		Where("username = ? AND birthday_id = ? AND label = ? AND target_date = ?",
			birthday.Username, birthday.ID, label, targetDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	record := models.ReminderRecord{
		ID:         uuid.New(),
		Username:   birthday.Username,
		BirthdayID: birthday.ID,
		Label:      label,
		TargetDate: targetDate,
		NotifyTime: notifyTime,
		Status:     models.ReminderPending,
	}
	if err := m.db.Create(&record).Error; err != nil {
		if isDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
