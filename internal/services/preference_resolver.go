package services

import (
	"errors"
	"fmt"

	"birthdaybook/internal/models"

	"gorm.io/gorm"
)

// Reminder labels. Fixed offsets have fixed labels; custom offsets get
// distinct synthetic ones, so labels are unique within a resolved set by
// construction.
const (
	Label14Days = "14_days"
	Label7Days  = "7_days"
	Label3Days  = "3_days"
	Label1Day   = "1_day"
	LabelCustom1 = "custom_1"
	LabelCustom2 = "custom_2"
	LabelDayOf   = "day_of"
)

// ResolvedReminder is one concrete reminder the materializer evaluates
type ResolvedReminder struct {
	Label      string
	OffsetDays int
	NotifyTime string
}

// ResolveReminders merges a stored preference (or its absence) into the
// concrete list of reminders to evaluate. A nil preference yields the
// default set {7, 3, 1}. Custom offsets are included whenever set; they have
// no enable toggle distinct from being non-null.
func ResolveReminders(pref *models.ReminderPreference) []ResolvedReminder {
	if pref == nil {
		return []ResolvedReminder{
			{Label: Label7Days, OffsetDays: 7, NotifyTime: models.DefaultNotifyTime},
			{Label: Label3Days, OffsetDays: 3, NotifyTime: models.DefaultNotifyTime},
			{Label: Label1Day, OffsetDays: 1, NotifyTime: models.DefaultNotifyTime},
		}
	}

	var resolved []ResolvedReminder
	if pref.Remind14Days {
		resolved = append(resolved, ResolvedReminder{Label14Days, 14, notifyTimeOrDefault(pref.Time14Days)})
	}
	if pref.Remind7Days {
		resolved = append(resolved, ResolvedReminder{Label7Days, 7, notifyTimeOrDefault(pref.Time7Days)})
	}
	if pref.Remind3Days {
		resolved = append(resolved, ResolvedReminder{Label3Days, 3, notifyTimeOrDefault(pref.Time3Days)})
	}
	if pref.Remind1Day {
		resolved = append(resolved, ResolvedReminder{Label1Day, 1, notifyTimeOrDefault(pref.Time1Day)})
	}
	if pref.Custom1Days != nil {
		resolved = append(resolved, ResolvedReminder{LabelCustom1, *pref.Custom1Days, notifyTimeOrDefault(pref.Custom1Time)})
	}
	if pref.Custom2Days != nil {
		resolved = append(resolved, ResolvedReminder{LabelCustom2, *pref.Custom2Days, notifyTimeOrDefault(pref.Custom2Time)})
	}
	return resolved
}

func notifyTimeOrDefault(t string) string {
	if t == "" {
		return models.DefaultNotifyTime
	}
	return t
}

// EnsurePreference returns the user's preference row, creating it with
// defaults on first access.
func EnsurePreference(db *gorm.DB, username string) (*models.ReminderPreference, error) {
	var pref models.ReminderPreference
	err := db.Where("username = ?", username).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load preference for %s: %w", username, err)
	}

	pref = models.DefaultReminderPreference(username)
	if err := db.Create(&pref).Error; err != nil {
		// A concurrent first access may have created the row already
		if dbErr := db.Where("username = ?", username).First(&pref).Error; dbErr == nil {
			return &pref, nil
		}
		return nil, fmt.Errorf("failed to create default preference for %s: %w", username, err)
	}
	return &pref, nil
}
