package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderStatus tracks a reminder record through dispatch
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// ReminderRecord is the durable idempotency token for one reminder decision.
// The composite unique index on (username, birthday_id, label, target_date)
// makes "at most one record per key" an enforced invariant rather than an
// assumption about serial invocation; a duplicate-key insert means another
// run already materialized this reminder.
type ReminderRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string         `gorm:"size:30;not null;uniqueIndex:ux_reminder_key,priority:1" json:"username"`
	BirthdayID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_reminder_key,priority:2" json:"birthday_id"`
	Label      string         `gorm:"size:20;not null;uniqueIndex:ux_reminder_key,priority:3" json:"label"`
	TargetDate time.Time      `gorm:"type:date;not null;uniqueIndex:ux_reminder_key,priority:4" json:"target_date"`
	NotifyTime string         `gorm:"size:5;default:'09:00'" json:"notify_time"`
	Status     ReminderStatus `gorm:"size:10;not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	SentAt     *time.Time     `json:"sent_at"`
}

// BeforeCreate hook assigns the record ID
func (r *ReminderRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ReminderPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the ReminderRecord model
func (ReminderRecord) TableName() string {
	return "reminder_record"
}
