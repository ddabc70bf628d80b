package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FrequencyTier is a coarse label shown in the UI. It does not gate which
// offset toggles apply.
type FrequencyTier string

const (
	FrequencyMinimal  FrequencyTier = "minimal"
	FrequencyStandard FrequencyTier = "standard"
	FrequencyMaximum  FrequencyTier = "maximum"
)

// DefaultNotifyTime is used when a preference row carries no time of day
const DefaultNotifyTime = "09:00"

// ReminderPreference holds a user's reminder settings. At most one row per
// user; created lazily with defaults on first access.
type ReminderPreference struct {
	Username string `gorm:"primaryKey;size:30;not null" json:"username"`

	// NULL is treated as enabled so legacy rows keep working
	Enabled *bool `gorm:"default:true" json:"enabled"`

	Remind14Days bool   `gorm:"default:false" json:"remind_14_days"`
	Time14Days   string `gorm:"size:5;default:'09:00'" json:"time_14_days"`
	Remind7Days  bool   `gorm:"default:true" json:"remind_7_days"`
	Time7Days    string `gorm:"size:5;default:'09:00'" json:"time_7_days"`
	Remind3Days  bool   `gorm:"default:true" json:"remind_3_days"`
	Time3Days    string `gorm:"size:5;default:'09:00'" json:"time_3_days"`
	Remind1Day   bool   `gorm:"default:true" json:"remind_1_day"`
	Time1Day     string `gorm:"size:5;default:'09:00'" json:"time_1_day"`

	// Custom offsets have no separate enable toggle; non-null means active
	Custom1Days *int   `json:"custom_1_days"`
	Custom1Time string `gorm:"size:5;default:'09:00'" json:"custom_1_time"`
	Custom2Days *int   `json:"custom_2_days"`
	Custom2Time string `gorm:"size:5;default:'09:00'" json:"custom_2_time"`

	Timezone  string        `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	Frequency FrequencyTier `gorm:"size:10;not null;default:'standard'" json:"frequency"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the ReminderPreference model
func (ReminderPreference) TableName() string {
	return "reminder_preference"
}

// BeforeSave validates the preference before it is persisted
func (p *ReminderPreference) BeforeSave(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return p.Validate()
}

// IsEnabled resolves the nullable enabled flag; malformed NULL rows default
// to enabled.
func (p *ReminderPreference) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// fixedOffsets are the built-in offsets with per-offset toggles
var fixedOffsets = []int{14, 7, 3, 1}

// Validate enforces the preference invariants: custom offsets stay within
// 1-365 days, must not collide with the fixed set or each other, and an
// enabled preference needs at least one active offset.
func (p *ReminderPreference) Validate() error {
	for _, custom := range []*int{p.Custom1Days, p.Custom2Days} {
		if custom == nil {
			continue
		}
		if *custom < 1 || *custom > 365 {
			return fmt.Errorf("custom offset must be between 1 and 365 days, got %d", *custom)
		}
		for _, fixed := range fixedOffsets {
			if *custom == fixed {
				return fmt.Errorf("custom offset %d collides with the fixed %d-day reminder", *custom, fixed)
			}
		}
	}
	if p.Custom1Days != nil && p.Custom2Days != nil && *p.Custom1Days == *p.Custom2Days {
		return fmt.Errorf("custom offsets must be distinct, both are %d", *p.Custom1Days)
	}

	if p.IsEnabled() && !p.hasActiveOffset() {
		return fmt.Errorf("reminders are enabled but no offset is active")
	}

	if p.Frequency == "" {
		p.Frequency = FrequencyStandard
	}
	switch p.Frequency {
	case FrequencyMinimal, FrequencyStandard, FrequencyMaximum:
	default:
		return fmt.Errorf("invalid frequency tier: %s", p.Frequency)
	}
	return nil
}

func (p *ReminderPreference) hasActiveOffset() bool {
	return p.Remind14Days || p.Remind7Days || p.Remind3Days || p.Remind1Day ||
		p.Custom1Days != nil || p.Custom2Days != nil
}

// DefaultReminderPreference returns the row persisted on first access
func DefaultReminderPreference(username string) ReminderPreference {
	enabled := true
	return ReminderPreference{
		Username:    username,
		Enabled:     &enabled,
		Remind7Days: true,
		Time7Days:   DefaultNotifyTime,
		Remind3Days: true,
		Time3Days:   DefaultNotifyTime,
		Remind1Day:  true,
		Time1Day:    DefaultNotifyTime,
		Time14Days:  DefaultNotifyTime,
		Custom1Time: DefaultNotifyTime,
		Custom2Time: DefaultNotifyTime,
		Timezone:    "UTC",
		Frequency:   FrequencyStandard,
	}
}

// UpdatePreferenceRequest carries a full replacement of the user's settings
type UpdatePreferenceRequest struct {
	Enabled      *bool         `json:"enabled"`
	Remind14Days bool          `json:"remind_14_days"`
	Time14Days   string        `json:"time_14_days" binding:"omitempty,len=5"`
	Remind7Days  bool          `json:"remind_7_days"`
	Time7Days    string        `json:"time_7_days" binding:"omitempty,len=5"`
	Remind3Days  bool          `json:"remind_3_days"`
	Time3Days    string        `json:"time_3_days" binding:"omitempty,len=5"`
	Remind1Day   bool          `json:"remind_1_day"`
	Time1Day     string        `json:"time_1_day" binding:"omitempty,len=5"`
	Custom1Days  *int          `json:"custom_1_days"`
	Custom1Time  string        `json:"custom_1_time" binding:"omitempty,len=5"`
	Custom2Days  *int          `json:"custom_2_days"`
	Custom2Time  string        `json:"custom_2_time" binding:"omitempty,len=5"`
	Timezone     string        `json:"timezone" binding:"omitempty,max=64"`
	Frequency    FrequencyTier `json:"frequency" binding:"omitempty,oneof=minimal standard maximum"`
}
