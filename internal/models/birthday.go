package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Relationship categorises how the user knows the birthday person
type Relationship string

const (
	RelationshipFamily    Relationship = "family"
	RelationshipFriend    Relationship = "friend"
	RelationshipColleague Relationship = "colleague"
	RelationshipPartner   Relationship = "partner"
	RelationshipOther     Relationship = "other"
)

// IsClose reports whether the relationship is a close tier that also gets
// a day-of reminder without an explicit preference toggle.
func (r Relationship) IsClose() bool {
	return r == RelationshipFamily || r == RelationshipPartner
}

// IsValid reports whether the value is one of the known relationship tiers
func (r Relationship) IsValid() bool {
	switch r {
	case RelationshipFamily, RelationshipFriend, RelationshipColleague, RelationshipPartner, RelationshipOther:
		return true
	}
	return false
}

// Birthday represents a recurring month/day anniversary owned by one user.
// Month and day carry no year; they are reinterpreted against the current
// calendar year to find the nearest future occurrence.
type Birthday struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string       `gorm:"size:30;not null;index" json:"username"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	Month        int          `gorm:"not null" json:"month"`
	Day          int          `gorm:"not null" json:"day"`
	Relationship Relationship `gorm:"size:20;not null;default:'other'" json:"relationship"`
	Note         string       `gorm:"type:text" json:"note"`
	PhotoURL     string       `gorm:"size:512" json:"photo_url"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook assigns the ID and validates the recurring date
func (b *Birthday) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return ValidateMonthDay(b.Month, b.Day)
}

// BeforeSave hook re-validates the date on updates
func (b *Birthday) BeforeSave(tx *gorm.DB) error {
	b.UpdatedAt = time.Now()
	return ValidateMonthDay(b.Month, b.Day)
}

// TableName specifies the table name for the Birthday model
func (Birthday) TableName() string {
	return "birthday"
}

// daysInMonth uses the maximum length of each month; Feb 29 is accepted as a
// valid recurring date and resolved per year by the scheduler.
var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ValidateMonthDay checks that month/day form a valid recurring calendar date
func ValidateMonthDay(month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month: %d", month)
	}
	if day < 1 || day > daysInMonth[month] {
		return fmt.Errorf("invalid day %d for month %d", day, month)
	}
	return nil
}

// CreateBirthdayRequest represents the data needed to create a birthday
type CreateBirthdayRequest struct {
	Name         string       `json:"name" binding:"required,max=100"`
	Month        int          `json:"month" binding:"required,min=1,max=12"`
	Day          int          `json:"day" binding:"required,min=1,max=31"`
	Relationship Relationship `json:"relationship" binding:"required,oneof=family friend colleague partner other"`
	Note         string       `json:"note" binding:"max=1000"`
}

// UpdateBirthdayRequest replaces all mutable fields of a birthday
type UpdateBirthdayRequest struct {
	Name         string       `json:"name" binding:"required,max=100"`
	Month        int          `json:"month" binding:"required,min=1,max=12"`
	Day          int          `json:"day" binding:"required,min=1,max=31"`
	Relationship Relationship `json:"relationship" binding:"required,oneof=family friend colleague partner other"`
	Note         string       `json:"note" binding:"max=1000"`
}
