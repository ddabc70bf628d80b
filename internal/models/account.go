package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Account represents a user account in the system
type Account struct {
	Username   string    `gorm:"primaryKey;size:30;not null" json:"username" binding:"required,alphanum"`
	Email      string    `gorm:"uniqueIndex;size:255;not null" json:"email" binding:"required,email"`
	HashedPass string    `gorm:"size:255" json:"-"`
	Timezone   string    `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	DateJoined time.Time `gorm:"not null" json:"date_joined"`
	LastLogin  time.Time `gorm:"not null" json:"last_login"`

	// Google sign-in identity (empty for password-only accounts)
	GoogleID              string    `gorm:"size:128;index" json:"-"`
	EmailVerified         bool      `gorm:"default:false" json:"email_verified"`
	FullName              string    `gorm:"size:255" json:"full_name"`
	AvatarURL             string    `gorm:"size:512" json:"avatar_url"`
	EncryptedRefreshToken string    `gorm:"type:text" json:"-"`
	TokenExpiry           time.Time `json:"-"`

	Birthdays []Birthday `gorm:"foreignKey:Username" json:"birthdays,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook is called before creating a new account.
// Plaintext passwords are hashed here so handlers never store them directly.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.DateJoined.IsZero() {
		a.DateJoined = now
	}
	if a.LastLogin.IsZero() {
		a.LastLogin = now
	}
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}

	// Google-provisioned accounts have no password
	if a.HashedPass != "" && !isBcryptHash(a.HashedPass) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.HashedPass), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		a.HashedPass = string(hashed)
	}
	return nil
}

// BeforeSave hook is called before saving the account
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (a *Account) VerifyPassword(password string) bool {
	if a.HashedPass == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.HashedPass), []byte(password)) == nil
}

// isBcryptHash reports whether s already looks like a bcrypt hash, so the
// BeforeCreate hook doesn't double-hash on retried creates.
func isBcryptHash(s string) bool {
	return len(s) == 60 && (s[:4] == "$2a$" || s[:4] == "$2b$" || s[:4] == "$2y$")
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "account"
}

// LoginLog records an authentication attempt for auditing
type LoginLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:30;not null;index" json:"username"`
	ClientIP  string    `gorm:"size:64" json:"client_ip"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	Success   bool      `gorm:"not null" json:"success"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for the LoginLog model
func (LoginLog) TableName() string {
	return "login_log"
}

// CreateAccountRequest represents the data needed to create a new account
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Timezone string `json:"timezone"`
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the mutable profile fields
type UpdateProfileRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name" binding:"omitempty,max=255"`
	Timezone string `json:"timezone" binding:"omitempty,max=64"`
}
