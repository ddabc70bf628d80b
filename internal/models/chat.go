package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatRole identifies who authored a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage represents one turn of a chatbot conversation
type ChatMessage struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string         `gorm:"size:30;not null;index:idx_chat_user_created" json:"username"`
	Role      ChatRole       `gorm:"size:10;not null" json:"role"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Intent    string         `gorm:"size:30" json:"intent,omitempty"`
	Entities  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"entities,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index:idx_chat_user_created" json:"created_at"`
}

// BeforeCreate hook is called before creating a new chat message
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_message"
}

// ChatRequest represents an incoming chatbot message
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=1000"`
}
