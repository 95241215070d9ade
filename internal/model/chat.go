package model

import "gorm.io/datatypes"

type ChatScope string

const (
	ScopeClass   ChatScope = "class"
	ScopeTeacher ChatScope = "teacher"
	ScopeAI      ChatScope = "ai"
)

func (s ChatScope) Valid() bool {
	return s == ScopeClass || s == ScopeTeacher || s == ScopeAI
}

// ChatThread groups messages for a class, a teacher channel or the AI assistant.
// swagger:model ChatThread
type ChatThread struct {
	BaseModel
	Scope    ChatScope      `gorm:"size:20;not null;index" json:"scope"`
	Subject  string         `gorm:"size:100" json:"subject"`
	OwnerID  *uint          `gorm:"index" json:"ownerId"`
	Audience datatypes.JSON `json:"audience" swaggertype:"object"`
}

func (ChatThread) TableName() string {
	return "chat_threads"
}

// swagger:model ChatMessage
type ChatMessage struct {
	BaseModel
	ThreadID uint     `gorm:"index;not null" json:"threadId"`
	SenderID uint     `gorm:"index;not null" json:"senderId"`
	Sender   *User    `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Role     UserRole `gorm:"size:20" json:"role"`
	Body     string   `gorm:"type:text;not null" json:"body"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
