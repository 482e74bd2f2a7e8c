package domain

import "time"

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	MessageRoleUser  MessageRole = "user"
	MessageRoleModel MessageRole = "model"
)

// Thread is an advisory conversation. OrgID is fixed at creation.
type Thread struct {
	ID        string    `json:"id" bson:"_id"`
	OrgID     string    `json:"org_id" bson:"org_id"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Message is a single entry in a thread's feed.
type Message struct {
	ID        string      `json:"id" bson:"_id"`
	ThreadID  string      `json:"thread_id" bson:"thread_id"`
	Role      MessageRole `json:"role" bson:"role"`
	Content   string      `json:"content" bson:"content"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
