package models

import (
	"strings"
	"time"
)

// Conversation is a chat the viewer can open.
type Conversation struct {
	// ID is the unique identifier for the conversation.
	ID string `json:"id"`

	// Title is the human-friendly conversation name.
	Title string `json:"title"`

	// CreatedAt is when the conversation was first stored.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt tracks the latest message or edit.
	UpdatedAt time.Time `json:"updated_at"`

	// MessageCount is filled by list queries.
	MessageCount int `json:"message_count,omitempty"`

	// AttachmentCount is filled by list queries.
	AttachmentCount int `json:"attachment_count,omitempty"`
}

// Validate checks the conversation for storage.
func (c *Conversation) Validate() error {
	v := &ValidationErrors{}
	if strings.TrimSpace(c.Title) == "" {
		v.AddMessage("title", "conversation title is required")
	}
	return v.Err()
}
