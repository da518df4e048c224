package models

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingConversation = errors.New("conversation id is required")
	ErrMissingAuthor       = errors.New("message author is required")
)

// Message is one chat message, carrying its attachments inline when loaded
// through the store's list operations.
type Message struct {
	// ID is the unique identifier for the message.
	ID string `json:"id"`

	// ConversationID is the conversation this message belongs to.
	ConversationID string `json:"conversation_id"`

	// Author is the sender's handle.
	Author string `json:"author"`

	// Body is the message text. May be empty for attachment-only messages.
	Body string `json:"body,omitempty"`

	// ReplyTo links a reply to its thread root, when set.
	ReplyTo string `json:"reply_to,omitempty"`

	// CreatedAt is the send time.
	CreatedAt time.Time `json:"created_at"`

	// Attachments are the message's attachments in position order.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Validate checks the message and its attachments for storage.
func (m *Message) Validate() error {
	v := &ValidationErrors{}
	if strings.TrimSpace(m.ConversationID) == "" {
		v.Add("conversation_id", ErrMissingConversation)
	}
	if strings.TrimSpace(m.Author) == "" {
		v.Add("author", ErrMissingAuthor)
	}
	if strings.TrimSpace(m.Body) == "" && len(m.Attachments) == 0 {
		v.AddMessage("body", "message needs a body or at least one attachment")
	}
	for i, att := range m.Attachments {
		v.Add("attachments["+strconv.Itoa(i)+"]", att.Validate())
	}
	return v.Err()
}

// HasAttachments reports whether the message carries any attachments.
func (m *Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}
