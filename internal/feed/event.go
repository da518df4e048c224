// Package feed keeps the local conversation store in sync with a chat
// gateway over a websocket event stream.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tOgg1/lightbox/internal/models"
)

// EventType identifies a gateway event.
type EventType string

const (
	EventMessageCreated      EventType = "message_created"
	EventMessageDeleted      EventType = "message_deleted"
	EventConversationUpdated EventType = "conversation_updated"
)

// Feed errors.
var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrEmptyEvent   = errors.New("event has no payload")
)

// Event is one decoded gateway event. Exactly the fields matching Type are
// populated.
type Event struct {
	Type EventType `json:"type"`

	// Conversation accompanies conversation_updated and, optionally,
	// message_created for conversations not yet stored locally.
	Conversation *models.Conversation `json:"conversation,omitempty"`

	// Message accompanies message_created.
	Message *models.Message `json:"message,omitempty"`

	// MessageID accompanies message_deleted.
	MessageID string `json:"message_id,omitempty"`
}

// Decode parses one wire frame into an Event, validating that the payload
// matches the declared type.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}

	switch ev.Type {
	case EventMessageCreated:
		if ev.Message == nil {
			return Event{}, fmt.Errorf("%w: message_created without message", ErrEmptyEvent)
		}
	case EventMessageDeleted:
		if strings.TrimSpace(ev.MessageID) == "" {
			return Event{}, fmt.Errorf("%w: message_deleted without message_id", ErrEmptyEvent)
		}
	case EventConversationUpdated:
		if ev.Conversation == nil {
			return Event{}, fmt.Errorf("%w: conversation_updated without conversation", ErrEmptyEvent)
		}
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return ev, nil
}
