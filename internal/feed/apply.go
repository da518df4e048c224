package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/lightbox/internal/db"
	"github.com/tOgg1/lightbox/internal/logging"
	"github.com/tOgg1/lightbox/internal/models"
)

// Applier turns decoded events into store mutations.
type Applier interface {
	Apply(ctx context.Context, ev Event) error
}

// StoreApplier applies events to the SQLite store. The viewer polls the
// store, so applied events become visible without further plumbing.
type StoreApplier struct {
	conversations *db.ConversationRepository
	messages      *db.MessageRepository
	log           zerolog.Logger
	now           func() time.Time
}

// StoreApplierOption configures a StoreApplier.
type StoreApplierOption func(*StoreApplier)

// WithNow replaces the applier's time source, for tests.
func WithNow(now func() time.Time) StoreApplierOption {
	return func(a *StoreApplier) {
		if now != nil {
			a.now = now
		}
	}
}

// NewStoreApplier builds an applier over the given database.
func NewStoreApplier(database *db.DB, opts ...StoreApplierOption) *StoreApplier {
	a := &StoreApplier{
		conversations: db.NewConversationRepository(database),
		messages:      db.NewMessageRepository(database),
		log:           logging.Component("feed"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply dispatches one event. Deleting an already-deleted message is not an
// error; the gateway may replay events after a reconnect.
func (a *StoreApplier) Apply(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventMessageCreated:
		return a.applyMessageCreated(ctx, ev)
	case EventMessageDeleted:
		return a.applyMessageDeleted(ctx, ev)
	case EventConversationUpdated:
		return a.applyConversationUpdated(ctx, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func (a *StoreApplier) applyMessageCreated(ctx context.Context, ev Event) error {
	msg := *ev.Message

	if err := a.ensureConversation(ctx, msg.ConversationID, ev.Conversation); err != nil {
		return err
	}
	if err := a.messages.Create(ctx, &msg); err != nil {
		return fmt.Errorf("failed to apply message_created: %w", err)
	}
	if err := a.conversations.Touch(ctx, msg.ConversationID, a.now()); err != nil {
		return fmt.Errorf("failed to bump conversation: %w", err)
	}
	a.log.Debug().Str("message_id", msg.ID).Int("attachments", len(msg.Attachments)).
		Msg("message applied")
	return nil
}

func (a *StoreApplier) applyMessageDeleted(ctx context.Context, ev Event) error {
	err := a.messages.Delete(ctx, ev.MessageID)
	if errors.Is(err, db.ErrMessageNotFound) {
		a.log.Debug().Str("message_id", ev.MessageID).Msg("delete for unknown message ignored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply message_deleted: %w", err)
	}
	return nil
}

func (a *StoreApplier) applyConversationUpdated(ctx context.Context, ev Event) error {
	conv := *ev.Conversation
	existing, err := a.conversations.Get(ctx, conv.ID)
	if errors.Is(err, db.ErrConversationNotFound) {
		if createErr := a.conversations.Create(ctx, &conv); createErr != nil {
			return fmt.Errorf("failed to apply conversation_updated: %w", createErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	if existing.Title == conv.Title {
		return nil
	}
	if err := a.conversations.Rename(ctx, conv.ID, conv.Title, a.now()); err != nil {
		return fmt.Errorf("failed to apply conversation_updated: %w", err)
	}
	return nil
}

// ensureConversation creates a placeholder conversation when a message
// arrives for one we have never seen. hint, when present, supplies the title.
func (a *StoreApplier) ensureConversation(ctx context.Context, id string, hint *models.Conversation) error {
	if id == "" {
		return nil
	}
	_, err := a.conversations.Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrConversationNotFound) {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	conv := models.Conversation{ID: id, Title: "(untitled)"}
	if hint != nil {
		conv = *hint
		conv.ID = id
	}
	if err := a.conversations.Create(ctx, &conv); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}
