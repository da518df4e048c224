// Package data abstracts conversation access for the viewer, so the TUI can
// run against the SQLite store in production and stubs in tests.
package data

import (
	"context"

	"github.com/tOgg1/lightbox/internal/db"
	"github.com/tOgg1/lightbox/internal/models"
)

// Provider serves conversation data to the viewer. Messages returns a
// conversation's messages oldest first with attachments inline; the viewer
// polls it on a timer, so implementations should be cheap to call.
type Provider interface {
	Conversation(ctx context.Context, id string) (*models.Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
	Conversations(ctx context.Context) ([]*models.Conversation, error)
}

// StoreProvider serves data straight from the SQLite store.
type StoreProvider struct {
	conversations *db.ConversationRepository
	messages      *db.MessageRepository
}

// NewStoreProvider builds a provider over the given database.
func NewStoreProvider(database *db.DB) *StoreProvider {
	return &StoreProvider{
		conversations: db.NewConversationRepository(database),
		messages:      db.NewMessageRepository(database),
	}
}

func (p *StoreProvider) Conversation(ctx context.Context, id string) (*models.Conversation, error) {
	return p.conversations.Get(ctx, id)
}

func (p *StoreProvider) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return p.messages.ListByConversation(ctx, conversationID)
}

func (p *StoreProvider) Conversations(ctx context.Context) ([]*models.Conversation, error) {
	return p.conversations.List(ctx)
}
