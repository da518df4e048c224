package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/lightbox/internal/db"
	"github.com/tOgg1/lightbox/internal/models"
)

func newTestApplier(t *testing.T) (*StoreApplier, *db.DB) {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)

	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return NewStoreApplier(database, WithNow(func() time.Time { return fixed })), database
}

func TestApplyMessageCreated(t *testing.T) {
	ctx := context.Background()
	applier, database := newTestApplier(t)

	ev := Event{
		Type: EventMessageCreated,
		Message: &models.Message{
			ID:             "m1",
			ConversationID: "c1",
			Author:         "ada",
			Body:           "hello",
			Attachments: []models.Attachment{
				{Kind: models.AttachmentKindImage, Source: "https://cdn.example.com/a.png", Name: "a.png"},
			},
		},
	}
	require.NoError(t, applier.Apply(ctx, ev))

	// A placeholder conversation was created for the unseen ID.
	conv, err := db.NewConversationRepository(database).Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "(untitled)", conv.Title)

	msg, err := db.NewMessageRepository(database).Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Body)
	require.Len(t, msg.Attachments, 1)
}

func TestApplyMessageCreatedWithConversationHint(t *testing.T) {
	ctx := context.Background()
	applier, database := newTestApplier(t)

	ev := Event{
		Type:         EventMessageCreated,
		Conversation: &models.Conversation{ID: "c2", Title: "release party"},
		Message: &models.Message{
			ID:             "m2",
			ConversationID: "c2",
			Author:         "lin",
			Body:           "cake pics",
		},
	}
	require.NoError(t, applier.Apply(ctx, ev))

	conv, err := db.NewConversationRepository(database).Get(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "release party", conv.Title)
}

func TestApplyMessageDeleted(t *testing.T) {
	ctx := context.Background()
	applier, database := newTestApplier(t)

	require.NoError(t, applier.Apply(ctx, Event{
		Type: EventMessageCreated,
		Message: &models.Message{
			ID: "m3", ConversationID: "c3", Author: "ada", Body: "soon gone",
		},
	}))
	require.NoError(t, applier.Apply(ctx, Event{Type: EventMessageDeleted, MessageID: "m3"}))

	_, err := db.NewMessageRepository(database).Get(ctx, "m3")
	require.ErrorIs(t, err, db.ErrMessageNotFound)

	// Replays of the delete are ignored.
	require.NoError(t, applier.Apply(ctx, Event{Type: EventMessageDeleted, MessageID: "m3"}))
}

func TestApplyConversationUpdated(t *testing.T) {
	ctx := context.Background()
	applier, database := newTestApplier(t)

	// First update creates the conversation.
	require.NoError(t, applier.Apply(ctx, Event{
		Type:         EventConversationUpdated,
		Conversation: &models.Conversation{ID: "c4", Title: "first"},
	}))

	// Second update renames it.
	require.NoError(t, applier.Apply(ctx, Event{
		Type:         EventConversationUpdated,
		Conversation: &models.Conversation{ID: "c4", Title: "second"},
	}))

	conv, err := db.NewConversationRepository(database).Get(ctx, "c4")
	require.NoError(t, err)
	assert.Equal(t, "second", conv.Title)
}
