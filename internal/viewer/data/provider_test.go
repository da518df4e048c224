package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/lightbox/internal/db"
	"github.com/tOgg1/lightbox/internal/models"
)

func TestStoreProviderRoundTrip(t *testing.T) {
	ctx := context.Background()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = database.MigrateUp(ctx)
	require.NoError(t, err)

	conv := &models.Conversation{Title: "provider test"}
	require.NoError(t, db.NewConversationRepository(database).Create(ctx, conv))
	require.NoError(t, db.NewMessageRepository(database).Create(ctx, &models.Message{
		ConversationID: conv.ID,
		Author:         "ada",
		Body:           "with attachment",
		Attachments: []models.Attachment{
			{Kind: models.AttachmentKindImage, Source: "https://cdn.example.com/p.png", Name: "p.png"},
		},
	}))

	provider := NewStoreProvider(database)

	got, err := provider.Conversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, "provider test", got.Title)

	msgs, err := provider.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Attachments, 1)

	list, err := provider.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
