package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/lightbox/internal/db"
	"github.com/tOgg1/lightbox/internal/models"
)

// importFixture is the JSON shape consumed by `lightbox import`: one
// conversation with its messages and attachments inline.
type importFixture struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []models.Message    `json:"messages"`
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a conversation from a JSON file",
		Long: "import loads a conversation dump into the local store, so the viewer " +
			"can be used without a feed connection.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var fixture importFixture
			if err := json.Unmarshal(payload, &fixture); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			conversations := db.NewConversationRepository(database)
			messages := db.NewMessageRepository(database)

			conv := fixture.Conversation
			_, err = conversations.Get(ctx, conv.ID)
			switch {
			case conv.ID == "", errors.Is(err, db.ErrConversationNotFound):
				if err := conversations.Create(ctx, &conv); err != nil {
					return fmt.Errorf("failed to store conversation: %w", err)
				}
			case err != nil:
				return err
			}

			imported := 0
			attachments := 0
			for i := range fixture.Messages {
				msg := fixture.Messages[i]
				msg.ConversationID = conv.ID
				if err := messages.Create(ctx, &msg); err != nil {
					return fmt.Errorf("failed to store message %d: %w", i, err)
				}
				imported++
				attachments += len(msg.Attachments)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages (%d attachments) into conversation %s\n",
				imported, attachments, conv.ID)
			return nil
		},
	}
}
