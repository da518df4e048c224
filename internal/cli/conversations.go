package cli

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tOgg1/lightbox/internal/viewer/data"
)

func newConversationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"ls"},
		Short:   "List stored conversations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			provider := data.NewStoreProvider(database)
			conversations, err := provider.Conversations(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(conversations))
			for _, conv := range conversations {
				title := conv.Title
				if title == "" {
					title = "(untitled)"
				}
				rows = append(rows, []string{
					conv.ID,
					title,
					strconv.Itoa(conv.MessageCount),
					strconv.Itoa(conv.AttachmentCount),
					humanize.Time(conv.UpdatedAt),
				})
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"ID", "TITLE", "MESSAGES", "ATTACHMENTS", "UPDATED"}, rows)
		},
	}
}
