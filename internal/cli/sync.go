package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tOgg1/lightbox/internal/feed"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the conversation feed into the local store",
		Long: "sync connects to the configured websocket feed and applies every " +
			"event to the local database until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Feed.URL == "" {
				return fmt.Errorf("feed.url is not configured")
			}

			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := feed.NewClient(a.cfg.Feed.URL, feed.NewStoreApplier(database),
				feed.WithBackoff(a.cfg.Feed.ReconnectInterval, a.cfg.Feed.MaxBackoff))

			fmt.Fprintf(cmd.OutOrStdout(), "Syncing from %s (ctrl-c to stop)\n", a.cfg.Feed.URL)
			err = client.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
