package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/lightbox/internal/feed"
	"github.com/tOgg1/lightbox/internal/logging"
	"github.com/tOgg1/lightbox/internal/viewer"
	"github.com/tOgg1/lightbox/internal/viewer/data"
	"github.com/tOgg1/lightbox/internal/viewer/state"
)

func newViewCmd(a *app) *cobra.Command {
	var (
		source  string
		anchor  string
		theme   string
		mouse   bool
		noMouse bool
		follow  bool
	)

	cmd := &cobra.Command{
		Use:   "view [conversation-id]",
		Short: "Open the attachment lightbox for a conversation",
		Long: "view pages through a conversation's attachments. Without an argument it " +
			"reopens the last viewed conversation.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conversationID := ""
			if len(args) > 0 {
				conversationID = args[0]
			}
			useMouse := a.cfg.Viewer.Mouse
			if mouse {
				useMouse = true
			}
			if noMouse {
				useMouse = false
			}
			return a.runView(cmd.Context(), viewOptions{
				conversationID: conversationID,
				source:         source,
				anchor:         anchor,
				theme:          theme,
				mouse:          useMouse,
				follow:         follow,
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Attachment source to open first")
	cmd.Flags().StringVar(&anchor, "thread", "", "Restrict paging to the reply thread rooted at this message")
	cmd.Flags().StringVar(&theme, "theme", "", "Color theme (default, high-contrast)")
	cmd.Flags().BoolVar(&mouse, "mouse", false, "Enable mouse capture")
	cmd.Flags().BoolVar(&noMouse, "no-mouse", false, "Disable mouse capture")
	cmd.MarkFlagsMutuallyExclusive("mouse", "no-mouse")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep syncing from the feed while viewing")

	return cmd
}

type viewOptions struct {
	conversationID string
	source         string
	anchor         string
	theme          string
	mouse          bool
	follow         bool
}

func (a *app) runView(ctx context.Context, opts viewOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("view requires a terminal")
	}

	database, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	session := state.New(a.cfg.StatePath())
	if err := session.Load(); err != nil {
		logging.Warn().Err(err).Msg("failed to load viewer state, starting fresh")
	}

	conversationID := opts.conversationID
	if conversationID == "" {
		conversationID = session.LastConversation()
	}
	if conversationID == "" {
		return fmt.Errorf("no conversation given and none viewed before; run 'lightbox conversations' to pick one")
	}

	theme := opts.theme
	if theme == "" {
		theme = a.cfg.Viewer.Theme
	}

	if opts.follow {
		if a.cfg.Feed.URL == "" {
			return fmt.Errorf("--follow requires feed.url to be configured")
		}
		feedCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		client := feed.NewClient(a.cfg.Feed.URL, feed.NewStoreApplier(database),
			feed.WithBackoff(a.cfg.Feed.ReconnectInterval, a.cfg.Feed.MaxBackoff))
		go func() {
			_ = client.Run(feedCtx)
		}()
	}

	return viewer.Run(viewer.Config{
		Provider:         data.NewStoreProvider(database),
		Session:          session,
		ConversationID:   conversationID,
		Source:           opts.source,
		Anchor:           opts.anchor,
		Theme:            theme,
		PollInterval:     a.cfg.Viewer.PollInterval,
		ArrowAutoHide:    a.cfg.Viewer.ArrowAutoHide,
		PreviewCacheSize: a.cfg.Viewer.PreviewCacheSize,
		Mouse:            opts.mouse,
	})
}
