// Package viewer is the terminal lightbox: a bubbletea program that pages
// through a conversation's attachments with drag, arrow and zoom controls.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/lightbox/internal/logging"
	"github.com/tOgg1/lightbox/internal/models"
	"github.com/tOgg1/lightbox/internal/viewer/data"
	"github.com/tOgg1/lightbox/internal/viewer/state"
)

const defaultPollInterval = 2 * time.Second

// Config configures the viewer program.
type Config struct {
	Provider       data.Provider
	Session        *state.Manager
	ConversationID string

	// Source is the attachment to open first; empty resumes the session's
	// remembered attachment.
	Source string

	// Anchor restricts the pager to one reply thread, when set.
	Anchor string

	Theme            string
	PollInterval     time.Duration
	ArrowAutoHide    time.Duration
	PreviewCacheSize int
	Mouse            bool
}

type pollTickMsg struct{}

type conversationLoadedMsg struct {
	conversation *models.Conversation
	msgs         []models.Message
	err          error
}

// Model is the top-level bubbletea model.
type Model struct {
	provider data.Provider
	session  *state.Manager
	theme    Theme
	keys     keyMap
	help     help.Model
	log      zerolog.Logger

	conversationID string
	conversation   *models.Conversation
	source         string
	anchor         string
	pollInterval   time.Duration

	pager *carouselView

	width    int
	height   int
	showHelp bool
	opened   bool
	lastErr  error
}

// NewModel builds the viewer model.
func NewModel(cfg Config) (*Model, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.ConversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	theme := ThemeByName(cfg.Theme)

	m := &Model{
		provider:       cfg.Provider,
		session:        cfg.Session,
		theme:          theme,
		keys:           defaultKeyMap(),
		help:           help.New(),
		log:            logging.Component("viewer"),
		conversationID: cfg.ConversationID,
		source:         cfg.Source,
		anchor:         cfg.Anchor,
		pollInterval:   pollInterval,
		pager: newCarouselView(
			theme, cfg.Session, cfg.ConversationID,
			cfg.ArrowAutoHide, cfg.PreviewCacheSize, cfg.Mouse,
		),
	}

	if m.session != nil {
		m.session.SetLastConversation(cfg.ConversationID)
		if m.source == "" {
			m.source = m.session.ActiveSource(cfg.ConversationID)
		}
	}
	return m, nil
}

// Run builds and runs the viewer program until it exits.
func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(model, opts...)
	_, err = program.Run()
	return err
}

// Close flushes session state.
func (m *Model) Close() error {
	if m.session != nil {
		return m.session.Close()
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.pollCmd())
}

func (m *Model) loadCmd() tea.Cmd {
	provider := m.provider
	id := m.conversationID
	return func() tea.Msg {
		ctx := context.Background()
		conv, err := provider.Conversation(ctx, id)
		if err != nil {
			return conversationLoadedMsg{err: err}
		}
		msgs, err := provider.Messages(ctx, id)
		if err != nil {
			return conversationLoadedMsg{err: err}
		}
		return conversationLoadedMsg{conversation: conv, msgs: msgs}
	}
}

func (m *Model) pollCmd() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.help.Width = typed.Width
		return m, nil

	case pollTickMsg:
		return m, tea.Batch(m.loadCmd(), m.pollCmd())

	case conversationLoadedMsg:
		return m, m.handleLoaded(typed)

	case tea.KeyMsg:
		switch {
		case key.Matches(typed, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(typed, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

	case tea.MouseMsg:
		// The pager sits below the one-line header.
		typed.Y--
		cmd := m.pager.Update(typed)
		return m, m.afterPager(cmd)
	}

	cmd := m.pager.Update(msg)
	return m, m.afterPager(cmd)
}

// afterPager checks for dismissal after any pager interaction: when the
// viewed attachment is deleted from under us, the lightbox closes.
func (m *Model) afterPager(cmd tea.Cmd) tea.Cmd {
	if m.pager.Dismissed() {
		m.log.Info().Str("conversation_id", m.conversationID).
			Msg("viewed attachment deleted, closing")
		return tea.Quit
	}
	return cmd
}

func (m *Model) handleLoaded(msg conversationLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.lastErr = msg.err
		return nil
	}
	m.lastErr = nil
	m.conversation = msg.conversation
	m.pager.SetMessages(msg.msgs, m.anchor)

	if !m.opened {
		m.opened = true
		if m.source != "" {
			m.pager.Open(m.source)
		}
	}
	return m.afterPager(nil)
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}
	body := m.pager.View(m.width, contentHeight, m.theme)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	title := m.conversationID
	if m.conversation != nil && m.conversation.Title != "" {
		title = m.conversation.Title
	}
	line := m.theme.headerStyle().Render("lightbox") + "  " + m.theme.mutedStyle().Render(title)
	if m.lastErr != nil {
		line += "  " + m.theme.noticeStyle().Render("(load failed, showing cached data)")
	}
	return line
}

func (m *Model) renderFooter() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.theme.footerStyle().Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// keyMap defines the viewer key bindings.
type keyMap struct {
	Prev       key.Binding
	Next       key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ZoomReset  key.Binding
	FullScreen key.Binding
	Download   key.Binding
	Arrows     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		ZoomReset:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "fit")),
		FullScreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "full screen")),
		Download:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		Arrows:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "arrows")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.ZoomIn, k.FullScreen, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.FullScreen},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset},
		{k.Download, k.Arrows, k.Help, k.Quit},
	}
}
