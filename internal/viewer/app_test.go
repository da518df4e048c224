package viewer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/lightbox/internal/models"
	"github.com/tOgg1/lightbox/internal/viewer/state"
)

type stubProvider struct {
	conversation *models.Conversation
	msgs         []models.Message
	err          error
}

func (p *stubProvider) Conversation(ctx context.Context, id string) (*models.Conversation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.conversation, nil
}

func (p *stubProvider) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.msgs, nil
}

func (p *stubProvider) Conversations(ctx context.Context) ([]*models.Conversation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []*models.Conversation{p.conversation}, nil
}

func newTestModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	if cfg.Provider == nil {
		cfg.Provider = &stubProvider{
			conversation: &models.Conversation{ID: "conv-1", Title: "design review"},
			msgs:         testMessages(),
		}
	}
	if cfg.ConversationID == "" {
		cfg.ConversationID = "conv-1"
	}
	m, err := NewModel(cfg)
	require.NoError(t, err)
	return m
}

// load runs the synchronous part of the initial load: execute loadCmd and
// feed the resulting message back through Update.
func load(m *Model) {
	msg := m.loadCmd()()
	m.Update(msg)
}

func TestNewModelValidation(t *testing.T) {
	_, err := NewModel(Config{ConversationID: "conv-1"})
	assert.Error(t, err)

	_, err = NewModel(Config{Provider: &stubProvider{}})
	assert.Error(t, err)
}

func TestLoadOpensRequestedSource(t *testing.T) {
	m := newTestModel(t, Config{Source: "b.pdf"})
	load(m)

	assert.Equal(t, 1, m.pager.ctrl.Page())
	assert.Equal(t, "design review", m.conversation.Title)
}

func TestLoadResumesSessionSource(t *testing.T) {
	session := state.New(filepath.Join(t.TempDir(), "viewer-state.json"))
	session.SetActiveSource("conv-1", "c.mp4")

	m := newTestModel(t, Config{Session: session})
	load(m)

	assert.Equal(t, 2, m.pager.ctrl.Page())
	assert.Equal(t, "conv-1", session.LastConversation())
}

func TestPollKeepsCurrentPage(t *testing.T) {
	provider := &stubProvider{
		conversation: &models.Conversation{ID: "conv-1"},
		msgs:         testMessages(),
	}
	m := newTestModel(t, Config{Provider: provider, Source: "b.pdf"})
	load(m)
	require.Equal(t, 1, m.pager.ctrl.Page())

	// A refresh with identical data must not move the page or re-open.
	load(m)
	assert.Equal(t, 1, m.pager.ctrl.Page())
}

func TestLoadErrorKeepsCachedConversation(t *testing.T) {
	provider := &stubProvider{
		conversation: &models.Conversation{ID: "conv-1", Title: "design review"},
		msgs:         testMessages(),
	}
	m := newTestModel(t, Config{Provider: provider, Source: "a.png"})
	load(m)

	provider.err = errors.New("db locked")
	load(m)

	assert.Equal(t, 0, m.pager.ctrl.Page())
	m.width, m.height = 80, 24
	assert.Contains(t, m.View(), "load failed")
}

func TestDeletedAttachmentQuitsProgram(t *testing.T) {
	provider := &stubProvider{
		conversation: &models.Conversation{ID: "conv-1"},
		msgs:         testMessages(),
	}
	m := newTestModel(t, Config{Provider: provider, Source: "a.png"})
	load(m)

	provider.msgs = testMessages()[1:]
	msg := m.loadCmd()()
	_, next := m.Update(msg)
	require.NotNil(t, next)
	assert.Equal(t, tea.Quit(), next())
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, Config{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, Config{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "zoom out")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.False(t, m.showHelp)
}
