package viewer

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/lightbox/internal/carousel"
	"github.com/tOgg1/lightbox/internal/logging"
	"github.com/tOgg1/lightbox/internal/models"
	"github.com/tOgg1/lightbox/internal/viewer/state"
)

func testMessages() []models.Message {
	return []models.Message{
		{
			ID: "m1",
			Attachments: []models.Attachment{
				{Source: "a.png", Name: "a.png", Kind: models.AttachmentKindImage},
				{Source: "b.pdf", Name: "b.pdf", Kind: models.AttachmentKindDocument},
			},
		},
		{
			ID: "m2",
			Attachments: []models.Attachment{
				{Source: "c.mp4", Name: "c.mp4", Kind: models.AttachmentKindVideo},
			},
		},
	}
}

func newTestView(t *testing.T) *carouselView {
	t.Helper()
	v := newCarouselView(DefaultTheme, nil, "conv-1", 0, 4, true)
	v.SetMessages(testMessages(), "")
	v.Open("a.png")
	v.View(90, 10, DefaultTheme)
	return v
}

// settleView pumps frame messages until the commit animation finishes.
func settleView(v *carouselView) {
	deadline := time.Now().Add(5 * time.Second)
	for i := 0; v.ctrl.Animating() && i < 100; i++ {
		v.Update(frameMsg(deadline))
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSetMessagesMapsAttachments(t *testing.T) {
	v := newCarouselView(DefaultTheme, nil, "conv-1", 0, 4, true)
	v.SetMessages(testMessages(), "")

	items := v.ctrl.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "a.png", items[0].Key)
	assert.Equal(t, "b.pdf", items[1].Key)
	assert.Equal(t, "c.mp4", items[2].Key)
	assert.Equal(t, "m2", items[2].MessageID)
}

func TestSetMessagesKeyFallsBackToMessageID(t *testing.T) {
	v := newCarouselView(DefaultTheme, nil, "conv-1", 0, 4, true)
	v.SetMessages([]models.Message{
		{ID: "m9", Attachments: []models.Attachment{{Name: "inline", Kind: models.AttachmentKindFile}}},
	}, "")

	items := v.ctrl.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "m9", items[0].Key)
}

func TestOpenJumpsToKey(t *testing.T) {
	v := newTestView(t)
	v.Open("c.mp4")
	assert.Equal(t, 2, v.ctrl.Page())
}

func TestOpenUnknownKeyLandsOnNotFound(t *testing.T) {
	v := newTestView(t)
	v.Open("missing.bin")
	assert.Equal(t, carousel.NotFound, v.ctrl.Page())
	assert.Contains(t, v.View(90, 10, DefaultTheme), "attachment not found")
}

func TestArrowKeysStepPages(t *testing.T) {
	v := newTestView(t)

	cmd := v.Update(keyMsg("right"))
	require.NotNil(t, cmd)
	settleView(v)
	assert.Equal(t, 1, v.ctrl.Page())

	v.Update(keyMsg("left"))
	settleView(v)
	assert.Equal(t, 0, v.ctrl.Page())
}

func TestStepPastEndIsIgnored(t *testing.T) {
	v := newTestView(t)
	v.Open("c.mp4")

	v.Update(keyMsg("right"))
	settleView(v)
	assert.Equal(t, 2, v.ctrl.Page())
}

func TestWheelStepsPages(t *testing.T) {
	v := newTestView(t)

	v.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	settleView(v)
	assert.Equal(t, 1, v.ctrl.Page())

	v.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	settleView(v)
	assert.Equal(t, 0, v.ctrl.Page())
}

func TestDragPastThresholdCommitsNextPage(t *testing.T) {
	v := newTestView(t)

	// Leftward drag beyond width/3 pulls in the next page.
	v.Update(tea.MouseMsg{X: 80, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	v.Update(tea.MouseMsg{X: 70, Y: 5, Action: tea.MouseActionMotion})
	v.Update(tea.MouseMsg{X: 60, Y: 5, Action: tea.MouseActionMotion})
	v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionMotion})
	v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	settleView(v)
	assert.Equal(t, 1, v.ctrl.Page())
}

func TestFullWidthDragCommitsExactlyOnePage(t *testing.T) {
	v := newTestView(t)

	// Dragging the entire viewport width pulls in only the next page, no
	// matter how dominant the neighbor becomes before release.
	v.Update(tea.MouseMsg{X: 89, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	for _, x := range []int{88, 87, 60, 30, 1, 0} {
		v.Update(tea.MouseMsg{X: x, Y: 5, Action: tea.MouseActionMotion})
	}
	v.Update(tea.MouseMsg{X: 0, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	settleView(v)
	assert.Equal(t, 1, v.ctrl.Page())
	assert.InDelta(t, 90, v.ctrl.Offset(), 0.001)
	assert.False(t, v.ctrl.Scrolling())
}

func TestShortDragSnapsBack(t *testing.T) {
	v := newTestView(t)

	v.Update(tea.MouseMsg{X: 80, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	v.Update(tea.MouseMsg{X: 78, Y: 5, Action: tea.MouseActionMotion})
	v.Update(tea.MouseMsg{X: 76, Y: 5, Action: tea.MouseActionMotion})
	v.Update(tea.MouseMsg{X: 75, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	settleView(v)
	assert.Equal(t, 0, v.ctrl.Page())
	assert.InDelta(t, 0, v.ctrl.Offset(), 0.001)
}

func TestTapTogglesArrows(t *testing.T) {
	v := newTestView(t)
	require.True(t, v.ctrl.ArrowsVisible())

	v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, v.ctrl.ArrowsVisible())

	v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.True(t, v.ctrl.ArrowsVisible())
}

func TestArrowAutoHideTimerFires(t *testing.T) {
	v := newCarouselView(DefaultTheme, nil, "conv-1", 10*time.Millisecond, 4, true)
	v.SetMessages(testMessages(), "")
	v.Open("a.png")
	v.View(90, 10, DefaultTheme)

	tap := func() tea.Cmd {
		v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		return v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	}

	tap() // hide
	cmd := tap() // show arms the auto-hide timer
	require.True(t, v.ctrl.ArrowsVisible())
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, arrowHideMsg{}, msg)
	v.Update(msg)
	assert.False(t, v.ctrl.ArrowsVisible())
}

func TestPointerActivityCancelsArrowAutoHide(t *testing.T) {
	v := newCarouselView(DefaultTheme, nil, "conv-1", 10*time.Millisecond, 4, true)
	v.SetMessages(testMessages(), "")
	v.Open("a.png")
	v.View(90, 10, DefaultTheme)

	tap := func() tea.Cmd {
		v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		return v.Update(tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	}

	tap()
	cmd := tap()
	require.NotNil(t, cmd)
	msg := cmd()

	// A new press supersedes the pending hide.
	v.Update(tea.MouseMsg{X: 50, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	v.Update(msg)
	assert.True(t, v.ctrl.ArrowsVisible())
}

func TestZoomHidesChromeAndBlocksTap(t *testing.T) {
	v := newTestView(t)

	v.Update(keyMsg("+"))
	assert.InDelta(t, 1.25, v.ctrl.Scale(), 0.001)
	assert.False(t, v.ctrl.ArrowsVisible())

	// Taps belong to the zoomed viewer.
	v.Update(keyMsg("a"))
	assert.False(t, v.ctrl.ArrowsVisible())

	v.Update(keyMsg("0"))
	assert.True(t, v.ctrl.ArrowsVisible())
}

func TestDownloadKeyLogsActiveAttachment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logging.Init(logging.Config{Level: "info", Format: "json", Output: &buf}))
	t.Cleanup(func() { _ = logging.Init(logging.DefaultConfig()) })

	v := newTestView(t)
	require.True(t, v.downloadable)

	v.Update(keyMsg("d"))
	assert.Contains(t, buf.String(), "download requested")
	assert.Contains(t, buf.String(), "a.png")
}

func TestFullScreenSuppressesViewabilityCommits(t *testing.T) {
	v := newTestView(t)

	v.Update(keyMsg("f"))
	v.ctrl.HandleViewability([]carousel.Viewable{{Index: 2, Ratio: 1}})
	assert.Equal(t, 0, v.ctrl.Page())

	v.Update(keyMsg("f"))
	v.ctrl.HandleViewability([]carousel.Viewable{{Index: 2, Ratio: 1}})
	assert.Equal(t, 2, v.ctrl.Page())
}

func TestDeletingViewedAttachmentDismisses(t *testing.T) {
	v := newTestView(t)
	require.False(t, v.Dismissed())

	// Drop the message holding the viewed attachment.
	v.SetMessages(testMessages()[1:], "")
	assert.True(t, v.Dismissed())
}

func TestNavigateRecordsActiveSource(t *testing.T) {
	session := state.New(filepath.Join(t.TempDir(), "viewer-state.json"))
	v := newCarouselView(DefaultTheme, session, "conv-1", 0, 4, true)
	v.SetMessages(testMessages(), "")
	v.Open("b.pdf")

	assert.Equal(t, "b.pdf", session.ActiveSource("conv-1"))
}

func TestChromeShowsPositionAndName(t *testing.T) {
	v := newTestView(t)
	out := v.View(90, 10, DefaultTheme)
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "a.png")

	v.Update(keyMsg("right"))
	settleView(v)
	out = v.View(90, 10, DefaultTheme)
	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "b.pdf")
}
