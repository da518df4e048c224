package viewer

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/lightbox/internal/carousel"
	"github.com/tOgg1/lightbox/internal/logging"
	"github.com/tOgg1/lightbox/internal/models"
	"github.com/tOgg1/lightbox/internal/viewer/state"
)

// frameRate drives commit animations; 30fps is plenty for cell motion.
const frameInterval = time.Second / 30

type frameMsg time.Time

type arrowHideMsg struct {
	token int
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// carouselView is the pager: it translates key and mouse events into
// carousel.Controller calls and renders the strip with its arrow chrome.
type carouselView struct {
	ctrl    *carousel.Controller
	preview *previewRenderer
	session *state.Manager
	theme   Theme
	log     zerolog.Logger

	conversationID string
	meta           map[string]models.Attachment

	width  int
	height int

	fullScreen   bool
	downloadable bool
	dismissed    bool

	autoHide   time.Duration
	arrowToken int
	armArrows  bool

	pressed  bool
	pressX   int
	pressY   int
	dragged  bool

	viewabilityDirty bool

	now func() time.Time
}

func newCarouselView(theme Theme, session *state.Manager, conversationID string, autoHide time.Duration, cacheSize int, touchCapable bool) *carouselView {
	v := &carouselView{
		preview:        newPreviewRenderer(theme, cacheSize),
		session:        session,
		theme:          theme,
		log:            logging.Component("viewer"),
		conversationID: conversationID,
		meta:           make(map[string]models.Attachment),
		autoHide:       autoHide,
		now:            time.Now,
	}

	host := carousel.Host{
		Navigate: func(att carousel.Attachment) {
			if v.session != nil {
				v.session.SetActiveSource(v.conversationID, att.Key)
			}
		},
		SetDownloadVisible: func(visible bool) {
			v.downloadable = visible
		},
		Dismiss: func() {
			v.dismissed = true
		},
		SetArrowsVisible: func(visible bool) {
			if visible {
				v.armArrows = true
			}
		},
		FullScreen: func() bool {
			return v.fullScreen
		},
	}

	v.ctrl = carousel.New(host, carousel.WithTouchCapable(touchCapable))
	v.ctrl.OnOffsetChange(func(float64) {
		// The animator is the single authority over the surface position;
		// the strip reads it at render time, we only note that visibility
		// must be recomputed.
		v.viewabilityDirty = true
	})
	return v
}

func (v *carouselView) Init() tea.Cmd {
	return nil
}

// SetMessages feeds fresh conversation data through the controller,
// remembering full attachment metadata for preview rendering.
func (v *carouselView) SetMessages(msgs []models.Message, anchor string) {
	pagerMsgs := make([]carousel.Message, 0, len(msgs))
	meta := make(map[string]models.Attachment)
	for _, msg := range msgs {
		pm := carousel.Message{ID: msg.ID, ReplyTo: msg.ReplyTo}
		for _, att := range msg.Attachments {
			item := carousel.Attachment{
				Key:       att.Source,
				Source:    att.Source,
				MessageID: msg.ID,
				Name:      att.Name,
				Kind:      carousel.Kind(att.Kind),
			}
			if item.Key == "" {
				item.Key = msg.ID
			}
			pm.Attachments = append(pm.Attachments, item)
			meta[item.Key] = att
		}
		pagerMsgs = append(pagerMsgs, pm)
	}
	v.meta = meta
	v.ctrl.Replace(pagerMsgs, anchor)
}

// Open jumps to the attachment with the given key.
func (v *carouselView) Open(key string) {
	v.ctrl.Open(key)
}

// Dismissed reports that the viewed attachment was deleted and the host
// should close the carousel.
func (v *carouselView) Dismissed() bool {
	return v.dismissed
}

func (v *carouselView) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case frameMsg:
		if v.ctrl.Advance(time.Time(typed)) {
			cmds = append(cmds, frameCmd())
		}

	case arrowHideMsg:
		if typed.token == v.arrowToken {
			v.ctrl.HideArrows()
		}

	case tea.KeyMsg:
		cmds = append(cmds, v.handleKey(typed))

	case tea.MouseMsg:
		cmds = append(cmds, v.handleMouse(typed))
	}

	v.flushViewability()
	cmds = append(cmds, v.drainArrowTimer())
	return tea.Batch(cmds...)
}

func (v *carouselView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		v.ctrl.Step(-1)
	case "right", "l":
		v.ctrl.Step(1)
	case "+", "=":
		v.ctrl.ReportScale(v.ctrl.Scale() * 1.25)
	case "-":
		v.ctrl.ReportScale(v.ctrl.Scale() / 1.25)
	case "0":
		v.ctrl.ReportScale(1)
	case "f":
		v.fullScreen = !v.fullScreen
	case "a":
		v.ctrl.HandleTap()
	case "d":
		if v.downloadable {
			if att, ok := v.ctrl.Active(); ok {
				log := logging.WithAttachment(att.Key, att.Source)
				log.Info().Msg("download requested")
			}
		}
	}
	if v.ctrl.Animating() {
		return frameCmd()
	}
	return nil
}

func (v *carouselView) handleMouse(msg tea.MouseMsg) tea.Cmd {
	now := v.now()
	point := carousel.Point{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			v.ctrl.Step(-1)
		case tea.MouseButtonWheelDown:
			v.ctrl.Step(1)
		case tea.MouseButtonLeft:
			if v.hitArrow(msg.X, msg.Y) != 0 {
				v.ctrl.ShowArrows()
				v.arrowToken++
				v.ctrl.Step(v.hitArrow(msg.X, msg.Y))
				break
			}
			// Pointer activity supersedes any pending arrow auto-hide.
			v.arrowToken++
			v.pressed = true
			v.dragged = false
			v.pressX, v.pressY = msg.X, msg.Y
			v.ctrl.PointerDown(point, now)
		}

	case tea.MouseActionMotion:
		if v.pressed {
			if msg.X != v.pressX || msg.Y != v.pressY {
				v.dragged = true
			}
			v.ctrl.PointerMove(point, now)
		}

	case tea.MouseActionRelease:
		if v.pressed {
			v.pressed = false
			if v.dragged {
				v.ctrl.PointerUp(now)
			} else {
				v.ctrl.PointerUp(now)
				v.ctrl.HandleTap()
			}
		}
	}

	if v.ctrl.Animating() {
		return frameCmd()
	}
	return nil
}

// hitArrow maps a click onto the arrow chrome: -1 for the back arrow,
// +1 for the forward arrow, 0 for neither.
func (v *carouselView) hitArrow(x, y int) int {
	if y != 0 || !v.ctrl.ArrowsVisible() {
		return 0
	}
	if x <= 2 && v.ctrl.Page() > 0 {
		return -1
	}
	if x >= v.width-3 && v.ctrl.Page() < v.ctrl.Len()-1 {
		return 1
	}
	return 0
}

// flushViewability recomputes which panes the window shows after any offset
// change and feeds the controller's visibility commit path.
func (v *carouselView) flushViewability() {
	if !v.viewabilityDirty {
		return
	}
	v.viewabilityDirty = false
	v.ctrl.HandleViewability(viewabilityEntries(v.ctrl.Offset(), v.ctrl.Width(), v.ctrl.Len()))
}

// drainArrowTimer starts the auto-hide countdown when the arrows were just
// shown. Each show supersedes prior timers via the token.
func (v *carouselView) drainArrowTimer() tea.Cmd {
	if !v.armArrows {
		return nil
	}
	v.armArrows = false
	if v.autoHide <= 0 {
		return nil
	}
	v.arrowToken++
	token := v.arrowToken
	return tea.Tick(v.autoHide, func(time.Time) tea.Msg {
		return arrowHideMsg{token: token}
	})
}

func (v *carouselView) View(width, height int, theme Theme) string {
	v.width = width
	v.height = height
	v.theme = theme
	v.ctrl.SetWidth(float64(width))

	if height < 2 || width < 4 {
		return ""
	}

	stripHeight := height - 1
	items := v.ctrl.Items()

	if len(items) == 0 || v.ctrl.Page() == carousel.NotFound {
		pane := v.preview.NotFoundPane(width, stripHeight)
		return lipgloss.JoinVertical(lipgloss.Left, v.renderChrome(), pane)
	}

	if v.fullScreen {
		att := v.meta[items[clampPage(v.ctrl.Page(), len(items))].Key]
		return v.preview.Render(att, width, height)
	}

	panes := make([]string, len(items))
	for i, item := range items {
		panes[i] = v.preview.Render(v.meta[item.Key], width, stripHeight)
	}
	strip := composeStrip(panes, width, stripHeight, int(v.ctrl.Offset()+0.5))
	return lipgloss.JoinVertical(lipgloss.Left, v.renderChrome(), strip)
}

// renderChrome draws the arrow bar: back/forward arrows, position, the
// active attachment's name, and the zoom level when off fit.
func (v *carouselView) renderChrome() string {
	if !v.ctrl.ArrowsVisible() {
		return ""
	}

	left := "   "
	if v.ctrl.Page() > 0 {
		left = v.theme.arrowStyle().Render(" ❮ ")
	}
	right := "   "
	if v.ctrl.Page() >= 0 && v.ctrl.Page() < v.ctrl.Len()-1 {
		right = v.theme.arrowStyle().Render(" ❯ ")
	}

	center := ""
	if att, ok := v.ctrl.Active(); ok {
		center = fmt.Sprintf("%d/%d  %s", v.ctrl.Page()+1, v.ctrl.Len(), att.Name)
		if scale := v.ctrl.Scale(); scale != 1 {
			center += fmt.Sprintf("  %d%%", int(scale*100+0.5))
		}
		if v.downloadable {
			center += "  ⇣"
		}
	}
	center = v.theme.accentStyle().Render(center)

	gap := v.width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	pad := gap / 2
	return left + spaces(pad) + center + spaces(gap-pad) + right
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}

func clampPage(page, count int) int {
	if page < 0 {
		return 0
	}
	if page >= count {
		return count - 1
	}
	return page
}
