package carousel

import (
	"time"

	"github.com/rs/zerolog"
)

// Viewable is one entry of a visibility report from the physical scroll
// surface: an item index and the fraction of the viewport it occupies.
type Viewable struct {
	Index int
	Ratio float64
}

// ItemContext is handed to each rendered item so zoomable viewers can report
// their scale, forward taps, and check whether the pager is mid-swipe.
type ItemContext struct {
	Index       int
	Tap         func()
	ReportScale func(float64)
	Swiping     func() bool
}

// Controller is the pager façade: it owns the attachment set, the page
// state, the offset animator, the gesture arbiter and the zoom coordinator,
// and funnels every outward effect through the Host callbacks.
//
// All methods must be called from one goroutine; the controller is built for
// an event-loop host and holds no locks.
type Controller struct {
	host Host
	log  zerolog.Logger

	set       Set
	page      int
	activeKey string
	lastShown string
	width     float64

	offset  *Animator
	gesture arbiter
	zoom    zoom

	scrolling bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithClock replaces the animator's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.offset = NewAnimator(WithAnimatorClock(now))
		}
	}
}

// WithTouchCapable sets whether the device delivers touch/pointer gestures.
// Non-capable hosts keep arrows as the only paging control.
func WithTouchCapable(capable bool) Option {
	return func(c *Controller) {
		c.zoom = newZoom(c, capable)
	}
}

// New returns a controller with an empty set and no page.
func New(host Host, opts ...Option) *Controller {
	c := &Controller{
		host:   host,
		log:    zerolog.Nop(),
		page:   NotFound,
		offset: NewAnimator(),
	}
	c.gesture = arbiter{c: c}
	c.zoom = newZoom(c, true)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetWidth records the container width. At rest the offset snaps to keep the
// current page aligned with the new geometry.
func (c *Controller) SetWidth(w float64) {
	if w == c.width {
		return
	}
	c.width = w
	if c.page >= 0 && w > 0 && !c.Swiping() && !c.offset.Animating() {
		c.offset.Set(w * float64(c.page))
	}
}

// Replace derives a fresh attachment set from msgs (scoped to the reply
// thread anchor when non-empty) and reconciles the page state against it.
// Structurally identical data is a complete no-op: no page movement, no
// host callbacks.
func (c *Controller) Replace(msgs []Message, anchor string) {
	next := Derive(msgs, anchor)
	out := Reconcile(next, c.set, c.activeKey, c.lastShown)
	if !out.Changed {
		return
	}
	c.set = next

	if out.Dismiss {
		c.page = NotFound
		c.log.Debug().Str("active", c.activeKey).Msg("viewed attachment deleted, dismissing")
		c.host.dismiss()
		return
	}

	c.page = out.Page
	if out.HasActive {
		c.lastShown = out.Active.Key
		c.host.navigate(out.Active)
		c.host.setDownloadVisible(true)
	} else {
		c.host.setDownloadVisible(false)
	}

	if c.page >= 0 && c.width > 0 && c.gesture.phase != phaseActive {
		c.offset.Set(c.width * float64(c.page))
	}
}

// Open makes key the requested active attachment, as when the host deep
// links straight to one item. Unknown keys land on the not-found page.
func (c *Controller) Open(key string) {
	if key == "" {
		return
	}
	c.activeKey = key
	idx := c.set.Index(key)
	if idx == NotFound {
		c.page = NotFound
		c.host.setDownloadVisible(false)
		return
	}
	c.CommitPage(idx)
}

// CommitPage makes index the authoritative page and notifies the host.
// Out-of-range indexes are ignored. At rest the offset snaps to the
// committed page so the two never disagree between animations.
func (c *Controller) CommitPage(index int) {
	att, ok := c.set.At(index)
	if !ok {
		return
	}
	c.page = index
	c.activeKey = att.Key
	c.lastShown = att.Key
	c.log.Debug().Int("page", index).Str("key", att.Key).Msg("page committed")
	c.host.navigate(att)
	c.host.setDownloadVisible(true)
	if c.width > 0 && !c.Swiping() && !c.offset.Animating() {
		c.offset.Set(c.width * float64(index))
	}
}

// Step runs the explicit arrow navigation: ease-in-out toward page
// current+delta, committing on arrival. Targets outside the set are ignored.
func (c *Controller) Step(delta int) {
	c.stepPage(delta, EaseInOutCubic)
}

// stepPage animates toward current+delta with the given curve and commits on
// completion. The gesture arbiter uses the decelerating curve here for both
// commits and snap-backs.
func (c *Controller) stepPage(delta int, ease EasingFunc) {
	next := c.page + delta
	if _, ok := c.set.At(next); !ok {
		return
	}
	if c.width <= 0 {
		return
	}
	c.scrolling = true
	c.offset.AnimateTo(c.width*float64(next), commitDuration, ease, func() {
		c.CommitPage(next)
		c.scrolling = false
	})
}

// HandleViewability consumes a visibility report from the scroll surface.
// Ignored entirely while the host's full-screen sub-mode runs its own
// paging, and while a pan gesture is active: until release the arbiter is
// the only authority over the page, and committing under its feet would
// retarget the drag math mid-stream. An item must occupy more than the
// viewable threshold to commit; with nothing viewable the active source is
// cleared instead.
func (c *Controller) HandleViewability(entries []Viewable) {
	if c.host.fullScreen() {
		return
	}
	if c.Swiping() {
		return
	}
	c.host.blurInput()

	best := -1
	for _, e := range entries {
		if e.Ratio > viewableThreshold {
			best = e.Index
			break
		}
	}
	if best < 0 {
		c.activeKey = ""
		c.host.setDownloadVisible(false)
		return
	}

	att, ok := c.set.At(best)
	if !ok {
		return
	}
	if best == c.page && att.Key == c.activeKey {
		return
	}
	c.CommitPage(best)
}

// PointerDown starts a potential gesture at p.
func (c *Controller) PointerDown(p Point, now time.Time) {
	c.gesture.pointerDown(p, now)
}

// PointerMove feeds one pointer sample through the activation rules and,
// once the pan is active, drives the offset.
func (c *Controller) PointerMove(p Point, now time.Time) {
	c.gesture.pointerMove(p, now)
}

// PointerUp ends the gesture, committing or snapping back.
func (c *Controller) PointerUp(now time.Time) {
	c.gesture.pointerUp(now)
}

// ReportScale records a zoom-scale report from the focused item viewer.
func (c *Controller) ReportScale(scale float64) {
	c.zoom.reportScale(scale)
}

// HandleTap toggles the arrow chrome, unless zoomed in.
func (c *Controller) HandleTap() {
	c.zoom.handleTap()
}

// ShowArrows reveals the arrow chrome, cancelling any pending auto-hide on
// the host side.
func (c *Controller) ShowArrows() {
	c.zoom.setArrows(true)
}

// HideArrows hides the arrow chrome, as from an idle timer.
func (c *Controller) HideArrows() {
	c.zoom.setArrows(false)
}

// Advance moves any in-flight animation to now, reporting whether more
// frames are needed.
func (c *Controller) Advance(now time.Time) bool {
	return c.offset.Advance(now)
}

// OnOffsetChange subscribes fn to every offset change; the host uses this to
// force the physical surface to the animator's value.
func (c *Controller) OnOffsetChange(fn func(float64)) {
	c.offset.Subscribe(fn)
}

// ItemContext builds the per-item handle for the renderer at index.
func (c *Controller) ItemContext(index int) ItemContext {
	return ItemContext{
		Index:       index,
		Tap:         c.HandleTap,
		ReportScale: c.ReportScale,
		Swiping:     c.Swiping,
	}
}

func (c *Controller) maxOffset() float64 {
	return c.width * float64(c.set.Len()-1)
}

// Page returns the current page index, possibly NotFound.
func (c *Controller) Page() int { return c.page }

// Active returns the attachment at the current page.
func (c *Controller) Active() (Attachment, bool) { return c.set.At(c.page) }

// ActiveKey returns the tracked active-source identity.
func (c *Controller) ActiveKey() string { return c.activeKey }

// Items returns the attachments in display order.
func (c *Controller) Items() []Attachment { return c.set.Items() }

// Len returns the number of attachments.
func (c *Controller) Len() int { return c.set.Len() }

// Offset returns the current scroll offset.
func (c *Controller) Offset() float64 { return c.offset.Value() }

// Width returns the recorded container width.
func (c *Controller) Width() float64 { return c.width }

// Scrolling reports whether a gesture or commit animation is moving the
// offset; this is the "is pager swiping" flag items consult.
func (c *Controller) Scrolling() bool { return c.scrolling }

// Swiping reports whether an activated pan gesture is in progress.
func (c *Controller) Swiping() bool { return c.gesture.phase == phaseActive }

// Animating reports whether a commit animation is in flight.
func (c *Controller) Animating() bool { return c.offset.Animating() }

// Scale returns the last reported zoom scale.
func (c *Controller) Scale() float64 { return c.zoom.scale }

// ScrollEnabled reports whether drag paging is currently possible.
func (c *Controller) ScrollEnabled() bool { return c.zoom.scrollEnabled }

// ArrowsVisible reports whether the paging arrows should be drawn.
func (c *Controller) ArrowsVisible() bool { return c.zoom.arrowsVisible }
