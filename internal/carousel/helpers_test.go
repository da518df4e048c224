package carousel

import (
	"testing"
	"time"
)

// hostRecorder captures every callback the controller fires so tests can
// assert on exact effect sequences.
type hostRecorder struct {
	navigated  []Attachment
	download   []bool
	dismissed  int
	blurred    int
	arrows     []bool
	fullScreen bool
}

func (h *hostRecorder) host() Host {
	return Host{
		Navigate:           func(att Attachment) { h.navigated = append(h.navigated, att) },
		SetDownloadVisible: func(v bool) { h.download = append(h.download, v) },
		Dismiss:            func() { h.dismissed++ },
		BlurInput:          func() { h.blurred++ },
		SetArrowsVisible:   func(v bool) { h.arrows = append(h.arrows, v) },
		FullScreen:         func() bool { return h.fullScreen },
	}
}

func (h *hostRecorder) reset() {
	h.navigated = nil
	h.download = nil
	h.dismissed = 0
	h.blurred = 0
	h.arrows = nil
}

func (h *hostRecorder) lastNavigated() (Attachment, bool) {
	if len(h.navigated) == 0 {
		return Attachment{}, false
	}
	return h.navigated[len(h.navigated)-1], true
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func makeAttachments(sources ...string) []Attachment {
	out := make([]Attachment, 0, len(sources))
	for _, src := range sources {
		out = append(out, Attachment{
			Key:    src,
			Source: src,
			Name:   src + ".png",
			Kind:   KindImage,
		})
	}
	return out
}

func messagesFor(atts ...Attachment) []Message {
	return []Message{{ID: "m1", Attachments: atts}}
}

func newTestController(t *testing.T, width float64, sources ...string) (*Controller, *hostRecorder, *fakeClock) {
	t.Helper()
	rec := &hostRecorder{}
	clk := newFakeClock()
	c := New(rec.host(), WithClock(clk.Now))
	c.SetWidth(width)
	if len(sources) > 0 {
		atts := makeAttachments(sources...)
		c.Replace(messagesFor(atts...), "")
		c.Open(atts[0].Key)
	}
	rec.reset()
	return c, rec, clk
}

// settle advances the clock frame by frame until any in-flight animation
// completes.
func settle(t *testing.T, c *Controller, clk *fakeClock) {
	t.Helper()
	for i := 0; i < 60; i++ {
		if !c.Advance(clk.advance(16 * time.Millisecond)) {
			return
		}
	}
	t.Fatal("animation did not settle within 60 frames")
}

// drag feeds a pointer sequence that establishes horizontal intent in the
// direction of dx and ends at start+dx, with dt between activation and the
// final position. Pick dt so dx/dt lands on the right side of the velocity
// threshold for the scenario.
func drag(c *Controller, clk *fakeClock, start Point, dx float64, dt time.Duration) {
	step := 1.0
	if dx < 0 {
		step = -1.0
	}
	c.PointerDown(start, clk.Now())
	c.PointerMove(Point{X: start.X + step, Y: start.Y}, clk.Now())
	c.PointerMove(Point{X: start.X + 2*step, Y: start.Y}, clk.Now())
	c.PointerMove(Point{X: start.X + dx, Y: start.Y}, clk.advance(dt))
	c.PointerUp(clk.Now())
}
