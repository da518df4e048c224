// Package carousel implements the gesture-to-page state machine behind the
// attachment lightbox: an ordered set of attachments, a discrete page index,
// a continuously animated scroll offset, and the arbiter that turns raw
// pointer events into committed page changes.
//
// The package is host-agnostic. It owns no rendering, no I/O and no
// goroutines; every entry point runs to completion on the caller's event
// loop, and all outward effects travel through the Host callbacks.
package carousel

import "time"

// Kind classifies an attachment for display purposes.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindAudio    Kind = "audio"
	KindFile     Kind = "file"
)

// NotFound is the page index used when the requested attachment is absent
// from the current set. Hosts render it as a placeholder page.
const NotFound = -1

const (
	// commitDuration is the length of every page-commit animation.
	commitDuration = 300 * time.Millisecond

	// distanceDivisor sets the drag-distance commit threshold: a released
	// gesture commits when |translation| exceeds width/distanceDivisor.
	distanceDivisor = 3

	// velocityThreshold commits a released gesture regardless of distance
	// once |velocity| exceeds it, in offset units per second.
	velocityThreshold = 100.0

	// viewableThreshold is the fraction of the viewport an item must occupy
	// before a visibility report may commit it as the current page.
	viewableThreshold = 0.95
)

// Attachment is one viewable item in the pager. Key is its stable identity:
// the source locator when present, otherwise the originating message ID.
type Attachment struct {
	Key       string
	Source    string
	MessageID string
	Name      string
	Kind      Kind
}

// Message is the slice of conversation data the set derivation consumes.
// Hosts map their own message records into this shape.
type Message struct {
	ID          string
	ReplyTo     string
	Attachments []Attachment
}

// Point is a pointer position in offset units.
type Point struct {
	X float64
	Y float64
}

// Host collects the callbacks the carousel invokes. Every field is optional;
// nil callbacks are skipped.
type Host struct {
	// Navigate reports the newly committed attachment.
	Navigate func(Attachment)

	// SetDownloadVisible toggles the host's download affordance.
	SetDownloadVisible func(bool)

	// Dismiss tells the host the viewed item was deleted out from under us.
	Dismiss func()

	// BlurInput drops any pending keyboard focus before a visibility commit.
	BlurInput func()

	// SetArrowsVisible mirrors the paging-arrow visibility decided by the
	// zoom coordinator.
	SetArrowsVisible func(bool)

	// FullScreen reports whether the host runs an exclusive full-screen
	// sub-mode that manages its own paging.
	FullScreen func() bool
}

func (h Host) navigate(att Attachment) {
	if h.Navigate != nil {
		h.Navigate(att)
	}
}

func (h Host) setDownloadVisible(v bool) {
	if h.SetDownloadVisible != nil {
		h.SetDownloadVisible(v)
	}
}

func (h Host) dismiss() {
	if h.Dismiss != nil {
		h.Dismiss()
	}
}

func (h Host) blurInput() {
	if h.BlurInput != nil {
		h.BlurInput()
	}
}

func (h Host) setArrowsVisible(v bool) {
	if h.SetArrowsVisible != nil {
		h.SetArrowsVisible(v)
	}
}

func (h Host) fullScreen() bool {
	return h.FullScreen != nil && h.FullScreen()
}
