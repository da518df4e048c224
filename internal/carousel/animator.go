package carousel

import "time"

// EasingFunc maps normalized elapsed time in [0,1] to normalized progress.
type EasingFunc func(float64) float64

// EaseOutCubic decelerates into the target. Used for the hard jump after a
// released gesture, so the motion continues the drag and settles.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOutCubic accelerates then decelerates. Used for explicit arrow
// navigation, which reads as more deliberate.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

type flight struct {
	token      int
	from       float64
	to         float64
	start      time.Time
	duration   time.Duration
	ease       EasingFunc
	onComplete func()
}

// Animator holds the continuous scroll-offset value. Direct writes come from
// the gesture arbiter; animated writes come from page commits. Subscribers
// receive every change and push the value to the physical scroll surface,
// which keeps gesture-, arrow- and animation-driven motion on one visual
// update path.
//
// Re-targeting is the only cancellation: each AnimateTo issues a fresh token
// and a superseded flight's completion callback never fires.
type Animator struct {
	now     func() time.Time
	value   float64
	token   int
	current *flight
	subs    []func(float64)
}

// AnimatorOption configures an Animator.
type AnimatorOption func(*Animator)

// WithAnimatorClock replaces the time source, for tests.
func WithAnimatorClock(now func() time.Time) AnimatorOption {
	return func(a *Animator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnimator returns an animator at rest on value zero.
func NewAnimator(opts ...AnimatorOption) *Animator {
	a := &Animator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Subscribe registers fn to run on every value change.
func (a *Animator) Subscribe(fn func(float64)) {
	if fn != nil {
		a.subs = append(a.subs, fn)
	}
}

// Value returns the current offset.
func (a *Animator) Value() float64 {
	return a.value
}

// Animating reports whether a flight is in progress.
func (a *Animator) Animating() bool {
	return a.current != nil
}

// Set writes the value immediately, cancelling any in-flight animation.
func (a *Animator) Set(v float64) {
	a.token++
	a.current = nil
	a.publish(v)
}

// AnimateTo starts interpolating toward target. A zero or negative duration
// jumps straight to the target and completes synchronously.
func (a *Animator) AnimateTo(target float64, duration time.Duration, ease EasingFunc, onComplete func()) {
	a.token++
	if ease == nil {
		ease = Linear
	}
	if duration <= 0 {
		a.current = nil
		a.publish(target)
		if onComplete != nil {
			onComplete()
		}
		return
	}
	a.current = &flight{
		token:      a.token,
		from:       a.value,
		to:         target,
		start:      a.now(),
		duration:   duration,
		ease:       ease,
		onComplete: onComplete,
	}
}

// Advance moves the current flight to now, returning true while more frames
// are needed. The completion callback only runs when its token is still the
// latest, so a stale commit never races a newer one.
func (a *Animator) Advance(now time.Time) bool {
	fl := a.current
	if fl == nil {
		return false
	}
	if fl.token != a.token {
		a.current = nil
		return false
	}

	t := float64(now.Sub(fl.start)) / float64(fl.duration)
	if t < 0 {
		t = 0
	}
	if t >= 1 {
		a.current = nil
		a.publish(fl.to)
		if fl.onComplete != nil && fl.token == a.token {
			fl.onComplete()
		}
		return false
	}

	a.publish(fl.from + (fl.to-fl.from)*fl.ease(t))
	return true
}

func (a *Animator) publish(v float64) {
	if v == a.value {
		return
	}
	a.value = v
	for _, fn := range a.subs {
		fn(v)
	}
}
