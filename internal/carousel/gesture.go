package carousel

import (
	"math"
	"time"
)

// touchPhase is the arbiter's sampling state. Keeping it a tagged variant
// makes a third recorded sample unrepresentable.
type touchPhase int

const (
	phaseNoTouches touchPhase = iota
	phaseOneTouch
	phaseTwoTouches
	phaseActive
)

// arbiter decides whether a pointer sequence is a horizontal pan and, while
// one is active, drives the offset directly. Activation is manual: the
// arbiter never claims the stream until the rules below say so, which lets
// vertical swipes and pinch gestures win ambiguous starts.
type arbiter struct {
	c *Controller

	phase  touchPhase
	first  Point
	second Point

	origin      Point
	translation float64
	velocity    float64
	lastX       float64
	lastT       time.Time
	haveLast    bool
}

func (g *arbiter) pointerDown(p Point, now time.Time) {
	g.origin = p
	g.phase = phaseNoTouches
	g.first = Point{}
	g.second = Point{}
	g.translation = 0
	g.velocity = 0
	g.haveLast = false
}

func (g *arbiter) pointerMove(p Point, now time.Time) {
	if g.c.width <= 0 {
		return
	}
	if g.phase != phaseActive && !g.evaluate(p) {
		return
	}
	g.track(p, now)
}

// evaluate runs the activation rules on one move sample and reports whether
// the pan is active afterwards. Hosts without touch/pointer gestures never
// arbitrate; arrows are their only paging control. Order matters:
//
//  1. never fight an in-flight commit animation
//  2. an active pan needs no re-evaluation (callers skip evaluate)
//  3. two samples without activation mean ambiguous multi-touch; yield
//  4. zoomed out beyond fit always pans
//  5. with two samples, horizontal displacement must beat vertical
func (g *arbiter) evaluate(p Point) bool {
	if !g.c.zoom.touchCapable {
		return false
	}
	if g.c.offset.Animating() {
		return false
	}
	if g.phase == phaseTwoTouches {
		return false
	}
	if g.c.zoom.scale < 1 {
		g.phase = phaseActive
		return true
	}
	switch g.phase {
	case phaseNoTouches:
		g.first = p
		g.phase = phaseOneTouch
	case phaseOneTouch:
		g.second = p
		g.phase = phaseTwoTouches
		dx := math.Abs(g.second.X - g.first.X)
		dy := math.Abs(g.second.Y - g.first.Y)
		if dx > dy {
			g.phase = phaseActive
			return true
		}
	}
	return false
}

// track applies one active-pan move: writes the tentative offset unless it
// would leave valid bounds, and records translation and velocity for the
// release decision.
func (g *arbiter) track(p Point, now time.Time) {
	c := g.c
	translation := p.X - g.origin.X
	tentative := c.width*float64(c.page) - translation
	if tentative < 0 || tentative > c.maxOffset() {
		return
	}

	c.offset.Set(tentative)
	c.scrolling = true
	g.translation = translation
	if g.haveLast {
		if dt := now.Sub(g.lastT).Seconds(); dt > 0 {
			g.velocity = (p.X - g.lastX) / dt
		}
	}
	g.lastX = p.X
	g.lastT = now
	g.haveLast = true
}

// pointerUp ends the gesture: decide commit or snap-back, then reset every
// accumulator no matter the outcome.
func (g *arbiter) pointerUp(now time.Time) {
	active := g.phase == phaseActive
	moved := g.c.scrolling
	translation := g.translation
	velocity := g.velocity

	g.phase = phaseNoTouches
	g.first = Point{}
	g.second = Point{}
	g.translation = 0
	g.velocity = 0
	g.haveLast = false

	if !active || !moved {
		return
	}

	delta := 0
	if math.Abs(translation) > g.c.width/distanceDivisor || math.Abs(velocity) > velocityThreshold {
		switch {
		case translation > 0:
			delta = -1
		case translation < 0:
			delta = 1
		}
	}
	// stepPage re-arms scrolling when it launches an animation; a declined
	// step must leave the pager at rest.
	g.c.scrolling = false
	g.c.stepPage(delta, EaseOutCubic)
}
