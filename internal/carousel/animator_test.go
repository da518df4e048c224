package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAnimateToReachesTarget(t *testing.T) {
	clk := newFakeClock()
	anim := NewAnimator(WithAnimatorClock(clk.Now))

	var seen []float64
	anim.Subscribe(func(v float64) { seen = append(seen, v) })

	completed := false
	anim.AnimateTo(300, 300*time.Millisecond, EaseOutCubic, func() { completed = true })
	require.True(t, anim.Animating())

	for anim.Advance(clk.advance(16 * time.Millisecond)) {
	}

	require.True(t, completed)
	require.False(t, anim.Animating())
	require.Equal(t, 300.0, anim.Value())
	require.NotEmpty(t, seen)
	require.Equal(t, 300.0, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		require.GreaterOrEqual(t, seen[i], seen[i-1], "offset must approach the target monotonically")
	}
}

func TestRetargetCancelsPriorCompletion(t *testing.T) {
	clk := newFakeClock()
	anim := NewAnimator(WithAnimatorClock(clk.Now))

	firstCompleted := false
	secondCompleted := false

	anim.AnimateTo(300, 300*time.Millisecond, EaseOutCubic, func() { firstCompleted = true })
	anim.Advance(clk.advance(100 * time.Millisecond))
	require.True(t, anim.Animating())

	anim.AnimateTo(600, 300*time.Millisecond, EaseOutCubic, func() { secondCompleted = true })
	for anim.Advance(clk.advance(16 * time.Millisecond)) {
	}

	require.False(t, firstCompleted, "a superseded animation must never commit")
	require.True(t, secondCompleted)
	require.Equal(t, 600.0, anim.Value())
}

func TestSetCancelsFlight(t *testing.T) {
	clk := newFakeClock()
	anim := NewAnimator(WithAnimatorClock(clk.Now))

	completed := false
	anim.AnimateTo(300, 300*time.Millisecond, EaseOutCubic, func() { completed = true })
	anim.Advance(clk.advance(50 * time.Millisecond))

	anim.Set(42)
	require.False(t, anim.Animating())
	require.Equal(t, 42.0, anim.Value())

	require.False(t, anim.Advance(clk.advance(time.Second)))
	require.False(t, completed)
	require.Equal(t, 42.0, anim.Value())
}

func TestZeroDurationJumps(t *testing.T) {
	anim := NewAnimator()

	completed := false
	anim.AnimateTo(120, 0, nil, func() { completed = true })

	require.True(t, completed)
	require.False(t, anim.Animating())
	require.Equal(t, 120.0, anim.Value())
}

func TestEasingCurveShapes(t *testing.T) {
	for _, ease := range []EasingFunc{EaseOutCubic, EaseInOutCubic, Linear} {
		require.Equal(t, 0.0, ease(0))
		require.Equal(t, 1.0, ease(1))
	}

	require.Greater(t, EaseOutCubic(0.5), 0.5, "ease-out front-loads motion")
	require.Less(t, EaseInOutCubic(0.25), 0.25, "ease-in-out starts slow")
	require.InDelta(t, 0.5, EaseInOutCubic(0.5), 1e-9)
}

func TestSubscribeSkipsRedundantWrites(t *testing.T) {
	anim := NewAnimator()

	var calls int
	anim.Subscribe(func(float64) { calls++ })

	anim.Set(10)
	anim.Set(10)
	require.Equal(t, 1, calls)
}
