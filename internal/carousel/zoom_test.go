package carousel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportScaleDropsRepeats(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")

	c.ReportScale(2)
	c.ReportScale(2)

	require.Equal(t, 2.0, c.Scale())
	require.Equal(t, []bool{false}, rec.arrows, "repeated reports must not re-toggle")
}

func TestZoomRoundTripTogglesArrows(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")
	require.True(t, c.ScrollEnabled())
	require.True(t, c.ArrowsVisible())

	c.ReportScale(2.5)
	require.False(t, c.ScrollEnabled())
	require.False(t, c.ArrowsVisible())

	c.ReportScale(1)
	require.True(t, c.ScrollEnabled())
	require.True(t, c.ArrowsVisible())

	require.Equal(t, []bool{false, true}, rec.arrows)
}

func TestIntermediateScaleKeepsEnablementStable(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")

	c.ReportScale(2)
	rec.reset()

	// 2 -> 3: still zoomed in, enablement unchanged, no callback churn.
	c.ReportScale(3)
	require.False(t, c.ScrollEnabled())
	require.Empty(t, rec.arrows)
}

func TestTapTogglesArrowsAtFit(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")

	c.HandleTap()
	require.False(t, c.ArrowsVisible())
	c.HandleTap()
	require.True(t, c.ArrowsVisible())
	require.Equal(t, []bool{false, true}, rec.arrows)
}

func TestTapIgnoredWhileZoomedIn(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")

	c.ReportScale(2)
	rec.reset()

	c.HandleTap()
	require.False(t, c.ArrowsVisible())
	require.Empty(t, rec.arrows)
}

func TestShowHideArrowHooks(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")

	c.HideArrows()
	require.False(t, c.ArrowsVisible())
	c.HideArrows()
	require.Equal(t, []bool{false}, rec.arrows, "idempotent hide")

	c.ShowArrows()
	require.True(t, c.ArrowsVisible())
	require.Equal(t, []bool{false, true}, rec.arrows)
}

func TestZoomedOutScaleKeepsArrowsHiddenState(t *testing.T) {
	c, rec, _ := newTestController(t, 300, "a", "b")

	// Below fit: scroll enablement drops (scale != 1) and arrows follow.
	c.ReportScale(0.8)
	require.False(t, c.ScrollEnabled())
	require.Equal(t, []bool{false}, rec.arrows)

	c.ReportScale(1)
	require.True(t, c.ScrollEnabled())
	require.Equal(t, []bool{false, true}, rec.arrows)
}
