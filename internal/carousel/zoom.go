package carousel

// zoom tracks the most recent scale reported by whichever item viewer is
// focused, and derives the two signals the rest of the pager needs: whether
// drag paging is enabled and whether the arrow chrome shows.
type zoom struct {
	c *Controller

	scale         float64
	touchCapable  bool
	scrollEnabled bool
	arrowsVisible bool
}

func newZoom(c *Controller, touchCapable bool) zoom {
	return zoom{
		c:             c,
		scale:         1,
		touchCapable:  touchCapable,
		scrollEnabled: touchCapable,
		arrowsVisible: true,
	}
}

// reportScale stores a fresh scale report. Unchanged values are dropped so
// repeated reports from the focused viewer cause no churn. When the derived
// scroll enablement flips, arrow visibility follows it: a zoomed-in item
// hides the paging chrome, returning to fit brings it back.
func (z *zoom) reportScale(scale float64) {
	if scale == z.scale {
		return
	}
	z.scale = scale

	enabled := scale == 1 && z.touchCapable
	if enabled == z.scrollEnabled {
		return
	}
	z.scrollEnabled = enabled
	z.setArrows(enabled)
}

// handleTap toggles the arrow chrome. Ignored while zoomed in, where taps
// belong to the item viewer.
func (z *zoom) handleTap() {
	if !z.scrollEnabled {
		return
	}
	z.setArrows(!z.arrowsVisible)
}

func (z *zoom) setArrows(visible bool) {
	if visible == z.arrowsVisible {
		return
	}
	z.arrowsVisible = visible
	z.c.host.setArrowsVisible(visible)
}
