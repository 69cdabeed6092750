package session

import (
	"github.com/nathants/inspector/lib/geom"
	"github.com/nathants/inspector/lib/page"
)

// overlay holds the always-on-top layer primitives: the hover rectangle and
// tooltip, the two highlight rectangles, the click flash and one connector
// line per panel.
type overlay struct {
	hover           page.BoxView
	tooltip         page.TooltipView
	tooltipHash     string
	targetHighlight page.BoxView
	panelHighlight  page.BoxView
	targetFlash     page.BoxView
	lines           map[string]page.LineView
}

func newOverlay() overlay {
	return overlay{lines: map[string]page.LineView{}}
}

func (o *overlay) hideHover() {
	o.hover.Visible = false
	o.tooltip.Visible = false
}

func (o *overlay) hideHighlights() {
	o.targetHighlight.Visible = false
	o.panelHighlight.Visible = false
}

func (o *overlay) reset() {
	*o = newOverlay()
}

// placeTooltip puts a panel just below target, or above it when the
// assumed height would run past the bottom of the viewport.
func placeTooltip(target geom.Rect, viewport geom.Size, height, gap float64) geom.Point {
	p := geom.Point{X: max(target.Left(), 0), Y: target.Bottom() + gap}
	if target.Bottom()+height > viewport.Height {
		p.Y = target.Top() - height
		if p.Y < 0 {
			p.Y = gap
		}
	}
	return p
}

// avoidOverlap shifts pos downward below any panel it intersects, giving up
// after attempts moves.
func avoidOverlap(pos geom.Point, size geom.Size, existing []geom.Rect, attempts int, spacing float64) geom.Point {
	for i := 0; i < attempts; i++ {
		candidate := geom.Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
		moved := false
		for _, r := range existing {
			if candidate.Intersects(r) {
				pos.Y = r.Bottom() + spacing
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}
	return pos
}
