package session

import (
	"context"
	"fmt"
	"time"

	"github.com/nathants/inspector/lib/geom"
	"github.com/nathants/inspector/lib/page"
	"github.com/nathants/inspector/lib/style"
	"github.com/nathants/inspector/lib/tooltip"
)

// Panel is a pinned, persistent tooltip bound to one target element.
type Panel struct {
	ID       string
	Target   page.Handle
	Selector string
	X        float64
	Y        float64

	hash      string
	pending   string
	connected bool
	flash     bool
}

func (p *Panel) rect(size geom.Size) geom.Rect {
	return geom.Rect{X: p.X, Y: p.Y, Width: size.Width, Height: size.Height}
}

// pair is the Highlighted Pair: one panel and, through it, its target.
type pair struct {
	panel *Panel
}

type dragState struct {
	panel   *Panel
	offsetX float64
	offsetY float64
}

// registry keys panels by target handle. Handles are weak on the page side,
// so a removed element only leaves a disconnected handle behind.
type registry struct {
	list     []*Panel
	byTarget map[page.Handle]*Panel
	byID     map[string]*Panel
}

func newRegistry() registry {
	return registry{
		byTarget: map[page.Handle]*Panel{},
		byID:     map[string]*Panel{},
	}
}

func (r *registry) len() int { return len(r.list) }

func (r *registry) add(p *Panel) {
	r.list = append(r.list, p)
	r.byTarget[p.Target] = p
	r.byID[p.ID] = p
}

func (r *registry) remove(p *Panel) {
	delete(r.byTarget, p.Target)
	delete(r.byID, p.ID)
	for i, q := range r.list {
		if q == p {
			r.list = append(r.list[:i], r.list[i+1:]...)
			break
		}
	}
}

func (r *registry) ids() []string {
	out := make([]string, len(r.list))
	for i, p := range r.list {
		out[i] = p.ID
	}
	return out
}

func (r *registry) targets() []page.Handle {
	out := make([]page.Handle, len(r.list))
	for i, p := range r.list {
		out[i] = p.Target
	}
	return out
}

func (s *Session) panelSize() geom.Size {
	return geom.Size{Width: s.cfg.PanelWidth, Height: s.cfg.PanelHeight}
}

// Pin creates a panel for h. Pinning an element that already has a panel
// highlights and flashes the existing one instead.
func (s *Session) Pin(ctx context.Context, h page.Handle) (*Panel, error) {
	if s.state == Inactive {
		return nil, ErrInactive
	}
	if p, ok := s.pins.byTarget[h]; ok {
		p.flash = true
		s.setHighlight(p)
		s.armFlash()
		return p, nil
	}

	sheets, err := s.page.StyleSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stylesheets: %w", err)
	}
	snap, err := s.extractor.Snapshot(ctx, sheets, h)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	m, err := s.page.Measure(ctx, nil, s.pins.ids())
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}

	existing := make([]geom.Rect, 0, s.pins.len())
	for _, q := range s.pins.list {
		if r, ok := m.Panels[q.ID]; ok {
			existing = append(existing, r)
		} else {
			existing = append(existing, q.rect(s.panelSize()))
		}
	}
	pos := placeTooltip(snap.Rect, m.Viewport, s.cfg.TooltipHeight, s.cfg.Gap)
	pos = avoidOverlap(pos, s.panelSize(), existing, s.cfg.OverlapAttempts, s.cfg.OverlapSpacing)

	markup, err := tooltip.Render(tooltip.FromSnapshot(snap, true))
	if err != nil {
		return nil, fmt.Errorf("render panel: %w", err)
	}
	p := &Panel{
		ID:        s.newID(),
		Target:    h,
		Selector:  snap.Selector,
		X:         pos.X,
		Y:         pos.Y,
		hash:      tooltip.Hash(markup),
		pending:   markup,
		connected: snap.Connected,
	}
	s.pins.add(p)
	if snap.Connected {
		from, to := geom.ClosestEdgePoints(snap.Rect, p.rect(s.panelSize()))
		s.overlay.lines[p.ID] = page.LineView{Panel: p.ID, From: from, To: to}
	}
	s.logger.Debug("pinned", "panel", p.ID, "selector", p.Selector)
	s.publishSnapshot(p, snap)
	s.loop.start()
	return p, nil
}

// Unpin removes a panel and its connector line.
func (s *Session) Unpin(id string) bool {
	p, ok := s.pins.byID[id]
	if !ok {
		return false
	}
	if s.drag != nil && s.drag.panel == p {
		s.endDrag()
	}
	if s.highlight != nil && s.highlight.panel == p {
		s.clearHighlight()
	}
	s.pins.remove(p)
	delete(s.overlay.lines, p.ID)
	s.removed = append(s.removed, p.ID)
	if s.pins.len() == 0 && s.highlight == nil {
		s.loop.stop()
	}
	s.logger.Debug("unpinned", "panel", p.ID)
	return true
}

// ClearAll unpins every panel and clears the Highlighted Pair.
func (s *Session) ClearAll() {
	s.endDrag()
	for _, p := range s.pins.list {
		s.removed = append(s.removed, p.ID)
	}
	s.pins = newRegistry()
	clear(s.overlay.lines)
	s.clearHighlight()
	s.loop.stop()
}

func (s *Session) setHighlight(p *Panel) {
	if s.highlight == nil || s.highlight.panel != p {
		s.highlight = &pair{panel: p}
	}
	s.loop.start()
}

func (s *Session) clearHighlight() {
	s.highlight = nil
	s.overlay.hideHighlights()
}

func (s *Session) beginDrag(p *Panel, x, y float64) {
	s.drag = &dragState{panel: p, offsetX: x - p.X, offsetY: y - p.Y}
	s.setHighlight(p)
}

func (s *Session) moveDrag(x, y float64) {
	if s.drag == nil {
		return
	}
	s.drag.panel.X = x - s.drag.offsetX
	s.drag.panel.Y = y - s.drag.offsetY
}

// endDrag drops drag state. The caller resyncs listeners so the page
// detaches its drag handlers.
func (s *Session) endDrag() {
	s.drag = nil
}

func (s *Session) publishSnapshot(p *Panel, snap *style.Snapshot) {
	s.publish(Update{
		Panel:     p.ID,
		Selector:  snap.Selector,
		Text:      snap.Text,
		Key:       snap.Key,
		Declared:  snap.Declared,
		Timestamp: time.Now(),
	})
}
