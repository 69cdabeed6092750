package session

import (
	"context"
	"time"

	"github.com/nathants/inspector/lib/geom"
	"github.com/nathants/inspector/lib/page"
	"github.com/nathants/inspector/lib/tooltip"
)

// frameLoop is the synchronization loop's schedule. At most one tick is
// pending at a time and stop clears it synchronously.
type frameLoop struct {
	interval time.Duration
	timer    *time.Timer
}

func (l *frameLoop) start() {
	if l.timer != nil {
		return
	}
	l.timer = time.NewTimer(l.interval)
}

func (l *frameLoop) stop() {
	if l.timer == nil {
		return
	}
	l.timer.Stop()
	l.timer = nil
}

// fired marks the pending tick as consumed.
func (l *frameLoop) fired() {
	l.timer = nil
}

func (l *frameLoop) running() bool {
	return l.timer != nil
}

func (l *frameLoop) C() <-chan time.Time {
	if l.timer == nil {
		return nil
	}
	return l.timer.C
}

// Tick runs one synchronization pass: highlight boxes, panel content and
// connector lines, all from a single batched measurement.
func (s *Session) Tick(ctx context.Context) {
	if s.state == Inactive || (s.pins.len() == 0 && s.highlight == nil) {
		s.loop.stop()
		return
	}

	m, err := s.page.Measure(ctx, s.pins.targets(), s.pins.ids())
	if err != nil {
		s.logger.Debug("measure failed, retrying next tick", "error", err)
		s.loop.start()
		return
	}

	s.syncHighlight(m)
	s.syncContent(ctx, m)
	s.syncLines(m)

	s.commit(ctx)
	s.loop.start()
}

// panelRect takes the position from the session, which leads the page
// while dragging, and the size from the page.
func (s *Session) panelRect(m *page.Measurement, p *Panel) geom.Rect {
	if r, ok := m.Panels[p.ID]; ok {
		return geom.Rect{X: p.X, Y: p.Y, Width: r.Width, Height: r.Height}
	}
	return p.rect(s.panelSize())
}

func (s *Session) syncHighlight(m *page.Measurement) {
	if s.highlight == nil {
		s.overlay.hideHighlights()
		return
	}
	p := s.highlight.panel
	box, ok := m.Elements[p.Target]
	s.overlay.targetHighlight = page.BoxView{Visible: ok && box.Connected, Rect: box.Rect}
	s.overlay.panelHighlight = page.BoxView{Visible: true, Rect: s.panelRect(m, p)}
}

func (s *Session) syncContent(ctx context.Context, m *page.Measurement) {
	var sheets []page.StyleSheet
	read := false
	for _, p := range s.pins.list {
		box, ok := m.Elements[p.Target]
		if !ok || !box.Connected {
			if p.connected {
				s.logger.Debug("target detached, panel left as is", "panel", p.ID)
			}
			p.connected = false
			continue
		}
		p.connected = true
		if !read {
			var err error
			sheets, err = s.page.StyleSheets(ctx)
			if err != nil {
				s.logger.Debug("read stylesheets", "error", err)
				return
			}
			read = true
		}
		snap, err := s.extractor.Snapshot(ctx, sheets, p.Target)
		if err != nil {
			s.logger.Debug("snapshot", "panel", p.ID, "error", err)
			continue
		}
		if !snap.Connected {
			p.connected = false
			continue
		}
		markup, err := tooltip.Render(tooltip.FromSnapshot(snap, true))
		if err != nil {
			s.logger.Debug("render panel", "panel", p.ID, "error", err)
			continue
		}
		hash := tooltip.Hash(markup)
		if hash == p.hash {
			continue
		}
		p.hash = hash
		p.pending = markup
		p.Selector = snap.Selector
		s.publishSnapshot(p, snap)
	}
}

func (s *Session) syncLines(m *page.Measurement) {
	for _, p := range s.pins.list {
		box, ok := m.Elements[p.Target]
		if !ok || !box.Connected {
			delete(s.overlay.lines, p.ID)
			continue
		}
		from, to := geom.ClosestEdgePoints(box.Rect, s.panelRect(m, p))
		s.overlay.lines[p.ID] = page.LineView{Panel: p.ID, From: from, To: to}
	}
}
