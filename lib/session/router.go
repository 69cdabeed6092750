package session

import (
	"context"

	"github.com/nathants/inspector/lib/page"
	"github.com/nathants/inspector/lib/tooltip"
)

// HandleEvent routes one page event through the state machine, then
// resyncs listeners and draws.
func (s *Session) HandleEvent(ctx context.Context, ev page.Event) {
	switch ev.Kind {
	case page.EventNavigated:
		s.setState(ctx, Inactive)
		s.extractor.Reset()
		// the new document starts without our layer or listeners
		s.listenSent = false
		s.lastFrame = nil
	case page.EventKeyDown:
		s.onKey(ctx, ev)
	default:
		switch s.state {
		case PickerOn:
			s.onPicker(ctx, ev)
			s.onPanel(ctx, ev)
		case PickerOff:
			s.onPanel(ctx, ev)
		}
	}
	if err := s.syncListeners(ctx); err != nil {
		s.logger.Warn("update page listeners", "error", err)
	}
	s.commit(ctx)
}

func (s *Session) onKey(ctx context.Context, ev page.Event) {
	if s.shortcut.Matches(ev) {
		s.toggle(ctx)
		return
	}
	if ev.Key != "Escape" || s.state == Inactive {
		return
	}
	s.togglePicker(ctx)
}

func (s *Session) onPicker(ctx context.Context, ev page.Event) {
	switch ev.Kind {
	case page.EventMove:
		if ev.UI || ev.Handle == "" {
			s.hovered = ""
			s.overlay.hideHover()
			return
		}
		if p, ok := s.pins.byTarget[ev.Handle]; ok {
			s.hovered = ev.Handle
			s.overlay.hideHover()
			s.setHighlight(p)
			return
		}
		if s.highlight != nil && s.drag == nil && !s.highlight.panel.flash {
			s.clearHighlight()
		}
		s.hover(ctx, ev.Handle)
	case page.EventClick:
		if ev.UI || ev.Handle == "" {
			return
		}
		if _, err := s.Pin(ctx, ev.Handle); err != nil {
			s.logger.Debug("pin", "error", err)
			return
		}
		s.overlay.hideHover()
		s.flashTarget(ctx, ev.Handle)
		s.inspect(ctx, ev.Handle)
	case page.EventContextMenu:
		s.ClearAll()
		if s.hovered != "" {
			s.inspect(ctx, s.hovered)
		}
	}
}

func (s *Session) onPanel(ctx context.Context, ev page.Event) {
	switch ev.Kind {
	case page.EventPanelDown:
		if p, ok := s.pins.byID[ev.Panel]; ok {
			s.beginDrag(p, ev.X, ev.Y)
		}
	case page.EventDragMove:
		s.moveDrag(ev.X, ev.Y)
	case page.EventDragUp:
		if s.drag != nil {
			s.endDrag()
			s.clearHighlight()
		}
	case page.EventPanelEnter:
		if p, ok := s.pins.byID[ev.Panel]; ok {
			s.setHighlight(p)
		}
	case page.EventPanelLeave:
		if s.drag == nil && s.highlight != nil && s.highlight.panel.ID == ev.Panel && !s.highlight.panel.flash {
			s.clearHighlight()
		}
	case page.EventPanelClose:
		s.Unpin(ev.Panel)
	case page.EventPanelInspect:
		if p, ok := s.pins.byID[ev.Panel]; ok {
			s.inspect(ctx, p.Target)
		}
	case page.EventToolbar:
		switch ev.Action {
		case page.ActionPicker:
			s.togglePicker(ctx)
		case page.ActionClear:
			s.ClearAll()
		case page.ActionClose:
			s.setState(ctx, Inactive)
		}
	}
}

// hover refreshes the hover box and live tooltip for h.
func (s *Session) hover(ctx context.Context, h page.Handle) {
	s.hovered = h
	m, err := s.page.Measure(ctx, []page.Handle{h}, nil)
	if err != nil {
		s.logger.Debug("measure hover target", "error", err)
		return
	}
	box, ok := m.Elements[h]
	if !ok || !box.Connected {
		s.overlay.hideHover()
		return
	}
	sheets, err := s.page.StyleSheets(ctx)
	if err != nil {
		s.logger.Debug("read stylesheets", "error", err)
		return
	}
	snap, err := s.extractor.Snapshot(ctx, sheets, h)
	if err != nil {
		s.logger.Debug("snapshot hover target", "error", err)
		return
	}
	markup, err := tooltip.Render(tooltip.FromSnapshot(snap, false))
	if err != nil {
		s.logger.Debug("render tooltip", "error", err)
		return
	}
	pos := placeTooltip(box.Rect, m.Viewport, s.cfg.TooltipHeight, s.cfg.Gap)
	s.overlay.hover = page.BoxView{Visible: true, Rect: box.Rect}
	s.overlay.tooltip.Visible = true
	s.overlay.tooltip.X, s.overlay.tooltip.Y = pos.X, pos.Y
	if hash := tooltip.Hash(markup); hash != s.overlay.tooltipHash {
		s.overlay.tooltipHash = hash
		s.overlay.tooltip.HTML = markup
	}
}

// flashTarget outlines a picked element until the flash timer ends.
func (s *Session) flashTarget(ctx context.Context, h page.Handle) {
	m, err := s.page.Measure(ctx, []page.Handle{h}, nil)
	if err != nil {
		s.logger.Debug("measure picked element", "error", err)
		return
	}
	box, ok := m.Elements[h]
	if !ok || !box.Connected {
		return
	}
	s.overlay.targetFlash = page.BoxView{Visible: true, Rect: box.Rect}
	s.armFlash()
}

// inspect hands h to the native inspector. The result is not consumed.
func (s *Session) inspect(ctx context.Context, h page.Handle) {
	if err := s.page.Inspect(ctx, h); err != nil {
		s.logger.Debug("inspect", "handle", h, "error", err)
	}
}

// Inspect reveals a pinned panel's target in the native inspector.
func (s *Session) Inspect(ctx context.Context, id string) bool {
	p, ok := s.pins.byID[id]
	if !ok {
		return false
	}
	s.inspect(ctx, p.Target)
	return true
}
