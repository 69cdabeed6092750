// session runs one element inspector against one page.
//
// A Session owns every piece of mutable inspector state: activation and
// picker flags, the hover overlay, the pinned panels and the highlighted
// pair. It is driven by a single goroutine (Run), so none of that state is
// locked; outside callers reach it through Do.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/page"
	"github.com/nathants/inspector/lib/style"
)

var ErrInactive = errors.New("inspector is not active")

type State int

const (
	Inactive State = iota
	PickerOff
	PickerOn
)

func (s State) String() string {
	switch s {
	case PickerOff:
		return "active(picker off)"
	case PickerOn:
		return "active(picker on)"
	default:
		return "inactive"
	}
}

type Config struct {
	FrameInterval   time.Duration
	Flash           time.Duration
	Gap             float64
	TooltipHeight   float64
	PanelWidth      float64
	PanelHeight     float64
	OverlapAttempts int
	OverlapSpacing  float64
	TextLimit       int
	HighlightColor  string
	Shortcut        string
}

// defaults fills unset fields from lib.Defaults.
func (c *Config) defaults() {
	d := lib.Defaults
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.Flash <= 0 {
		c.Flash = d.Flash
	}
	if c.Gap <= 0 {
		c.Gap = d.Gap
	}
	if c.TooltipHeight <= 0 {
		c.TooltipHeight = d.TooltipHeight
	}
	if c.PanelWidth <= 0 {
		c.PanelWidth = d.PanelWidth
	}
	if c.PanelHeight <= 0 {
		c.PanelHeight = d.PanelHeight
	}
	if c.OverlapAttempts <= 0 {
		c.OverlapAttempts = d.OverlapAttempts
	}
	if c.OverlapSpacing <= 0 {
		c.OverlapSpacing = d.OverlapSpacing
	}
	if c.TextLimit <= 0 {
		c.TextLimit = d.TextLimit
	}
	if c.HighlightColor == "" {
		c.HighlightColor = d.HighlightColor
	}
	if c.Shortcut == "" {
		c.Shortcut = d.Shortcut
	}
}

// Update is published whenever a pinned panel's content changes.
type Update struct {
	Panel     string    `json:"panel"`
	Selector  string    `json:"selector"`
	Text      string    `json:"text,omitempty"`
	Key       style.Set `json:"key"`
	Declared  style.Set `json:"declared"`
	Timestamp time.Time `json:"timestamp"`
}

type PanelInfo struct {
	ID        string  `json:"id"`
	Selector  string  `json:"selector"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Connected bool    `json:"connected"`
}

type Status struct {
	Active bool   `json:"active"`
	Picker bool   `json:"picker"`
	State  string `json:"state"`
	Panels int    `json:"panels"`
}

type call struct {
	fn   func(context.Context, *Session) error
	done chan error
}

type Session struct {
	page      page.Page
	cfg       Config
	logger    *log.Logger
	extractor *style.Extractor
	newID     func() string

	shortcut   page.Chord
	state      State
	listening  page.Listeners
	listenSent bool

	overlay   overlay
	pins      registry
	highlight *pair
	drag      *dragState
	hovered   page.Handle

	loop       frameLoop
	flashTimer *time.Timer

	lastFrame []byte
	removed   []string

	calls chan call

	subMu sync.Mutex
	subs  map[chan Update]struct{}
}

func New(p page.Page, cfg Config) *Session {
	cfg.defaults()
	return &Session{
		page:      p,
		cfg:       cfg,
		logger:    log.Default(),
		extractor: style.NewExtractor(p, cfg.TextLimit),
		newID:     func() string { return uuid.Must(uuid.NewV7()).String() },
		shortcut:  page.ParseChord(cfg.Shortcut),
		overlay:   newOverlay(),
		pins:      newRegistry(),
		loop:      frameLoop{interval: cfg.FrameInterval},
		calls:     make(chan call),
		subs:      map[chan Update]struct{}{},
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Status() Status {
	return Status{
		Active: s.state != Inactive,
		Picker: s.state == PickerOn,
		State:  s.state.String(),
		Panels: s.pins.len(),
	}
}

// Syncing reports whether the synchronization loop is scheduled.
func (s *Session) Syncing() bool { return s.loop.running() }

func (s *Session) Panels() []PanelInfo {
	out := make([]PanelInfo, 0, s.pins.len())
	for _, p := range s.pins.list {
		out = append(out, PanelInfo{ID: p.ID, Selector: p.Selector, X: p.X, Y: p.Y, Connected: p.connected})
	}
	return out
}

// Run drives the session until ctx ends or the page stops sending events.
func (s *Session) Run(ctx context.Context) error {
	s.logger = lib.LoggerFrom(ctx)
	if err := s.syncListeners(ctx); err != nil {
		return err
	}
	events := s.page.Events()
	for {
		select {
		case <-ctx.Done():
			s.loop.stop()
			s.stopFlash()
			return ctx.Err()
		case ev, ok := <-events:
			open := ok
			if ok {
				var batch []page.Event
				batch, open = drain(ev, events)
				for _, ev := range coalesce(batch) {
					s.HandleEvent(ctx, ev)
				}
			}
			if !open {
				s.loop.stop()
				s.stopFlash()
				return nil
			}
		case <-s.loop.C():
			s.loop.fired()
			s.Tick(ctx)
		case <-s.flashC():
			s.endFlash(ctx)
		case c := <-s.calls:
			err := c.fn(ctx, s)
			if lerr := s.syncListeners(ctx); lerr != nil {
				s.logger.Warn("update page listeners", "error", lerr)
			}
			s.commit(ctx)
			c.done <- err
		}
	}
}

// maxBatch bounds how many queued events are read before handling.
const maxBatch = 256

// drain reads the events already queued behind first without blocking. The
// second result is false when events was closed.
func drain(first page.Event, events <-chan page.Event) ([]page.Event, bool) {
	batch := []page.Event{first}
	for len(batch) < maxBatch {
		select {
		case ev, ok := <-events:
			if !ok {
				return batch, false
			}
			batch = append(batch, ev)
		default:
			return batch, true
		}
	}
	return batch, true
}

// coalesce keeps only the last of each run of consecutive pointer moves, so
// a backlog of moves costs one hover extraction or one drag step. Every
// other event is kept in order.
func coalesce(batch []page.Event) []page.Event {
	out := batch[:0]
	for _, ev := range batch {
		n := len(out)
		if n > 0 && out[n-1].Kind == ev.Kind && (ev.Kind == page.EventMove || ev.Kind == page.EventDragMove) {
			out[n-1] = ev
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Do runs fn on the session goroutine and waits for its result.
func (s *Session) Do(ctx context.Context, fn func(context.Context, *Session) error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case s.calls <- c:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel of panel content updates. Slow subscribers
// miss updates rather than stall the session.
func (s *Session) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 32)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
}

func (s *Session) publish(u Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Activate handles the external "begin element selection" signal.
func (s *Session) Activate(ctx context.Context) error {
	s.activate(ctx)
	return s.commit(ctx)
}

func (s *Session) activate(ctx context.Context) {
	if s.state == PickerOn {
		return
	}
	s.setState(ctx, PickerOn)
}

func (s *Session) Deactivate(ctx context.Context) error {
	s.deactivate(ctx)
	return s.commit(ctx)
}

func (s *Session) deactivate(ctx context.Context) {
	if s.state == Inactive {
		return
	}
	s.setState(ctx, Inactive)
}

// TogglePicker switches between picking and the pinned-only mode.
func (s *Session) TogglePicker(ctx context.Context) error {
	if err := s.togglePicker(ctx); err != nil {
		return err
	}
	return s.commit(ctx)
}

func (s *Session) togglePicker(ctx context.Context) error {
	switch s.state {
	case PickerOn:
		s.setState(ctx, PickerOff)
	case PickerOff:
		s.setState(ctx, PickerOn)
	default:
		return ErrInactive
	}
	return nil
}

// Toggle handles the reserved shortcut: an inactive inspector starts
// picking, an active one shuts down.
func (s *Session) Toggle(ctx context.Context) error {
	s.toggle(ctx)
	return s.commit(ctx)
}

func (s *Session) toggle(ctx context.Context) {
	if s.state == Inactive {
		s.setState(ctx, PickerOn)
	} else {
		s.setState(ctx, Inactive)
	}
}

func (s *Session) setState(ctx context.Context, next State) {
	if next == s.state {
		return
	}
	prev := s.state
	s.state = next
	switch next {
	case Inactive:
		s.endDrag()
		s.ClearAll()
		s.hovered = ""
		s.overlay.reset()
		s.loop.stop()
		s.stopFlash()
	case PickerOff:
		s.hovered = ""
		s.overlay.hideHover()
	}
	if err := s.syncListeners(ctx); err != nil {
		s.logger.Warn("update page listeners", "error", err)
	}
	s.logger.Debug("inspector state", "from", prev, "to", next)
}

func (s *Session) wantListeners() page.Listeners {
	l := page.ListenShortcut
	if s.state != Inactive {
		l |= page.ListenEscape
	}
	if s.state == PickerOn {
		l |= page.ListenPicker
	}
	if s.drag != nil {
		l |= page.ListenDrag
	}
	return l
}

// syncListeners hands the page the listener set for the current state. The
// page drops the previous set before attaching the new one.
func (s *Session) syncListeners(ctx context.Context) error {
	want := s.wantListeners()
	if s.listenSent && want == s.listening {
		return nil
	}
	if err := s.page.Listen(ctx, want, s.shortcut); err != nil {
		return err
	}
	s.listening = want
	s.listenSent = true
	return nil
}

func (s *Session) frame() *page.Frame {
	f := &page.Frame{
		Layer:  s.state != Inactive,
		Color:  s.cfg.HighlightColor,
		Lines:  []page.LineView{},
		Panels: []page.PanelView{},
	}
	if !f.Layer {
		return f
	}
	if s.state == PickerOn {
		f.Cursor = "crosshair"
	}
	f.Toolbar.Picker = s.state == PickerOn
	f.Hover = s.overlay.hover
	f.Tooltip = s.overlay.tooltip
	f.TargetHighlight = s.overlay.targetHighlight
	f.PanelHighlight = s.overlay.panelHighlight
	f.TargetFlash = s.overlay.targetFlash
	for _, p := range s.pins.list {
		if line, ok := s.overlay.lines[p.ID]; ok {
			f.Lines = append(f.Lines, line)
		}
		f.Panels = append(f.Panels, page.PanelView{
			ID:          p.ID,
			X:           p.X,
			Y:           p.Y,
			HTML:        p.pending,
			Highlighted: s.highlight != nil && s.highlight.panel == p,
			Dragging:    s.drag != nil && s.drag.panel == p,
			Flash:       p.flash,
		})
	}
	f.Removed = s.removed
	return f
}

// commit sends the current draw state to the page unless it is identical to
// the last frame sent.
func (s *Session) commit(ctx context.Context) error {
	f := s.frame()
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if bytes.Equal(data, s.lastFrame) {
		return nil
	}
	if err := s.page.Apply(ctx, f); err != nil {
		s.logger.Warn("apply frame", "error", err)
		return err
	}
	s.removed = nil
	s.overlay.tooltip.HTML = ""
	for _, p := range s.pins.list {
		p.pending = ""
	}
	// remember the frame as the page now holds it, without one-shot fields
	if data, err = json.Marshal(s.frame()); err == nil {
		s.lastFrame = data
	}
	return nil
}

func (s *Session) armFlash() {
	s.stopFlash()
	s.flashTimer = time.NewTimer(s.cfg.Flash)
}

func (s *Session) stopFlash() {
	if s.flashTimer != nil {
		s.flashTimer.Stop()
		s.flashTimer = nil
	}
}

func (s *Session) flashC() <-chan time.Time {
	if s.flashTimer == nil {
		return nil
	}
	return s.flashTimer.C
}

func (s *Session) endFlash(ctx context.Context) {
	s.flashTimer = nil
	s.overlay.targetFlash.Visible = false
	for _, p := range s.pins.list {
		if !p.flash {
			continue
		}
		p.flash = false
		if s.highlight != nil && s.highlight.panel == p && s.drag == nil {
			s.clearHighlight()
		}
	}
	s.commit(ctx)
}
