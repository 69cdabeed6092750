// pagetest provides an in-memory page for exercising the inspector without a browser
package pagetest

import (
	"context"
	"fmt"
	"maps"

	"github.com/nathants/inspector/lib/geom"
	"github.com/nathants/inspector/lib/page"
)

type Element struct {
	Tag       string
	ID        string
	Classes   []string
	Rect      geom.Rect
	Computed  map[string]string
	Inline    []page.Declaration
	Text      []string
	Detached  bool
	Selectors []string // selectors this element matches
}

// Page records everything the session sends and answers reads from its
// fields. Tests mutate fields between calls to simulate page changes.
type Page struct {
	Elements  map[page.Handle]*Element
	Sheets    []page.StyleSheet
	Invalid   map[string]bool
	Defaults  map[string]map[string]string
	Viewport  geom.Size
	PanelSize geom.Size

	Frames    []*page.Frame
	Listens   []page.Listeners
	Shortcut  page.Chord
	Inspected []page.Handle
	Describes int

	panels map[string]geom.Point
	events chan page.Event
}

func New() *Page {
	return &Page{
		Elements:  map[page.Handle]*Element{},
		Invalid:   map[string]bool{},
		Defaults:  map[string]map[string]string{},
		Viewport:  geom.Size{Width: 1280, Height: 800},
		PanelSize: geom.Size{Width: 300, Height: 200},
		panels:    map[string]geom.Point{},
		events:    make(chan page.Event, 64),
	}
}

// Add registers an element and returns its handle.
func (p *Page) Add(h page.Handle, el *Element) page.Handle {
	if el.Computed == nil {
		el.Computed = map[string]string{}
	}
	p.Elements[h] = el
	return h
}

// Send queues an event as if the page had forwarded it.
func (p *Page) Send(ev page.Event) {
	p.events <- ev
}

func (p *Page) LastFrame() *page.Frame {
	if len(p.Frames) == 0 {
		return nil
	}
	return p.Frames[len(p.Frames)-1]
}

func (p *Page) Listening() page.Listeners {
	if len(p.Listens) == 0 {
		return 0
	}
	return p.Listens[len(p.Listens)-1]
}

func (p *Page) element(h page.Handle) (*Element, error) {
	el, ok := p.Elements[h]
	if !ok {
		return nil, fmt.Errorf("unknown handle %q", h)
	}
	return el, nil
}

func (p *Page) Describe(_ context.Context, h page.Handle, props []string) (*page.Element, error) {
	el, err := p.element(h)
	if err != nil {
		return nil, err
	}
	p.Describes++
	return &page.Element{
		Handle:    h,
		Connected: !el.Detached,
		Tag:       el.Tag,
		ID:        el.ID,
		Classes:   el.Classes,
		Rect:      el.Rect,
		Computed:  maps.Clone(el.Computed),
		Inline:    el.Inline,
		Text:      el.Text,
	}, nil
}

func (p *Page) StyleSheets(context.Context) ([]page.StyleSheet, error) {
	return p.Sheets, nil
}

func (p *Page) MatchSelectors(_ context.Context, h page.Handle, selectors []string) ([]page.Match, error) {
	el, err := p.element(h)
	if err != nil {
		return nil, err
	}
	out := make([]page.Match, len(selectors))
	for i, sel := range selectors {
		if p.Invalid[sel] {
			out[i] = page.Match{Invalid: true}
			continue
		}
		for _, s := range el.Selectors {
			if s == sel {
				out[i].Matched = true
			}
		}
	}
	return out, nil
}

func (p *Page) DefaultStyle(_ context.Context, tag string, props []string) (map[string]string, error) {
	out := map[string]string{}
	for _, prop := range props {
		out[prop] = p.Defaults[tag][prop]
	}
	return out, nil
}

func (p *Page) Measure(_ context.Context, handles []page.Handle, panels []string) (*page.Measurement, error) {
	m := &page.Measurement{
		Elements: map[page.Handle]page.Box{},
		Panels:   map[string]geom.Rect{},
		Viewport: p.Viewport,
	}
	for _, h := range handles {
		if el, ok := p.Elements[h]; ok {
			m.Elements[h] = page.Box{Rect: el.Rect, Connected: !el.Detached}
		}
	}
	for _, id := range panels {
		if pos, ok := p.panels[id]; ok {
			m.Panels[id] = geom.Rect{X: pos.X, Y: pos.Y, Width: p.PanelSize.Width, Height: p.PanelSize.Height}
		}
	}
	return m, nil
}

func (p *Page) Apply(_ context.Context, frame *page.Frame) error {
	p.Frames = append(p.Frames, frame)
	if !frame.Layer {
		clear(p.panels)
		return nil
	}
	for _, id := range frame.Removed {
		delete(p.panels, id)
	}
	for _, pv := range frame.Panels {
		p.panels[pv.ID] = geom.Point{X: pv.X, Y: pv.Y}
	}
	return nil
}

func (p *Page) Listen(_ context.Context, l page.Listeners, shortcut page.Chord) error {
	p.Listens = append(p.Listens, l)
	p.Shortcut = shortcut
	return nil
}

func (p *Page) Inspect(_ context.Context, h page.Handle) error {
	p.Inspected = append(p.Inspected, h)
	return nil
}

func (p *Page) Events() <-chan page.Event {
	return p.events
}

var _ page.Page = (*Page)(nil)
