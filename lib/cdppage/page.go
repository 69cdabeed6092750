// cdppage implements the inspector page over the chrome devtools protocol
//
// ARCHITECTURE:
// - shim.js is embedded and installed twice: once for every future document
//   (Page.addScriptToEvaluateOnNewDocument) and once into the current one
// - Go calls into the shim with Runtime.evaluate, arguments passed as JSON
// - The shim calls back through a Runtime.addBinding function, which arrives
//   as Runtime.bindingCalled on the target event loop
//
// CRITICAL LEARNINGS:
// - ListenTarget handlers run on the chromedp event loop and must not block,
//   so events are queued and a pump goroutine feeds the session
// - Elements are held by the shim through WeakRef, Go only sees handles
// - Runtime.addBinding survives navigations, the shim is re-run per document
package cdppage

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/dom"
	chromepage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/page"
)

//go:embed shim.js
var shim string

const binding = "__inspectorEvent"

type Page struct {
	ctx    context.Context
	logger *log.Logger
	events chan page.Event

	mu    sync.Mutex
	queue []page.Event
	wake  chan struct{}
}

// Attach installs the shim into the tab behind ctx, which must be a chromedp
// target context. Events stop when ctx is done.
func Attach(ctx context.Context) (*Page, error) {
	p := &Page{
		ctx:    ctx,
		logger: lib.LoggerFrom(ctx),
		events: make(chan page.Event, 64),
		wake:   make(chan struct{}, 1),
	}
	chromedp.ListenTarget(ctx, p.onEvent)
	err := chromedp.Run(ctx,
		runtime.Enable(),
		chromepage.Enable(),
		runtime.AddBinding(binding),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := chromepage.AddScriptToEvaluateOnNewDocument(shim).Do(ctx)
			return err
		}),
		chromedp.Evaluate(shim, nil),
	)
	if err != nil {
		return nil, fmt.Errorf("install shim: %w", err)
	}
	go p.pump(ctx)
	return p, nil
}

func (p *Page) onEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *runtime.EventBindingCalled:
		if ev.Name != binding {
			return
		}
		e, err := decodeEvent(ev.Payload)
		if err != nil {
			p.logger.Debug("bad page event", "error", err)
			return
		}
		p.enqueue(e)
	case *chromepage.EventFrameNavigated:
		if ev.Frame != nil && ev.Frame.ParentID == "" {
			p.enqueue(page.Event{Kind: page.EventNavigated})
		}
	}
}

func decodeEvent(payload string) (page.Event, error) {
	var e page.Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return e, err
	}
	if e.Kind == "" {
		return e, fmt.Errorf("event without kind: %s", payload)
	}
	return e, nil
}

func (p *Page) enqueue(e page.Event) {
	p.mu.Lock()
	p.queue = append(p.queue, e)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Page) pump(ctx context.Context) {
	defer close(p.events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}
		p.mu.Lock()
		queued := p.queue
		p.queue = nil
		p.mu.Unlock()
		for _, e := range queued {
			select {
			case p.events <- e:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Page) Events() <-chan page.Event {
	return p.events
}

// expr builds a call into the shim with JSON encoded arguments.
func expr(fn string, args ...any) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encode %s argument: %w", fn, err)
		}
		parts[i] = string(data)
	}
	return fmt.Sprintf("window.__inspector.%s(%s)", fn, strings.Join(parts, ",")), nil
}

// target prefers the caller's context when it already carries the tab.
func (p *Page) target(ctx context.Context) context.Context {
	if chromedp.FromContext(ctx) != nil {
		return ctx
	}
	return p.ctx
}

func (p *Page) call(ctx context.Context, res any, fn string, args ...any) error {
	script, err := expr(fn, args...)
	if err != nil {
		return err
	}
	if err := chromedp.Run(p.target(ctx), chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return nil
}

func (p *Page) Describe(ctx context.Context, h page.Handle, props []string) (*page.Element, error) {
	var el page.Element
	if err := p.call(ctx, &el, "describe", h, props); err != nil {
		return nil, err
	}
	return &el, nil
}

// Query returns the handle of the first element matching selector, or an
// empty handle when nothing matches.
func (p *Page) Query(ctx context.Context, selector string) (page.Handle, error) {
	var h page.Handle
	if err := p.call(ctx, &h, "query", selector); err != nil {
		return "", err
	}
	return h, nil
}

func (p *Page) StyleSheets(ctx context.Context) ([]page.StyleSheet, error) {
	var sheets []page.StyleSheet
	if err := p.call(ctx, &sheets, "sheets"); err != nil {
		return nil, err
	}
	return sheets, nil
}

func (p *Page) MatchSelectors(ctx context.Context, h page.Handle, selectors []string) ([]page.Match, error) {
	var matches []page.Match
	if err := p.call(ctx, &matches, "match", h, selectors); err != nil {
		return nil, err
	}
	return matches, nil
}

func (p *Page) DefaultStyle(ctx context.Context, tag string, props []string) (map[string]string, error) {
	out := map[string]string{}
	if err := p.call(ctx, &out, "defaults", tag, props); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Page) Measure(ctx context.Context, handles []page.Handle, panels []string) (*page.Measurement, error) {
	if handles == nil {
		handles = []page.Handle{}
	}
	if panels == nil {
		panels = []string{}
	}
	var m page.Measurement
	if err := p.call(ctx, &m, "measure", handles, panels); err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *Page) Apply(ctx context.Context, frame *page.Frame) error {
	return p.call(ctx, nil, "apply", frame)
}

type listenFlags struct {
	Shortcut bool        `json:"shortcut"`
	Escape   bool        `json:"escape"`
	Picker   bool        `json:"picker"`
	Drag     bool        `json:"drag"`
	Chord    *page.Chord `json:"chord,omitempty"`
}

func newListenFlags(l page.Listeners, shortcut page.Chord) listenFlags {
	f := listenFlags{
		Shortcut: l.Has(page.ListenShortcut),
		Escape:   l.Has(page.ListenEscape),
		Picker:   l.Has(page.ListenPicker),
		Drag:     l.Has(page.ListenDrag),
	}
	if f.Shortcut && shortcut.Key != "" {
		f.Chord = &shortcut
	}
	return f
}

func (p *Page) Listen(ctx context.Context, l page.Listeners, shortcut page.Chord) error {
	return p.call(ctx, nil, "listen", newListenFlags(l, shortcut))
}

// Inspect selects the element as the devtools inspected node ($0). The
// request runs in the background and its outcome is only logged.
func (p *Page) Inspect(_ context.Context, h page.Handle) error {
	script, err := expr("element", h)
	if err != nil {
		return err
	}
	go func() {
		err := chromedp.Run(p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			obj, exc, err := runtime.Evaluate(script).Do(ctx)
			if err != nil {
				return err
			}
			if exc != nil {
				return fmt.Errorf("evaluate: %s", exc.Text)
			}
			if obj == nil || obj.ObjectID == "" {
				return fmt.Errorf("element %s is gone", h)
			}
			if _, err := dom.GetDocument().Do(ctx); err != nil {
				return err
			}
			nodeID, err := dom.RequestNode(obj.ObjectID).Do(ctx)
			if err != nil {
				return err
			}
			return dom.SetInspectedNode(nodeID).Do(ctx)
		}))
		if err != nil {
			p.logger.Debug("inspect element", "handle", h, "error", err)
		}
	}()
	return nil
}

var _ page.Page = (*Page)(nil)
