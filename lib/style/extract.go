package style

import (
	"context"
	"fmt"

	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/geom"
	"github.com/nathants/inspector/lib/page"
)

// Source is the part of a page the extractor reads from.
type Source interface {
	Describe(ctx context.Context, h page.Handle, props []string) (*page.Element, error)
	MatchSelectors(ctx context.Context, h page.Handle, selectors []string) ([]page.Match, error)
	DefaultStyle(ctx context.Context, tag string, props []string) (map[string]string, error)
}

// Snapshot is the display data for one element, recomputed on every hover
// and every sync tick.
type Snapshot struct {
	Handle    page.Handle `json:"handle"`
	Connected bool        `json:"connected"`
	Selector  string      `json:"selector"`
	Text      string      `json:"text,omitempty"`
	Rect      geom.Rect   `json:"rect"`
	Key       Set         `json:"key"`
	Declared  Set         `json:"declared"`
}

// Extractor computes snapshots and caches default-element styles per tag,
// which do not change while a page is loaded.
type Extractor struct {
	src       Source
	textLimit int
	defaults  map[string]map[string]string
}

func NewExtractor(src Source, textLimit int) *Extractor {
	if textLimit <= 0 {
		textLimit = DefaultTextLimit
	}
	return &Extractor{
		src:       src,
		textLimit: textLimit,
		defaults:  map[string]map[string]string{},
	}
}

// Reset drops the default-style cache, used after navigation.
func (x *Extractor) Reset() {
	x.defaults = map[string]map[string]string{}
}

func (x *Extractor) defaultStyle(ctx context.Context, tag string, props []string) (map[string]string, error) {
	cached := x.defaults[tag]
	if cached == nil {
		cached = map[string]string{}
		x.defaults[tag] = cached
	}
	var missing []string
	for _, p := range props {
		if _, ok := cached[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		fetched, err := x.src.DefaultStyle(ctx, tag, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range missing {
			cached[p] = fetched[p]
		}
	}
	return cached, nil
}

// Snapshot extracts key and declared styles for h against sheets, which the
// caller reads once per tick and shares across elements.
func (x *Extractor) Snapshot(ctx context.Context, sheets []page.StyleSheet, h page.Handle) (*Snapshot, error) {
	logger := lib.LoggerFrom(ctx)

	for _, sheet := range sheets {
		if sheet.Denied {
			logger.Debug("stylesheet not readable, skipped", "href", sheet.Href)
		}
	}

	selectors := Selectors(sheets)
	matches := map[string]page.Match{}
	if len(selectors) > 0 {
		results, err := x.src.MatchSelectors(ctx, h, selectors)
		if err != nil {
			return nil, fmt.Errorf("match selectors: %w", err)
		}
		for i, sel := range selectors {
			if i >= len(results) {
				break
			}
			if results[i].Invalid {
				logger.Debug("invalid selector skipped", "selector", sel)
			}
			matches[sel] = results[i]
		}
	}

	// inline declarations are unknown until Describe returns; the page
	// reports computed values for them alongside props
	ruleDecls := Declared(sheets, matches, nil)
	props := append([]string{}, KeyProps...)
	for _, d := range ruleDecls {
		props = append(props, d.Property)
	}

	el, err := x.src.Describe(ctx, h, props)
	if err != nil {
		return nil, fmt.Errorf("describe element: %w", err)
	}
	snap := &Snapshot{
		Handle:    h,
		Connected: el.Connected,
		Selector:  Label(el),
		Rect:      el.Rect,
	}
	if !el.Connected {
		return snap, nil
	}

	decls := Declared(sheets, matches, el.Inline)
	declProps := make([]string, len(decls))
	for i, d := range decls {
		declProps[i] = d.Property
	}
	defaults, err := x.defaultStyle(ctx, el.Tag, declProps)
	if err != nil {
		return nil, fmt.Errorf("default style for %s: %w", el.Tag, err)
	}

	snap.Text = DirectText(el.Text, x.textLimit)
	snap.Key = KeyStyles(el)
	snap.Declared = Collapse(DeclaredStyles(decls, el.Computed, defaults))
	return snap, nil
}
