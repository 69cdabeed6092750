// page defines the boundary between the inspector session and the browser tab.
//
// The page side only reports facts (geometry, computed values, rule trees,
// selector matches, input events) and applies draw frames. Every decision is
// made on the Go side.
package page

import (
	"context"

	"github.com/nathants/inspector/lib/geom"
)

// Handle identifies a live element. The page holds the element weakly, so a
// Handle never keeps a removed element alive.
type Handle string

type Declaration struct {
	Property  string `json:"property"`
	Value     string `json:"value"`
	Important bool   `json:"important"`
}

type RuleKind string

const (
	RuleStyle RuleKind = "style"
	RuleGroup RuleKind = "group" // @media, @supports, @layer, @container
	RuleOther RuleKind = "other"
)

type Rule struct {
	Kind         RuleKind      `json:"kind"`
	Selector     string        `json:"selector,omitempty"`
	Condition    string        `json:"condition,omitempty"`
	Declarations []Declaration `json:"declarations,omitempty"`
	Rules        []Rule        `json:"rules,omitempty"`
}

// StyleSheet is one document stylesheet. Denied is set when the page refused
// access to its rules, typically a cross-origin sheet.
type StyleSheet struct {
	Href   string `json:"href,omitempty"`
	Denied bool   `json:"denied,omitempty"`
	Rules  []Rule `json:"rules,omitempty"`
}

type Match struct {
	Matched bool `json:"matched"`
	Invalid bool `json:"invalid,omitempty"`
}

// Element is a snapshot of the facts the extractor needs about one element.
type Element struct {
	Handle    Handle            `json:"handle"`
	Connected bool              `json:"connected"`
	Tag       string            `json:"tag"`
	ID        string            `json:"id,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	Rect      geom.Rect         `json:"rect"`
	Computed  map[string]string `json:"computed"`
	Inline    []Declaration     `json:"inline,omitempty"`
	Text      []string          `json:"text,omitempty"`
}

type Box struct {
	Rect      geom.Rect `json:"rect"`
	Connected bool      `json:"connected"`
}

// Measurement is one batched geometry read for a sync tick.
type Measurement struct {
	Elements map[Handle]Box       `json:"elements"`
	Panels   map[string]geom.Rect `json:"panels"`
	Viewport geom.Size            `json:"viewport"`
}

// Page is a browser tab as seen by the inspector.
type Page interface {
	// Describe returns element facts with computed values for props.
	Describe(ctx context.Context, h Handle, props []string) (*Element, error)
	StyleSheets(ctx context.Context) ([]StyleSheet, error)
	// MatchSelectors tests every selector against the element in one round trip.
	MatchSelectors(ctx context.Context, h Handle, selectors []string) ([]Match, error)
	// DefaultStyle returns computed values of a bare element of the same tag
	// in a document without author styles.
	DefaultStyle(ctx context.Context, tag string, props []string) (map[string]string, error)
	Measure(ctx context.Context, handles []Handle, panels []string) (*Measurement, error)
	Apply(ctx context.Context, frame *Frame) error
	// Listen replaces the set of forwarded event classes. The page detaches
	// every previous listener before attaching the new set. Keydowns are
	// forwarded only for shortcut and escape.
	Listen(ctx context.Context, l Listeners, shortcut Chord) error
	// Inspect asks the browser to reveal the element in its native inspector.
	Inspect(ctx context.Context, h Handle) error
	Events() <-chan Event
}
