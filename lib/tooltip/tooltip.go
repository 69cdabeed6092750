// tooltip renders inspector panels as escaped markup fragments
package tooltip

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nathants/inspector/lib/style"
)

// Content is everything a panel displays.
type Content struct {
	Selector string
	Text     string
	Key      style.Set
	Declared style.Set
	Pinned   bool
}

func FromSnapshot(s *style.Snapshot, pinned bool) Content {
	return Content{
		Selector: s.Selector,
		Text:     s.Text,
		Key:      s.Key,
		Declared: s.Declared,
		Pinned:   pinned,
	}
}

// Control actions carried by header buttons in data-action.
const (
	ActionClose   = "close"
	ActionInspect = "inspect"
)

var swatchPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|(rgba?|hsla?|hwb|lab|lch|oklab|oklch|color)\([0-9a-zA-Z.,%\s/+-]*\))$`)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "span", "button")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("title", "data-action").OnElements("button")
	p.AllowStyles("background").Matching(swatchPattern).OnElements("span")
	return p
}

func elem(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func span(class, s string) *html.Node {
	n := elem(atom.Span, class)
	n.AppendChild(text(s))
	return n
}

func button(class, action, title, label string) *html.Node {
	n := elem(atom.Button, "ext-tooltip-btn "+class)
	n.Attr = append(n.Attr,
		html.Attribute{Key: "data-action", Val: action},
		html.Attribute{Key: "title", Val: title},
	)
	n.AppendChild(text(label))
	return n
}

func row(class, prop string, values ...*html.Node) *html.Node {
	r := elem(atom.Div, class)
	r.AppendChild(span("ext-style-prop", prop))
	r.AppendChild(text(":"))
	for _, v := range values {
		r.AppendChild(v)
	}
	return r
}

func valueNodes(v style.Value, suffix string) []*html.Node {
	if !v.IsColor() {
		return []*html.Node{span("ext-style-value", v.Text+suffix)}
	}
	sq := elem(atom.Span, "ext-color-square")
	sq.Attr = append(sq.Attr, html.Attribute{Key: "style", Val: "background:" + v.Swatch()})
	nodes := []*html.Node{sq, span("ext-style-value", v.Text+suffix)}
	if v.Computed != "" && v.Color != "" && v.Color != v.Computed {
		nodes = append(nodes, span("ext-style-literal", v.Color))
	}
	return nodes
}

// Build constructs the panel fragment: header, text row, key styles, a
// separator and the declared styles.
func Build(c Content) *html.Node {
	root := &html.Node{Type: html.DocumentNode}

	header := elem(atom.Div, "ext-tooltip-header")
	header.AppendChild(span("ext-tooltip-selector", c.Selector))
	if c.Pinned {
		header.AppendChild(button("ext-tooltip-inspect", ActionInspect, "Inspect", "⌕"))
		header.AppendChild(button("ext-tooltip-close", ActionClose, "Close", "×"))
	} else {
		header.AppendChild(button("ext-tooltip-close ext-tooltip-close-hidden", ActionClose, "Close", "×"))
	}
	root.AppendChild(header)

	styles := elem(atom.Div, "ext-tooltip-styles")
	if c.Text != "" {
		styles.AppendChild(row("ext-style-row ext-key-style", "text", span("ext-style-value", `"`+c.Text+`"`)))
	}
	for _, e := range c.Key {
		styles.AppendChild(row("ext-style-row ext-key-style", e.Prop, valueNodes(e.Value, "")...))
	}
	if len(c.Declared) > 0 {
		styles.AppendChild(elem(atom.Div, "ext-style-separator"))
		for _, e := range c.Declared {
			styles.AppendChild(row("ext-style-row", e.Prop, valueNodes(e.Value, ";")...))
		}
	}
	root.AppendChild(styles)
	return root
}

// Render builds and serializes the fragment, then passes it through the
// allow-list policy.
func Render(c Content) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, Build(c)); err != nil {
		return "", fmt.Errorf("render tooltip: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Hash identifies rendered content for change suppression.
func Hash(markup string) string {
	sum := sha256.Sum256([]byte(markup))
	return hex.EncodeToString(sum[:])
}
