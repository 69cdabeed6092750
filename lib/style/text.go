package style

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nathants/inspector/lib"
	"github.com/nathants/inspector/lib/page"
)

const DefaultTextLimit = lib.DefaultTextLimit

// FormatNum prints integers bare and everything else to one decimal place,
// dropping a trailing ".0".
func FormatNum(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strings.TrimSuffix(strconv.FormatFloat(n, 'f', 1, 64), ".0")
}

// DirectText joins the element's own text nodes, ignoring text nested in
// child elements, and truncates the result to limit runes with an ellipsis.
func DirectText(nodes []string, limit int) string {
	var parts []string
	for _, n := range nodes {
		if t := strings.TrimSpace(n); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(parts, " ")
	if limit > 0 && utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		return string(runes[:limit]) + "…"
	}
	return text
}

// Label is the short selector shown in a tooltip header: #id when the
// element has one, otherwise the tag with at most two classes.
func Label(el *page.Element) string {
	if el.ID != "" {
		return "#" + el.ID
	}
	label := strings.ToLower(el.Tag)
	var classes []string
	for _, c := range el.Classes {
		if c = strings.TrimSpace(c); c != "" {
			classes = append(classes, c)
		}
		if len(classes) == 2 {
			break
		}
	}
	if len(classes) > 0 {
		label += "." + strings.Join(classes, ".")
	}
	return label
}
