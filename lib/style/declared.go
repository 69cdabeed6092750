package style

import (
	"strings"

	"github.com/nathants/inspector/lib/page"
)

// walkRules visits every style rule with its resolved selector, descending
// into conditional group rules (@media, @supports, @layer and friends) and
// into rules nested inside a style rule.
func walkRules(rules []page.Rule, parent string, fn func(selector string, r page.Rule)) {
	for _, r := range rules {
		switch r.Kind {
		case page.RuleStyle:
			sel := nestSelector(parent, r.Selector)
			fn(sel, r)
			if len(r.Rules) > 0 {
				walkRules(r.Rules, sel, fn)
			}
		case page.RuleGroup:
			walkRules(r.Rules, parent, fn)
		}
	}
}

// nestSelector resolves a nested selector against its parent rule. & stands
// for the parent; a part without & is a descendant of it.
func nestSelector(parent, sel string) string {
	if parent == "" || sel == "" {
		return sel
	}
	scope := ":is(" + parent + ")"
	parts := splitSelectorList(sel)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "&") {
			parts[i] = strings.ReplaceAll(part, "&", scope)
		} else {
			parts[i] = scope + " " + part
		}
	}
	return strings.Join(parts, ", ")
}

// splitSelectorList splits on commas outside parentheses and brackets.
func splitSelectorList(sel string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range sel {
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, sel[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, sel[start:])
}

// Selectors lists the distinct style rule selectors of the accessible
// sheets in document order.
func Selectors(sheets []page.StyleSheet) []string {
	seen := map[string]bool{}
	var out []string
	for _, sheet := range sheets {
		if sheet.Denied {
			continue
		}
		walkRules(sheet.Rules, "", func(sel string, _ page.Rule) {
			if sel == "" || seen[sel] {
				return
			}
			seen[sel] = true
			out = append(out, sel)
		})
	}
	return out
}

type declarations struct {
	order []string
	byKey map[string]page.Declaration
}

func (d *declarations) set(decl page.Declaration, force bool) {
	if d.byKey == nil {
		d.byKey = map[string]page.Declaration{}
	}
	prev, ok := d.byKey[decl.Property]
	if !ok {
		d.order = append(d.order, decl.Property)
	} else if prev.Important && !decl.Important && !force {
		return
	}
	d.byKey[decl.Property] = decl
}

func (d *declarations) list() []page.Declaration {
	out := make([]page.Declaration, len(d.order))
	for i, p := range d.order {
		out[i] = d.byKey[p]
	}
	return out
}

// Declared merges the declarations of every matching rule in document
// order, then the inline declarations, which win any conflict. A later
// rule replaces an earlier one unless only the earlier is !important.
func Declared(sheets []page.StyleSheet, matches map[string]page.Match, inline []page.Declaration) []page.Declaration {
	var d declarations
	for _, sheet := range sheets {
		if sheet.Denied {
			continue
		}
		walkRules(sheet.Rules, "", func(sel string, r page.Rule) {
			m, ok := matches[sel]
			if !ok || m.Invalid || !m.Matched {
				return
			}
			for _, decl := range r.Declarations {
				d.set(decl, false)
			}
		})
	}
	for _, decl := range inline {
		d.set(decl, true)
	}
	return d.list()
}

// DeclaredStyles keeps the declarations whose computed value differs from
// the default element's and formats them for display. Colors are resolved
// to hex from the computed value while the literal text is kept.
func DeclaredStyles(decls []page.Declaration, computed, defaults map[string]string) Set {
	var set Set
	for _, decl := range decls {
		comp := computed[decl.Property]
		if comp == defaults[decl.Property] {
			continue
		}
		v := Value{Text: withImportant(decl.Value, decl.Important)}
		if isColorProperty(decl.Property) || looksLikeColor(decl.Value) {
			if hex := RGBToHex(comp); len(hex) > 0 && hex[0] == '#' {
				v = Value{
					Text:     withImportant(hex, decl.Important),
					Color:    decl.Value,
					Computed: comp,
				}
			}
		}
		set = append(set, Entry{decl.Property, v})
	}
	return set
}
