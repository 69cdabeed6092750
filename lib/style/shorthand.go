package style

import "strings"

type boxShorthand struct {
	name  string
	sides [4]string
}

// sides are in each property's own shorthand order
var boxShorthands = []boxShorthand{
	{"margin", [4]string{"margin-top", "margin-right", "margin-bottom", "margin-left"}},
	{"padding", [4]string{"padding-top", "padding-right", "padding-bottom", "padding-left"}},
	{"border-radius", [4]string{
		"border-top-left-radius",
		"border-top-right-radius",
		"border-bottom-right-radius",
		"border-bottom-left-radius",
	}},
}

type pairShorthand struct {
	name        string
	first, last string
}

var equalShorthands = []pairShorthand{
	{"overflow", "overflow-x", "overflow-y"},
	{"gap", "row-gap", "column-gap"},
}

var gridShorthands = []pairShorthand{
	{"grid-column", "grid-column-start", "grid-column-end"},
	{"grid-row", "grid-row-start", "grid-row-end"},
}

// FoldBox applies the CSS box shorthand rules to four side values.
func FoldBox(top, right, bottom, left string) string {
	switch {
	case top == right && right == bottom && bottom == left:
		return top
	case top == bottom && left == right:
		return top + " " + right
	case left == right:
		return top + " " + right + " " + bottom
	default:
		return top + " " + right + " " + bottom + " " + left
	}
}

// collect returns the values of props in order, their shared importance,
// and false if any is missing or importance is mixed.
func (s Set) collect(props ...string) ([]Value, bool, bool) {
	values := make([]Value, len(props))
	important := false
	for i, p := range props {
		v, ok := s.Get(p)
		if !ok {
			return nil, false, false
		}
		text, imp := splitImportant(v.Text)
		if i > 0 && imp != important {
			return nil, false, false
		}
		important = imp
		v.Text = text
		values[i] = v
	}
	return values, important, true
}

// replace drops props and inserts entry where the first of them was.
func (s Set) replace(props []string, entry Entry) Set {
	at := len(s)
	for _, p := range props {
		if i := s.index(p); i >= 0 && i < at {
			at = i
		}
	}
	drop := map[string]bool{}
	for _, p := range props {
		drop[p] = true
	}
	out := make(Set, 0, len(s)+1)
	for i, e := range s {
		if i == at {
			out = append(out, entry)
		}
		if !drop[e.Prop] {
			out = append(out, e)
		}
	}
	if at == len(s) {
		out = append(out, entry)
	}
	return out
}

// Collapse folds complete longhand groups back into their shorthands.
func Collapse(s Set) Set {
	for _, box := range boxShorthands {
		vals, imp, ok := s.collect(box.sides[:]...)
		if !ok {
			continue
		}
		text := FoldBox(vals[0].Text, vals[1].Text, vals[2].Text, vals[3].Text)
		s = s.replace(box.sides[:], Entry{box.name, Value{Text: withImportant(text, imp)}})
	}

	s = collapseBorder(s)

	for _, eq := range equalShorthands {
		vals, imp, ok := s.collect(eq.first, eq.last)
		if !ok || vals[0].Text != vals[1].Text {
			continue
		}
		s = s.replace([]string{eq.first, eq.last}, Entry{eq.name, Value{Text: withImportant(vals[0].Text, imp)}})
	}

	for _, g := range gridShorthands {
		s = collapseGrid(s, g)
	}
	return s
}

func borderLonghands(side string) []string {
	return []string{"border-" + side + "-width", "border-" + side + "-style", "border-" + side + "-color"}
}

func joinBorder(vals []Value, imp bool) Value {
	parts := make([]string, 0, 3)
	for _, v := range vals {
		parts = append(parts, v.Text)
	}
	color := vals[2]
	return Value{
		Text:     withImportant(strings.Join(parts, " "), imp),
		Color:    color.Color,
		Computed: color.Computed,
	}
}

// collapseBorder emits a single border when width, style and color agree on
// all four sides, otherwise one border-<side> per complete side.
func collapseBorder(s Set) Set {
	var sides [4][]Value
	var imps [4]bool
	complete := 0
	for i, side := range borderSides {
		vals, imp, ok := s.collect(borderLonghands(side)...)
		if ok {
			sides[i] = vals
			imps[i] = imp
			complete++
		}
	}
	if complete == 4 {
		same := true
		for i := 1; i < 4 && same; i++ {
			same = imps[i] == imps[0]
			for j := 0; j < 3 && same; j++ {
				same = sides[i][j].Text == sides[0][j].Text
			}
		}
		if same {
			var all []string
			for _, side := range borderSides {
				all = append(all, borderLonghands(side)...)
			}
			return s.replace(all, Entry{"border", joinBorder(sides[0], imps[0])})
		}
	}
	for i, side := range borderSides {
		if sides[i] == nil {
			continue
		}
		s = s.replace(borderLonghands(side), Entry{"border-" + side, joinBorder(sides[i], imps[i])})
	}
	return s
}

// collapseGrid writes "start" or "start / end", leaving out "/ auto".
func collapseGrid(s Set, g pairShorthand) Set {
	start, hasStart := s.Get(g.first)
	end, hasEnd := s.Get(g.last)
	if !hasStart && !hasEnd {
		return s
	}
	startText, startImp := splitImportant(start.Text)
	endText, endImp := splitImportant(end.Text)
	if hasStart && hasEnd && startImp != endImp {
		return s
	}
	if !hasStart {
		startText = "auto"
		startImp = endImp
	}
	text := startText
	if hasEnd && endText != "auto" {
		text += " / " + endText
	}
	return s.replace([]string{g.first, g.last}, Entry{g.name, Value{Text: withImportant(text, startImp || endImp)}})
}
