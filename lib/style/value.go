// style extracts the key computed styles and the declared, non-default styles of an element
package style

import "strings"

// Value is one displayed style value. Color values carry the raw color
// string used for the swatch and, for declared colors, the computed color
// the literal resolved to.
type Value struct {
	Text     string `json:"text"`
	Color    string `json:"color,omitempty"`
	Computed string `json:"computed,omitempty"`
}

func (v Value) IsColor() bool {
	return v.Color != "" || v.Computed != ""
}

// Swatch is the color painted next to the value.
func (v Value) Swatch() string {
	if v.Computed != "" {
		return v.Computed
	}
	return v.Color
}

type Entry struct {
	Prop  string `json:"prop"`
	Value Value  `json:"value"`
}

// Set is an ordered property list; order is display order.
type Set []Entry

func (s Set) Get(prop string) (Value, bool) {
	for _, e := range s {
		if e.Prop == prop {
			return e.Value, true
		}
	}
	return Value{}, false
}

func (s Set) Props() []string {
	props := make([]string, len(s))
	for i, e := range s {
		props[i] = e.Prop
	}
	return props
}

func (s Set) index(prop string) int {
	for i, e := range s {
		if e.Prop == prop {
			return i
		}
	}
	return -1
}

const importantSuffix = " !important"

func splitImportant(text string) (string, bool) {
	if strings.HasSuffix(text, importantSuffix) {
		return strings.TrimSuffix(text, importantSuffix), true
	}
	return text, false
}

func withImportant(text string, important bool) string {
	if important {
		return text + importantSuffix
	}
	return text
}
