package page

import "strings"

// Chord is a keyboard shortcut such as ctrl+shift+c. The page only forwards
// keydowns that match it, and suppresses their default action.
type Chord struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
	Meta  bool   `json:"meta"`
}

func ParseChord(s string) Chord {
	var c Chord
	for _, part := range strings.Split(strings.ToLower(s), "+") {
		switch part = strings.TrimSpace(part); part {
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		case "meta", "cmd":
			c.Meta = true
		default:
			c.Key = part
		}
	}
	return c
}

// Matches reports whether ev is a keydown of exactly this chord.
func (c Chord) Matches(ev Event) bool {
	return c.Key != "" &&
		strings.EqualFold(ev.Key, c.Key) &&
		ev.Ctrl == c.Ctrl && ev.Shift == c.Shift && ev.Alt == c.Alt && ev.Meta == c.Meta
}
