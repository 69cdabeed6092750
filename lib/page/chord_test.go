package page

import "testing"

func TestParseChord(t *testing.T) {
	got := ParseChord("Ctrl + Shift + C")
	if got != (Chord{Key: "c", Ctrl: true, Shift: true}) {
		t.Fatalf("got %+v", got)
	}
	got = ParseChord("shift+f2")
	if got != (Chord{Key: "f2", Shift: true}) {
		t.Fatalf("got %+v", got)
	}
}

func TestChordMatches(t *testing.T) {
	cases := []struct {
		chord string
		ev    Event
		want  bool
	}{
		{"ctrl+shift+c", Event{Key: "C", Ctrl: true, Shift: true}, true},
		{"ctrl+shift+c", Event{Key: "c", Ctrl: true}, false},
		{"ctrl+shift+c", Event{Key: "c", Ctrl: true, Shift: true, Alt: true}, false},
		{"alt+i", Event{Key: "i", Alt: true}, true},
		{"shift+f2", Event{Key: "F2", Shift: true}, true},
		{"ctrl+shift", Event{Key: "Shift", Ctrl: true, Shift: true}, false},
	}
	for _, c := range cases {
		if got := ParseChord(c.chord).Matches(c.ev); got != c.want {
			t.Errorf("%q matches %+v = %v, want %v", c.chord, c.ev, got, c.want)
		}
	}
}
