package cdppage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nathants/inspector/lib/page"
)

func TestExpr(t *testing.T) {
	got, err := expr("describe", page.Handle("e1"), []string{"color", "margin"})
	if err != nil {
		t.Fatal(err)
	}
	want := `window.__inspector.describe("e1",["color","margin"])`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	got, err = expr("sheets")
	if err != nil {
		t.Fatal(err)
	}
	if got != "window.__inspector.sheets()" {
		t.Fatalf("got %s", got)
	}

	// selector text must stay a string literal
	got, err = expr("match", page.Handle("e1"), []string{`a[href="x"]</script>`})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "</script>") {
		t.Fatalf("unescaped argument: %s", got)
	}
}

func TestDecodeEvent(t *testing.T) {
	e, err := decodeEvent(`{"kind":"panel-down","ui":true,"panel":"p1","x":10.5,"y":20}`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != page.EventPanelDown || !e.UI || e.Panel != "p1" || e.X != 10.5 || e.Y != 20 {
		t.Fatalf("decoded %+v", e)
	}
	if _, err := decodeEvent(`{"x":1}`); err == nil {
		t.Fatal("event without kind should fail")
	}
	if _, err := decodeEvent(`not json`); err == nil {
		t.Fatal("bad payload should fail")
	}
}

func TestPumpPreservesOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Page{events: make(chan page.Event), wake: make(chan struct{}, 1)}
	go p.pump(ctx)

	kinds := []page.EventKind{page.EventMove, page.EventClick, page.EventKeyDown}
	for _, k := range kinds {
		p.enqueue(page.Event{Kind: k})
	}
	for _, want := range kinds {
		select {
		case e := <-p.events:
			if e.Kind != want {
				t.Fatalf("got %s, want %s", e.Kind, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}

	cancel()
	select {
	case _, ok := <-p.events:
		if ok {
			t.Fatal("unexpected event after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events not closed after cancel")
	}
}

func TestShimExportsEveryCall(t *testing.T) {
	for _, fn := range []string{"describe", "query", "sheets", "match", "defaults", "measure", "apply", "listen", "element"} {
		if !strings.Contains(shim, fn+",") && !strings.Contains(shim, fn+" }") {
			t.Errorf("shim does not export %s", fn)
		}
	}
	if !strings.Contains(shim, binding) {
		t.Error("shim does not call the event binding")
	}
}

func TestListenFlags(t *testing.T) {
	chord := page.ParseChord("shift+f2")
	script, err := expr("listen", newListenFlags(page.ListenShortcut|page.ListenEscape|page.ListenPicker, chord))
	if err != nil {
		t.Fatal(err)
	}
	want := `window.__inspector.listen({"shortcut":true,"escape":true,"picker":true,"drag":false,"chord":{"key":"f2","ctrl":false,"shift":true,"alt":false,"meta":false}})`
	if script != want {
		t.Fatalf("got %s", script)
	}

	script, err = expr("listen", newListenFlags(0, chord))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(script, "chord") {
		t.Fatalf("detached listen should not carry a chord: %s", script)
	}
}
