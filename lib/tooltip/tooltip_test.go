package tooltip

import (
	"strings"
	"testing"

	"github.com/nathants/inspector/lib/style"
)

func content() Content {
	return Content{
		Selector: "div.card",
		Text:     "Hello",
		Key: style.Set{
			{Prop: "size", Value: style.Value{Text: "120.4 × 50"}},
			{Prop: "color", Value: style.Value{Text: "#ff0000", Color: "rgb(255, 0, 0)"}},
		},
		Declared: style.Set{
			{Prop: "margin", Value: style.Value{Text: "4px"}},
			{Prop: "background-color", Value: style.Value{Text: "#010203", Color: "var(--bg)", Computed: "rgb(1, 2, 3)"}},
		},
		Pinned: true,
	}
}

func TestRenderStructure(t *testing.T) {
	out, err := Render(content())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`class="ext-tooltip-header"`,
		`div.card`,
		`data-action="close"`,
		`data-action="inspect"`,
		`Hello`,
		`120.4 × 50`,
		`ext-style-separator`,
		`4px;`,
		`rgb(255, 0, 0)`,
		`rgb(1, 2, 3)`,
		`var(--bg)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	order := []string{"ext-tooltip-header", "Hello", "120.4", "ext-style-separator", "4px;"}
	last := -1
	for _, s := range order {
		i := strings.Index(out, s)
		if i < last {
			t.Errorf("%q rendered out of order", s)
		}
		last = i
	}
}

func TestRenderHoverHidesControls(t *testing.T) {
	c := content()
	c.Pinned = false
	out, err := Render(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ext-tooltip-close-hidden") {
		t.Error("hover tooltip close control should be hidden")
	}
	if strings.Contains(out, `data-action="inspect"`) {
		t.Error("hover tooltip should not carry an inspect control")
	}
}

func TestRenderNoSeparatorWithoutDeclared(t *testing.T) {
	c := content()
	c.Declared = nil
	c.Text = ""
	out, err := Render(c)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "ext-style-separator") {
		t.Error("separator rendered with no declared styles")
	}
	if strings.Contains(out, ">text<") {
		t.Error("text row rendered with empty text")
	}
}

func TestRenderEscapesPageContent(t *testing.T) {
	c := Content{
		Selector: `div.<img src=x onerror=alert(1)>`,
		Text:     `<script>alert(1)</script>`,
		Declared: style.Set{
			{Prop: "content", Value: style.Value{Text: `"</div><b>x</b>"`}},
		},
	}
	out, err := Render(c)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "<img") || strings.Contains(out, "<b>") {
		t.Errorf("markup leaked:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("text not escaped:\n%s", out)
	}
}

func TestRenderDropsHostileSwatch(t *testing.T) {
	c := Content{
		Selector: "div",
		Key: style.Set{
			{Prop: "background", Value: style.Value{Text: "x", Color: "url(https://evil.example/x.png)"}},
		},
	}
	out, err := Render(c)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "evil.example") {
		t.Errorf("swatch style not filtered:\n%s", out)
	}
}

func TestHashStable(t *testing.T) {
	a, _ := Render(content())
	b, _ := Render(content())
	if Hash(a) != Hash(b) {
		t.Error("identical content hashed differently")
	}
	c := content()
	c.Text = "Changed"
	d, _ := Render(c)
	if Hash(a) == Hash(d) {
		t.Error("changed content hashed the same")
	}
}
