package style

import "github.com/nathants/inspector/lib/page"

var borderSides = [4]string{"top", "right", "bottom", "left"}

// KeyProps are the computed properties KeyStyles reads.
var KeyProps = []string{
	"padding",
	"margin",
	"border-top",
	"border-right",
	"border-bottom",
	"border-left",
	"border-top-width",
	"border-right-width",
	"border-bottom-width",
	"border-left-width",
	"color",
	"background-color",
	"background-image",
}

func isZeroLength(v string) bool {
	return v == "" || v == "0px"
}

// KeyStyles returns the always-shown computed properties: size, non-zero
// padding and margin, borders, text color and background.
func KeyStyles(el *page.Element) Set {
	c := el.Computed
	var set Set

	set = append(set, Entry{"size", Value{Text: FormatNum(el.Rect.Width) + " × " + FormatNum(el.Rect.Height)}})

	if v := c["padding"]; !isZeroLength(v) {
		set = append(set, Entry{"padding", Value{Text: v}})
	}
	if v := c["margin"]; !isZeroLength(v) {
		set = append(set, Entry{"margin", Value{Text: v}})
	}

	var present [4]bool
	bordered := false
	for i, side := range borderSides {
		present[i] = !isZeroLength(c["border-"+side+"-width"])
		bordered = bordered || present[i]
	}
	if bordered {
		top := c["border-top"]
		if top == c["border-right"] && top == c["border-bottom"] && top == c["border-left"] {
			set = append(set, Entry{"border", Value{Text: top}})
		} else {
			for i, side := range borderSides {
				if present[i] {
					prop := "border-" + side
					set = append(set, Entry{prop, Value{Text: c[prop]}})
				}
			}
		}
	}

	if color := c["color"]; color != "" {
		set = append(set, Entry{"color", Value{Text: RGBToHex(color), Color: color}})
	}

	bg := c["background-color"]
	img := c["background-image"]
	switch {
	case !IsTransparent(bg):
		set = append(set, Entry{"background", Value{Text: RGBToHex(bg), Color: bg}})
	case img != "" && img != "none":
		set = append(set, Entry{"background", Value{Text: img}})
	}

	return set
}
