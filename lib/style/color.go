package style

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rgbPattern = regexp.MustCompile(`rgba?\((\d+),\s*(\d+),\s*(\d+)(?:,\s*([\d.]+))?\)`)

// RGBToHex converts an rgb() or rgba() color to #rrggbb, appending the
// opacity as " (NN%)" when alpha is below 1. Hex input and anything it
// cannot parse come back unchanged.
func RGBToHex(color string) string {
	if color == "" || strings.HasPrefix(color, "#") {
		return color
	}
	m := rgbPattern.FindStringSubmatch(color)
	if m == nil {
		return color
	}
	var b strings.Builder
	b.WriteByte('#')
	for _, c := range m[1:4] {
		n, err := strconv.Atoi(c)
		if err != nil {
			return color
		}
		fmt.Fprintf(&b, "%02x", min(n, 255))
	}
	if m[4] == "" {
		return b.String()
	}
	alpha, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return color
	}
	if alpha < 1 {
		fmt.Fprintf(&b, " (%d%%)", int(math.Round(alpha*100)))
	}
	return b.String()
}

// IsTransparent reports whether a computed color is fully transparent.
func IsTransparent(color string) bool {
	switch strings.TrimSpace(color) {
	case "", "transparent", "rgba(0, 0, 0, 0)":
		return true
	}
	return false
}

func isColorProperty(prop string) bool {
	if strings.HasPrefix(prop, "--") {
		return false
	}
	return strings.HasSuffix(prop, "color") || prop == "fill" || prop == "stroke"
}

var colorFunctions = []string{"rgb(", "rgba(", "hsl(", "hsla(", "hwb(", "lab(", "lch(", "oklab(", "oklch(", "color("}

func looksLikeColor(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(v, "#") {
		return true
	}
	for _, fn := range colorFunctions {
		if strings.HasPrefix(v, fn) {
			return true
		}
	}
	return false
}
