package templates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbColorPattern = regexp.MustCompile(`(?i)^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*(\d*\.?\d+)\s*)?\)$`)
)

// RGB is a drawable 8-bit color, used by the PDF backend.
type RGB struct {
	R, G, B int
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NormalizeColor 接受 #abc、#aabbcc、rgb()、rgba()，其余输入一律返回 fallback。
func NormalizeColor(value, fallback string) string {
	v := strings.TrimSpace(value)
	if hexColorPattern.MatchString(v) {
		return strings.ToLower(v)
	}
	if r, g, b, a, ok := parseRGBFunc(v); ok {
		if a < 0 {
			return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64))
	}
	return fallback
}

// ParseColor converts a normalized color string into RGB. Translucent rgba values are
// blended onto white, since the PDF backend draws opaque colors only.
func ParseColor(value string) (RGB, bool) {
	v := strings.TrimSpace(value)
	if hexColorPattern.MatchString(v) {
		c, err := colorful.Hex(strings.ToLower(v))
		if err != nil {
			return RGB{}, false
		}
		return toRGB(c), true
	}
	r, g, b, a, ok := parseRGBFunc(v)
	if !ok {
		return RGB{}, false
	}
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	if a >= 0 && a < 1 {
		white := colorful.Color{R: 1, G: 1, B: 1}
		c = white.BlendRgb(c, a)
	}
	return toRGB(c), true
}

// MustRGB parses value and falls back to the parsed fallback, then to black.
func MustRGB(value, fallback string) RGB {
	if c, ok := ParseColor(value); ok {
		return c
	}
	if c, ok := ParseColor(fallback); ok {
		return c
	}
	return RGB{}
}

func toRGB(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: int(r), G: int(g), B: int(b)}
}

// parseRGBFunc returns alpha -1 when the value carried no alpha component.
func parseRGBFunc(v string) (r, g, b int, a float64, ok bool) {
	m := rgbColorPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, 0, 0, 0, false
	}
	channels := [3]int{}
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > 255 {
			return 0, 0, 0, 0, false
		}
		channels[i] = n
	}
	a = -1
	if m[4] != "" {
		parsed, err := strconv.ParseFloat(m[4], 64)
		if err != nil || parsed > 1 {
			return 0, 0, 0, 0, false
		}
		a = parsed
	}
	return channels[0], channels[1], channels[2], a, true
}
