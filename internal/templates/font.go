package templates

import "strings"

// FontFamily is one of the three core PDF families that need no embedded font files.
type FontFamily string

const (
	FontSans  FontFamily = "Helvetica"
	FontSerif FontFamily = "Times"
	FontMono  FontFamily = "Courier"
)

var (
	monoHints  = []string{"mono", "fira code", "courier", "consolas"}
	serifHints = []string{"serif", "merriweather", "playfair", "garamond", "georgia", "lora"}
)

// FontFamilyFor maps a free-form family name onto a drawable core family.
// Matching is case-insensitive and substring based; "sans-serif" stays sans.
func FontFamilyFor(name string) FontFamily {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return FontSans
	}
	if containsAny(lower, monoHints) {
		return FontMono
	}
	if strings.Contains(lower, "sans") {
		return FontSans
	}
	if containsAny(lower, serifHints) {
		return FontSerif
	}
	return FontSans
}

// CSSFontStack returns a CSS font-family value with a generic fallback matching FontFamilyFor.
func CSSFontStack(name string) string {
	name = strings.TrimSpace(name)
	generic := "sans-serif"
	switch FontFamilyFor(name) {
	case FontSerif:
		generic = "serif"
	case FontMono:
		generic = "monospace"
	}
	if name == "" || strings.EqualFold(name, generic) {
		return generic
	}
	if strings.Contains(name, ",") {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "") + "', " + generic
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
