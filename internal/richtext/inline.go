package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a run of text sharing one inline style.
type Span struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

type marker string

const (
	markBoldItalic marker = "***"
	markUnderline3 marker = "___"
	markBold       marker = "**"
	markUnderline2 marker = "__"
	markItalic     marker = "*"
	markUnderline  marker = "_"
)

// order matters: longer markers are tried before their prefixes.
var markers = []marker{markBoldItalic, markUnderline3, markBold, markUnderline2, markItalic, markUnderline}

// Spans tokenizes inline emphasis. Unclosed markers are kept as literal text.
func Spans(s string) []Span {
	return parseInline(s, Span{}, nil)
}

// Strip removes inline emphasis markers and returns the plain text.
func Strip(s string) string {
	spans := Spans(s)
	if len(spans) == 1 {
		return spans[0].Text
	}
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

func parseInline(s string, style Span, out []Span) []Span {
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		sp := style
		sp.Text = buf.String()
		out = append(out, sp)
		buf.Reset()
	}

	for i := 0; i < len(s); {
		if m, end, ok := matchMarker(s, i); ok {
			flush()
			inner := s[i+len(m) : end]
			out = parseInline(inner, style.with(m), out)
			i = end + len(m)
			continue
		}
		buf.WriteByte(s[i])
		i++
	}
	flush()
	return out
}

func (sp Span) with(m marker) Span {
	switch m {
	case markBoldItalic:
		sp.Bold = true
		sp.Italic = true
	case markBold:
		sp.Bold = true
	case markItalic:
		sp.Italic = true
	case markUnderline, markUnderline2, markUnderline3:
		sp.Underline = true
	}
	return sp
}

// matchMarker reports whether an opening marker at i has a matching close; end is the
// index of the closing marker.
func matchMarker(s string, i int) (marker, int, bool) {
	for _, m := range markers {
		if !strings.HasPrefix(s[i:], string(m)) {
			continue
		}
		if m == markUnderline && i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(s[:i])
			if isWordRune(prev) {
				continue
			}
		}
		start := i + len(m)
		if end := findClosing(s, start, m); end > start {
			return m, end, true
		}
	}
	return "", 0, false
}

func findClosing(s string, start int, m marker) int {
	if start >= len(s) || s[start] == ' ' {
		return -1
	}
	single := len(m) == 1
	for j := start; j < len(s); {
		idx := strings.Index(s[j:], string(m))
		if idx < 0 {
			return -1
		}
		pos := j + idx
		if single && pos+1 < len(s) && s[pos+1] == m[0] {
			// part of a double marker belonging to a nested span
			j = pos + 2
			continue
		}
		if len(m) == 2 && pos+2 < len(s) && s[pos+2] == m[0] {
			// `**b *i***`: the inner single marker closes first, the last two close this span
			pos++
		}
		if pos == start || s[pos-1] == ' ' {
			j = pos + len(m)
			continue
		}
		if m == markUnderline && pos+1 < len(s) {
			next, _ := utf8.DecodeRuneInString(s[pos+1:])
			if isWordRune(next) {
				j = pos + 1
				continue
			}
		}
		return pos
	}
	return -1
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
