package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"
)

// emoji covers the emoji and pictograph blocks that live inside the Basic
// Multilingual Plane. Everything above the BMP is dropped unconditionally.
var emoji = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203c, Hi: 0x203c, Stride: 1}, // double exclamation
		{Lo: 0x2049, Hi: 0x2049, Stride: 1}, // exclamation question
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1}, // combining keycap
		{Lo: 0x2122, Hi: 0x2122, Stride: 1}, // trade mark
		{Lo: 0x2139, Hi: 0x2139, Stride: 1}, // information source
		{Lo: 0x2194, Hi: 0x21aa, Stride: 1}, // arrows used as emoji
		{Lo: 0x231a, Hi: 0x23ff, Stride: 1}, // watch, hourglass, media controls
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1}, // circled M
		{Lo: 0x25aa, Hi: 0x25fe, Stride: 1}, // geometric shapes
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2934, Hi: 0x2935, Stride: 1}, // curved arrows
		{Lo: 0x2b05, Hi: 0x2b55, Stride: 1}, // arrows, stars, circles
		{Lo: 0x3030, Hi: 0x3030, Stride: 1}, // wavy dash
		{Lo: 0x303d, Hi: 0x303d, Stride: 1}, // part alternation mark
		{Lo: 0x3297, Hi: 0x3299, Stride: 2}, // circled ideographs
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1}, // variation selectors
	},
}

// Sanitize returns s reduced to characters a browser chat input accepts:
// terminal escape sequences, control characters, code points outside the
// BMP and emoji are removed, the result is NFC-normalized, every run of
// whitespace (newlines included) becomes one space, and leading and
// trailing whitespace is trimmed. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = ansi.Strip(s)
	// Composition can produce a filtered rune and filtering can expose a
	// new composition, so clean until nothing changes. Every pass after the
	// first either removes a rune or is the last.
	for {
		next := clean(s)
		if next == s {
			return s
		}
		s = next
	}
}

func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	s = norm.NFC.String(b.String())
	return strings.Join(strings.Fields(s), " ")
}

func keep(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return false
	case unicode.IsSpace(r):
		return true
	case r > 0xffff:
		return false
	case unicode.Is(unicode.Cc, r), unicode.Is(unicode.Co, r):
		return false
	case unicode.Is(emoji, r):
		return false
	}
	return true
}
