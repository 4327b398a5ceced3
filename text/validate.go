package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Validate sanitizes s and bounds it to maxLen characters. It returns the
// empty string when fewer than two visible characters remain. When s has to
// be cut, the cut lands on a grapheme boundary and the last three characters
// of the budget become [Ellipsis], so the result is never longer than maxLen.
// maxLen must be at least 4.
func Validate(s string, maxLen int) string {
	s = Sanitize(s)
	if Visible(s) < minVisible {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return truncate(s, maxLen-utf8.RuneCountInString(Ellipsis)) + Ellipsis
}

// Visible counts the non-space grapheme clusters in s.
func Visible(s string) int {
	n := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if !isSpace(g.Str()) {
			n++
		}
	}
	return n
}

// truncate returns the longest prefix of s made of whole grapheme clusters
// with at most budget runes, without trailing spaces.
func truncate(s string, budget int) string {
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		n := utf8.RuneCountInString(cluster)
		if used+n > budget {
			break
		}
		b.WriteString(cluster)
		used += n
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

func isSpace(cluster string) bool {
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
