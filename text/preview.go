package text

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Preview shortens s for log lines to at most width terminal cells.
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}
