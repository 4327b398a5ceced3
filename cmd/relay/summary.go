package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/console"
	"github.com/fwojciec/relay/text"
)

const summaryPreviewWidth = 72

// printSummary writes the end-of-session stats and conversation window.
func printSummary(w io.Writer, s console.Styles, st relay.Stats, turns []relay.Turn) {
	var b strings.Builder
	b.WriteString(s.Accent.Render("Session summary") + "\n")
	fmt.Fprintf(&b, "  Duration:  %s\n", st.Duration.Round(time.Second))
	fmt.Fprintf(&b, "  Received:  %d\n", st.MessagesReceived)
	fmt.Fprintf(&b, "  Sent:      %d\n", st.MessagesSent)
	errs := fmt.Sprintf("%d", st.Errors)
	if st.Errors > 0 {
		errs = s.Error.Render(errs)
	}
	fmt.Fprintf(&b, "  Errors:    %s\n", errs)
	if len(st.Languages) > 0 {
		langs := slices.Sorted(maps.Keys(st.Languages))
		parts := make([]string, len(langs))
		for i, l := range langs {
			parts[i] = fmt.Sprintf("%s %d", l, st.Languages[l])
		}
		fmt.Fprintf(&b, "  Languages: %s\n", strings.Join(parts, ", "))
	}

	if len(turns) > 0 {
		b.WriteString(s.Accent.Render("Conversation") + "\n")
		for _, t := range turns {
			label, style := "You", s.Outgoing
			switch t.Role {
			case relay.RoleUser:
				label, style = "User", s.Incoming
			case relay.RoleSystem:
				label, style = "Summary", s.Muted
			}
			fmt.Fprintf(&b, "  %s %s\n", style.Render(label+":"), text.Preview(t.Content, summaryPreviewWidth))
		}
	}
	_, _ = io.WriteString(w, b.String())
}
