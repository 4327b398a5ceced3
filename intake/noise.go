package intake

import (
	"regexp"
	"strings"

	"github.com/fwojciec/relay/text"
)

// systemNotices are chat client notices that show up in the message list
// but were not written by the chat partner.
var systemNotices = []string{
	"joined using this group's invite link",
	"changed the group description",
	"changed this group's icon",
	"changed the subject",
	"changed their phone number",
	"messages and calls are end-to-end encrypted",
	"this message was deleted",
	"you deleted this message",
	"missed voice call",
	"missed video call",
}

// membership matches "<name> left" notices of up to four words.
var membership = regexp.MustCompile(`^(\S+ ){1,4}left$`)

// IsNoise reports whether an incoming text should be skipped: typing
// indicators, system notices, and texts with fewer than two visible
// characters.
func IsNoise(s string) bool {
	if text.Visible(text.Sanitize(s)) < 2 {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(lower, "typing") && (strings.Contains(lower, "…") || strings.HasSuffix(lower, "...")) {
		return true
	}
	for _, n := range systemNotices {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return membership.MatchString(lower)
}
