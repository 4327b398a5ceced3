package relay

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values. A negative
// index means no color.
type Theme struct {
	Incoming int // chat partner's messages
	Outgoing int // replies sent by the bot
	Muted    int // status lines
	Accent   int // headings in the session summary
	Error    int // error counts
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Incoming: 4,
		Outgoing: 2,
		Muted:    8,
		Accent:   5,
		Error:    1,
	}
}
