package relay

import "time"

// Stats is a read-only snapshot of session counters.
type Stats struct {
	SessionID        string
	MessagesReceived int
	MessagesSent     int
	Errors           int
	StartedAt        time.Time
	Duration         time.Duration
	Languages        map[Language]int
}
