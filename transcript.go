package relay

import "time"

// Transcript is a saved conversation window with the stats of the session
// that produced it.
type Transcript struct {
	SessionID string
	Target    string
	SavedAt   time.Time
	Turns     []Turn
	Stats     Stats
}
