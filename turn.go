package relay

import "time"

// Turn is one recorded utterance in the conversation window.
// Turns are values; the store never mutates one after creating it.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}
