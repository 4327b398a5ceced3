package relay

import "time"

// IncomingMessage is one message observed by a Transport poll. Incoming is
// false for messages sent from this side of the chat, including the bot's
// own replies.
type IncomingMessage struct {
	Text      string
	Incoming  bool
	Timestamp time.Time
}
