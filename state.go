package relay

// State is a step of the per-message pipeline.
type State string

const (
	StateReceived          State = "received"
	StateClassified        State = "classified"
	StateServedFromHistory State = "served_from_history"
	StateGenerating        State = "generating"
	StateValidated         State = "validated"
	StateSent              State = "sent"
	StateFailed            State = "failed"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSent || s == StateFailed
}
