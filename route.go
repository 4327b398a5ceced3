package relay

// Route is the routing decision for an incoming message.
type Route string

const (
	RouteContext Route = "context_query" // asks about an earlier turn
	RouteSummary Route = "summary_query" // asks for a conversation summary
	RouteTool    Route = "tool_query"    // needs a registered function
	RouteSearch  Route = "search_query"  // needs live information
	RoutePlain   Route = "plain"         // conversational reply
)

// Intent refines a context query.
type Intent string

const (
	IntentNone     Intent = ""
	IntentFirst    Intent = "first"
	IntentPrevious Intent = "previous"
)

// Decision is the classifier's verdict for one message. It is derived on
// demand and never stored.
type Decision struct {
	Route  Route
	Intent Intent
}

// ServedFromHistory reports whether the route is answered by the
// conversation store without a generation call.
func (d Decision) ServedFromHistory() bool {
	return d.Route == RouteContext || d.Route == RouteSummary
}
