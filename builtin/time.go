package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/relay"
)

// TimeToolName is the function name the generator calls for the clock.
const TimeToolName = "get_current_time"

// TimeTool returns the definition for get_current_time.
func TimeTool() relay.Tool {
	return relay.Tool{
		Name:        TimeToolName,
		Description: "Gets the current date and time.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	}
}

func (e *Executor) executeTime(_ context.Context, _ json.RawMessage) (*relay.ToolResult, error) {
	now := e.now()
	return textResult(fmt.Sprintf("Current date and time: %s (%s)",
		now.Format("2006-01-02 15:04:05"), now.Format("Monday, January 02, 2006"))), nil
}
