package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/relay"
)

// Compile-time interface check.
var _ relay.ToolExecutor = (*Executor)(nil)

// Executor dispatches tool calls to the built-in functions.
type Executor struct {
	now     func() time.Time
	weather WeatherFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock overrides time.Now for get_current_time.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithWeather sets the source used by get_weather.
func WithWeather(fn WeatherFunc) Option {
	return func(e *Executor) { e.weather = fn }
}

// NewExecutor creates an Executor. Weather comes from wttr.in unless
// overridden.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.weather == nil {
		e.weather = NewWttr(nil).Lookup
	}
	return e
}

// Execute dispatches a tool call by name. Failures, including unknown tool
// names, come back as IsError results describing the problem; the returned
// error is always nil.
func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage) (*relay.ToolResult, error) {
	switch name {
	case TimeToolName:
		return e.executeTime(ctx, args)
	case WeatherToolName:
		return e.executeWeather(ctx, args)
	default:
		return domainError(fmt.Sprintf("%s: %s", relay.ErrToolNotFound, name)), nil
	}
}

// Tools returns the definitions for all built-in functions.
func (e *Executor) Tools() []relay.Tool {
	return []relay.Tool{TimeTool(), WeatherTool()}
}
