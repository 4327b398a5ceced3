// Package mock provides test doubles for relay interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/relay"
)

// Interface compliance checks.
var (
	_ relay.Generator    = (*Generator)(nil)
	_ relay.Transport    = (*Transport)(nil)
	_ relay.ToolExecutor = (*ToolExecutor)(nil)
)

// Generator is a test double for relay.Generator.
// Set GenerateFn before calling Generate.
type Generator struct {
	GenerateFn func(ctx context.Context, req relay.GenerateRequest) (relay.GenerateResponse, error)
}

// Generate delegates to GenerateFn.
func (g *Generator) Generate(ctx context.Context, req relay.GenerateRequest) (relay.GenerateResponse, error) {
	return g.GenerateFn(ctx, req)
}
