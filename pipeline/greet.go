package pipeline

import (
	"context"
	"fmt"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/markdown"
	"github.com/fwojciec/relay/text"
	"go.uber.org/zap"
)

const greetingPrompt = "Say hello briefly as an AI assistant."

// Greet generates and sends an opening message. Failures are returned and
// counted; the session continues without a greeting.
func (p *Pipeline) Greet(ctx context.Context) error {
	resp, err := p.gen.Generate(ctx, p.request(greetingPrompt, relay.ModePlain))
	if err != nil {
		p.stats.IncErrors()
		return fmt.Errorf("generating greeting: %w", err)
	}
	greeting := text.Validate(markdown.Plain(resp.Text), p.cfg.MaxResponseLength)
	if greeting == "" {
		p.stats.IncErrors()
		return fmt.Errorf("generating greeting: %w", relay.ErrEmptyResponse)
	}
	if err := p.transport.Send(ctx, greeting); err != nil {
		p.stats.IncErrors()
		return fmt.Errorf("sending greeting: %w: %w", relay.ErrTransportSend, err)
	}
	p.markSent(greeting)
	p.store.Add(ctx, greeting, relay.RoleAssistant)
	p.logger.Info("greeting sent", zap.String("text", text.Preview(greeting, 80)))
	return nil
}
