package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/markdown"
	"github.com/fwojciec/relay/text"
	"go.uber.org/zap"
)

// strategy produces a candidate reply for one message.
type strategy struct {
	mode relay.Mode
	run  func(ctx context.Context, prompt string) (string, error)
}

// chain returns the strategies to try for route, most capable first. Search
// degrades to tools and then plain; tools degrade to plain.
func (p *Pipeline) chain(route relay.Route) []strategy {
	search := strategy{mode: relay.ModeSearch, run: p.runSearch}
	tools := strategy{mode: relay.ModeTools, run: p.runTools}
	plain := strategy{mode: relay.ModePlain, run: p.runPlain}

	var out []strategy
	switch route {
	case relay.RouteSearch:
		if p.cfg.EnableSearch {
			out = append(out, search)
		}
		fallthrough
	case relay.RouteTool:
		if p.toolsEnabled() {
			out = append(out, tools)
		}
	}
	return append(out, plain)
}

// generate runs the strategy chain and returns the first usable reply. The
// returned error joins every strategy failure.
func (p *Pipeline) generate(ctx context.Context, msg string, lang relay.Language, route relay.Route) (string, error) {
	prompt := p.prompt(msg, lang)
	var errs []error
	for _, s := range p.chain(route) {
		reply, err := s.run(ctx, prompt)
		if err == nil {
			if text.Validate(markdown.Plain(reply), p.cfg.MaxResponseLength) != "" {
				return reply, nil
			}
			err = relay.ErrEmptyResponse
		}
		err = fmt.Errorf("%s: %w", s.mode, err)
		p.logger.Warn("strategy failed, downgrading", zap.String("mode", string(s.mode)), zap.Error(err))
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", relay.ErrGeneration, errors.Join(errs...))
}

func (p *Pipeline) prompt(msg string, lang relay.Language) string {
	var b strings.Builder
	if c := p.store.ContextBefore(msg); c != "" {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("Current message: " + msg + "\n\n")
	if lang == relay.LanguageBengali {
		b.WriteString("Respond in Bengali, naturally and briefly.")
	} else {
		b.WriteString("Respond in English, naturally and briefly.")
	}
	return b.String()
}

func (p *Pipeline) request(prompt string, mode relay.Mode) relay.GenerateRequest {
	return relay.GenerateRequest{SystemPrompt: p.cfg.SystemInstruction, Prompt: prompt, Mode: mode}
}

func (p *Pipeline) runPlain(ctx context.Context, prompt string) (string, error) {
	resp, err := p.gen.Generate(ctx, p.request(prompt, relay.ModePlain))
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *Pipeline) runSearch(ctx context.Context, prompt string) (string, error) {
	resp, err := p.gen.Generate(ctx, p.request(prompt, relay.ModeSearch))
	if err != nil {
		return "", err
	}
	p.logger.Debug("search generation", zap.Bool("grounded", resp.Grounded))
	return resp.Text, nil
}

// runTools asks for function calls, executes them and folds the results into
// a second, plain generation pass. A reply without calls is used directly.
func (p *Pipeline) runTools(ctx context.Context, prompt string) (string, error) {
	req := p.request(prompt, relay.ModeTools)
	req.Tools = p.tools
	resp, err := p.gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.ToolCalls) == 0 {
		return resp.Text, nil
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nFunction results:\n")
	for _, call := range resp.ToolCalls {
		b.WriteString(p.execute(ctx, call) + "\n")
	}
	b.WriteString("\nUse these results to answer the current message naturally. If a function failed, say so briefly.")

	final, err := p.gen.Generate(ctx, p.request(b.String(), relay.ModePlain))
	if err != nil {
		return "", err
	}
	return final.Text, nil
}

func (p *Pipeline) execute(ctx context.Context, call relay.ToolCall) string {
	result, err := p.executor.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		p.logger.Warn("tool execution failed", zap.String("tool", call.Name), zap.Error(err))
		return fmt.Sprintf("Error: unable to execute %s", call.Name)
	}
	p.logger.Debug("tool executed",
		zap.String("tool", call.Name),
		zap.Bool("is_error", result.IsError),
		zap.String("result", text.Preview(result.Text, 80)))
	if result.IsError {
		return fmt.Sprintf("%s failed: %s", call.Name, result.Text)
	}
	return fmt.Sprintf("%s: %s", call.Name, result.Text)
}

func fallbackPhrase(lang relay.Language) string {
	if lang == relay.LanguageBengali {
		return "দুঃখিত, এই মুহূর্তে একটু সমস্যা হচ্ছে। একটু পরে আবার চেষ্টা করুন।"
	}
	return "Sorry, I'm having some trouble right now. Please try again in a moment."
}

func apologyPhrase(lang relay.Language) string {
	if lang == relay.LanguageBengali {
		return "দুঃখিত, এখন উত্তর দিতে সমস্যা হচ্ছে।"
	}
	return "Sorry, I'm having trouble responding right now."
}
