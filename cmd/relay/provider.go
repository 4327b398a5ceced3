package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/anthropic"
	"github.com/fwojciec/relay/gemini"
)

// newGenerator constructs the generator named by cfg.Provider.
func newGenerator(ctx context.Context, cfg *relay.Config) (relay.Generator, error) {
	switch cfg.Provider {
	case "anthropic":
		var opts []anthropic.Option
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(cfg.APIKey, opts...), nil
	case "gemini", "":
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		client, err := gemini.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"gemini\" or \"anthropic\": %w", cfg.Provider, relay.ErrConfiguration)
	}
}
