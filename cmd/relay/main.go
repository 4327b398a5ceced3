// Command relay holds an automated chat conversation on a terminal
// transport, answering each incoming message through a language model.
//
// Usage:
//
//	GEMINI_API_KEY=...    relay -target Alice [flags]
//	ANTHROPIC_API_KEY=... relay -target Alice [flags]
//
// Settings come from defaults, -config YAML, .env files, RELAY_* variables
// and flags, in that order. Run relay -help for the flag list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/builtin"
	"github.com/fwojciec/relay/config"
	"github.com/fwojciec/relay/console"
	relayhttp "github.com/fwojciec/relay/http"
	"github.com/fwojciec/relay/intake"
	relayjson "github.com/fwojciec/relay/json"
	"github.com/fwojciec/relay/pipeline"
	"github.com/fwojciec/relay/stats"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.BindFlags(flag.CommandLine)
	var (
		resume  = flag.String("resume", "", "Transcript file to restore the conversation from")
		verbose = flag.Bool("verbose", false, "Debug logging")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Env and keyring are read here and in package config only.
	cfg, err := config.NewLoader().Load(flags.ConfigPath, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx, &cfg)
	if err != nil {
		return err
	}
	logger.Info("generator ready", zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))

	styles := console.NewStyles(relay.DefaultTheme())
	transport, err := console.NewReadline(cfg.Target+"> ", console.WithStyles(styles))
	if err != nil {
		return err
	}
	defer transport.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	session := stats.New(stats.WithMetrics(stats.NewMetrics(reg)))
	seen := relay.NewSeen()
	logger = logger.With(zap.String("session", session.ID()))

	exec := builtin.NewExecutor()
	p := pipeline.New(&cfg, gen, transport,
		pipeline.WithSeen(seen),
		pipeline.WithStats(session),
		pipeline.WithTools(exec, exec.Tools()),
		pipeline.WithLogger(logger),
	)
	if *resume != "" {
		t, err := relayjson.Load(*resume)
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		p.Store().Restore(t.Turns)
		logger.Info("conversation restored", zap.String("path", *resume), zap.Int("turns", len(t.Turns)))
	}

	loopOpts := []intake.Option{
		intake.WithSeen(seen),
		intake.WithStats(session),
		intake.WithLogger(logger),
	}
	if cfg.Greeting {
		loopOpts = append(loopOpts, intake.WithGreeter(p))
	}
	loop := intake.New(&cfg, transport, p, loopOpts...)

	stopStatus, err := startStatus(cfg.StatusInterval, session, p.Store(), seen, logger)
	if err != nil {
		return err
	}

	transport.Status(fmt.Sprintf("chatting with %s for %s, press Ctrl-D to stop", cfg.Target, cfg.ChatDuration))

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		err := loop.Run(gctx)
		if errors.Is(err, relay.ErrTransportClosed) {
			logger.Info("input closed")
			return nil
		}
		return err
	})
	if cfg.MetricsAddr != "" {
		srv := relayhttp.NewServer(cfg.MetricsAddr, reg, session,
			relayhttp.WithHealth(loop.Running),
			relayhttp.WithLogger(logger))
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}
	runErr := g.Wait()
	cancel()
	stopStatus()
	session.Finish()

	snap := session.Snapshot()
	logger.Info("session stats",
		zap.Int("received", snap.MessagesReceived),
		zap.Int("sent", snap.MessagesSent),
		zap.Int("errors", snap.Errors),
		zap.Duration("elapsed", snap.Duration))
	printSummary(os.Stdout, styles, snap, p.Store().Turns())

	if cfg.TranscriptPath != "" {
		t := relay.Transcript{
			SessionID: session.ID(),
			Target:    cfg.Target,
			SavedAt:   time.Now(),
			Turns:     p.Store().Turns(),
			Stats:     snap,
		}
		if err := relayjson.Save(cfg.TranscriptPath, t); err != nil {
			return errors.Join(runErr, fmt.Errorf("save transcript: %w", err))
		}
		fmt.Fprintf(os.Stderr, "Transcript saved to %s\n", cfg.TranscriptPath)
	}
	return runErr
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zc.Build()
}
