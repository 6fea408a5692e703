// stubsvc - a local stand-in for the flood question answering service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/logging"
	"github.com/jeranaias/floodqa-tui/internal/stubsvc"
)

type options struct {
	addr     string
	fixture  string
	delay    time.Duration
	origins  []string
	logLevel string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "stubsvc",
		Short: "Serve canned flood answers on the query service contract",
		Long: `stubsvc answers POST /query from a JSON fixture so floodqa can run without
the retrieval backend.

Environment: STUBSVC_ADDR and STUBSVC_FIXTURE, also read from .env.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	_ = godotenv.Load()
	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", envOr("STUBSVC_ADDR", stubsvc.DefaultAddr), "listen address")
	flags.StringVar(&opts.fixture, "fixture", os.Getenv("STUBSVC_FIXTURE"), "fixture file (default: built-in answers)")
	flags.DurationVar(&opts.delay, "delay", 800*time.Millisecond, "latency added before each answer")
	flags.StringSliceVar(&opts.origins, "allow-origin", nil, "CORS origins (default any)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}

func run(parent context.Context, opts *options) error {
	logger, err := logging.New(logging.Options{Level: opts.logLevel, Development: true})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fixture := stubsvc.DefaultFixture()
	if opts.fixture != "" {
		if fixture, err = stubsvc.LoadFixture(opts.fixture); err != nil {
			return err
		}
		logger.Info("fixture loaded",
			zap.String("path", opts.fixture),
			zap.Int("entries", len(fixture.Entries)))
	}

	srv := stubsvc.New(stubsvc.Options{
		Fixture:        fixture,
		Logger:         logger,
		Delay:          opts.delay,
		AllowedOrigins: opts.origins,
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(opts.addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
