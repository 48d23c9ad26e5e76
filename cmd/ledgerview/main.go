package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ledgerview/internal/cache"
	"ledgerview/internal/cli"
	"ledgerview/internal/config"
	"ledgerview/internal/core"
	"ledgerview/internal/dashboard"
	apphttp "ledgerview/internal/http"
	"ledgerview/internal/ledger"
	"ledgerview/internal/log"
	"ledgerview/internal/render"
	"ledgerview/internal/session"
	"ledgerview/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := cli.LoadEnvFile(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}

	logger, err := cli.SetupLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}

	client, err := ledger.New(cfg.Ledger.BaseURL,
		ledger.WithTimeout(cfg.Ledger.Timeout),
		ledger.WithLogger(logger))
	if err != nil {
		return err
	}

	money, err := core.NewMoneyFormatter(cfg.UI.Locale)
	if err != nil {
		return err
	}
	renderer, err := render.New(web.TemplatesFS, money)
	if err != nil {
		return err
	}
	static, err := web.Static()
	if err != nil {
		return err
	}

	sessions := session.NewStore(cfg.Session.Max, cfg.Session.TTL, logger)
	sweeper := cache.NewManager(sweepInterval(cfg.Session.TTL), logger)
	sweeper.Register(sessions.Cache())

	policy := dashboard.NewEndpointPolicy(chipEndpoints(cfg.UI.Chips()), cfg.UI.UserEndpoint)
	srv, err := apphttp.NewServer(cfg.Addr(), apphttp.Options{
		Controller:         dashboard.NewController(client, logger, dashboard.WithEndpointPolicy(policy)),
		Sessions:           sessions,
		Renderer:           renderer,
		Ledger:             client,
		Static:             static,
		Chips:              chips(cfg.UI.Chips()),
		UserEndpoint:       cfg.UI.UserEndpoint,
		InitialEndpoint:    cfg.InitialEndpoint(),
		RateLimitPerMinute: cfg.RateLimit,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	logger.Info("Starting ledger dashboard",
		log.FieldOperation, log.OpStartup,
		"addr", srv.Addr,
		"ledger", client.BaseURL(),
		"locale", money.Locale())

	return cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout, sweeper.Run, srv.RunJanitor)
}

func chips(in []config.Chip) []render.Chip {
	out := make([]render.Chip, len(in))
	for i, c := range in {
		out[i] = render.Chip{Label: c.Label, Endpoint: c.Endpoint}
	}
	return out
}

func chipEndpoints(in []config.Chip) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = c.Endpoint
	}
	return out
}

// sweepInterval cleans a few times per TTL, but never more than once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return max(ttl/4, time.Minute)
}
