// Command lazydemo runs a simulated host component through repeated lazy
// lifecycle cycles and exposes the gate metrics for scraping.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nomis52/lazylifecycle/config"
	"github.com/nomis52/lazylifecycle/dispatch"
	"github.com/nomis52/lazylifecycle/gate"
	"github.com/nomis52/lazylifecycle/lifecycle"
	"github.com/nomis52/lazylifecycle/logging"
	"github.com/nomis52/lazylifecycle/metrics"
	"github.com/nomis52/lazylifecycle/schedule"
)

type Args struct {
	ConfigPath string
}

// warmupCycles is how many dispatched cycles the warm-up countdown waits for
// before declaring the demo steady.
const warmupCycles = 3

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()
	if args.ConfigPath == "" {
		return fmt.Errorf("config flag (-c or --config) is required")
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("lazydemo started", "config_path", args.ConfigPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	// The main queue runs every deferred callback, in order, on one
	// goroutine. It is installed explicitly at startup, never implicitly.
	queue := dispatch.NewSerial()
	queue.Start(ctx)
	dispatch.SetMain(queue)

	scrapeReg, err := metrics.NewScrapeRegistry()
	if err != nil {
		return fmt.Errorf("failed to create metrics registry: %w", err)
	}
	lifecycleMetrics, err := metrics.NewLifecycleMetrics(scrapeReg)
	if err != nil {
		return fmt.Errorf("failed to create lifecycle metrics: %w", err)
	}

	ticker := newFrameTicker(cfg.Demo.TickInterval)
	ticker.Start(ctx)
	component := newDemoComponent(logger, ticker)

	// A countdown tracks the first few completed cycles; once they have all
	// run the demo is considered warmed up.
	var warmup *gate.Countdown
	warmup, err = gate.NewCountdown(warmupCycles, 0, func() {
		logger.Info("demo warmed up",
			"cycles", warmupCycles,
			"last_cause", warmup.DownCause(),
			"recorded_events", len(warmup.History()))
	}, gate.WithCountdownLogger(logger), gate.WithHistoryCapacity(cfg.Lazy.HistoryCapacity))
	if err != nil {
		return fmt.Errorf("failed to create warm-up countdown: %w", err)
	}
	warmup.Plant()
	component.onCycleComplete = func() { warmup.Down("cycle_complete") }

	registry := lifecycle.NewRegistry()
	handle := registry.Add(component)

	orch, err := lifecycle.NewOrchestrator(dispatch.Main(),
		lifecycle.WithLogger(logger),
		lifecycle.WithTickCount(cfg.Lazy.TickCount),
		lifecycle.WithDeadline(cfg.Lazy.Deadline),
		lifecycle.WithMetrics(lifecycleMetrics),
	)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	runCycle := func() {
		component.beginCycle(cfg.Demo.ResumeDelay)
		if err := orch.Activate(handle); err != nil {
			logger.Error("activation failed", "error", err)
		}
	}

	trigger, err := schedule.NewTrigger(cfg.Demo.CycleSpec, runCycle, logger)
	if err != nil {
		return fmt.Errorf("failed to create schedule trigger: %w", err)
	}
	trigger.Start(ctx)
	logger.Info("cycle schedule armed", "spec", cfg.Demo.CycleSpec, "next_run", trigger.NextRun())

	// Run one cycle right away rather than waiting for the first cron slot.
	runCycle()

	mux := http.NewServeMux()
	mux.Handle("/metrics", scrapeReg.Handler())
	srv := &http.Server{Addr: cfg.Monitoring.ListenAddr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("metrics endpoint listening", "addr", cfg.Monitoring.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if warmup.TryDiffuse() {
			logger.Info("shutdown before warm-up completed",
				"remaining", warmup.Remaining())
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to config file")
	configPathShort := flag.String("c", "", "Path to config file (shorthand)")
	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}
	return Args{ConfigPath: path}
}
