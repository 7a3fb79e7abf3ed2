package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sprintpulse/sprintpulse/internal/config"
	"github.com/sprintpulse/sprintpulse/internal/gh"
	"github.com/sprintpulse/sprintpulse/internal/metrics"
	"github.com/sprintpulse/sprintpulse/internal/notify"
	"github.com/sprintpulse/sprintpulse/internal/report"
)

func main() {
	configPath := flag.String("config", "sprintpulse.yaml", "path to config file")
	outPath := flag.String("out", "", "write the report to this file (overrides report.output_file)")
	watch := flag.Bool("watch", false, "keep running: regenerate on an interval and hot-reload config")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Local convenience; CI injects real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("sprintpulse starting",
		"repo", cfg.Repo.Slug(),
		"period_days", cfg.Repo.PeriodDays,
		"watch", *watch,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*watch {
		if err := run(ctx, cfg, *outPath); err != nil {
			slog.Error("report run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: the current config is swapped atomically on hot-reload and
	// picked up by the next tick.
	var current atomic.Pointer[config.Config]
	current.Store(cfg)

	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			current.Store(updated)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	if err := run(ctx, cfg, *outPath); err != nil {
		slog.Error("report run failed", "err", err)
	}

	ticker := time.NewTicker(cfg.Watch.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("sprintpulse shutting down")
			return
		case <-ticker.C:
			if err := run(ctx, current.Load(), *outPath); err != nil {
				slog.Error("report run failed", "err", err)
			}
		}
	}
}

// run executes one fetch → aggregate → evaluate → render → notify pipeline.
func run(ctx context.Context, cfg *config.Config, outOverride string) error {
	started := time.Now()

	client := gh.New(cfg.Repo)
	window := gh.LastDays(cfg.Repo.PeriodDays, time.Now().UTC())

	in, err := client.FetchAll(ctx, window, cfg.Repo.PeriodDays)
	if err != nil {
		return err
	}

	m := metrics.Aggregate(in)
	thresholds := cfg.Thresholds.Thresholds()
	insights := metrics.DetectInsights(m, thresholds)
	health := metrics.Health(m, thresholds)

	md, err := report.Render(report.Data{
		Title:       cfg.Report.Title,
		Repo:        cfg.Repo.Slug(),
		PeriodDays:  cfg.Repo.PeriodDays,
		GeneratedAt: time.Now().UTC(),
		Metrics:     m,
		Insights:    insights,
		Health:      health,
	})
	if err != nil {
		return err
	}

	fmt.Println(md)

	outPath := cfg.Report.OutputFile
	if outOverride != "" {
		outPath = outOverride
	}
	if err := report.WriteOutputs(md, outPath); err != nil {
		return err
	}

	notify.New(cfg.Webhooks).Push(ctx, notify.Summary{
		Repo:     cfg.Repo.Slug(),
		Health:   health,
		Metrics:  m,
		Insights: insights,
	})

	slog.Info("report generated",
		"repo", cfg.Repo.Slug(),
		"prs", m.Throughput,
		"health", health,
		"took", time.Since(started).Round(time.Millisecond),
	)
	return nil
}
