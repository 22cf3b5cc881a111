package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/analysis"
	"github.com/the-geek-freaks/meshscope/internal/config"
	"github.com/the-geek-freaks/meshscope/internal/health"
	"github.com/the-geek-freaks/meshscope/internal/lib/logger/sl"
	"github.com/the-geek-freaks/meshscope/internal/registry"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	snapshotPath := flag.String("snapshot", "", "path to snapshot fixture (overrides config)")
	once := flag.Bool("once", false, "run a single analysis pass and print the result")
	dryRun := flag.Bool("dry-run", false, "analyze without persisting the problem registry")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	log.Info("starting meshscope analyzer",
		slog.String("env", cfg.Env),
		slog.String("site", cfg.Site.Name),
		slog.Bool("once", *once),
		slog.Bool("dry_run", *dryRun),
	)

	site := config.MustLoadSite(cfg.Site.ConfigPath)

	log.Info("loaded site config",
		slog.String("site_name", site.SiteName),
		slog.Int("floors", len(site.Building.Floors)),
		slog.Int("placements", len(site.Placements)),
	)

	snapPath := cfg.Analysis.SnapshotPath
	if *snapshotPath != "" {
		snapPath = *snapshotPath
	}
	if snapPath == "" {
		log.Error("no snapshot path configured")
		os.Exit(1)
	}

	var repo registry.Repository
	if cfg.Registry.Enabled && !*dryRun {
		sqlite, err := registry.NewSQLite(log, cfg.Registry.Path)
		if err != nil {
			log.Error("failed to open registry", sl.Err(err))
			os.Exit(1)
		}
		repo = sqlite
		log.Info("registry enabled", slog.String("path", cfg.Registry.Path))
	} else {
		repo = registry.NewMemory()
	}

	analyzer := analysis.New(log, &site.Building, site.Placements, cfg.Analysis.ResolutionM)

	var (
		mu      sync.Mutex
		lastRun time.Time
		lastRes *analysis.Result
	)

	runPass := func(ctx context.Context) (*analysis.Result, error) {
		snap, err := analysis.LoadSnapshot(snapPath)
		if err != nil {
			return nil, err
		}

		mu.Lock()
		previous := lastRes
		mu.Unlock()

		result, err := analyzer.Run(ctx, repo, *snap, previous, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		analyzer.LogProblems(result.Problems)
		health.ObservePass(result.Problems, result.Health.Overall, result.Duration.Seconds())

		mu.Lock()
		lastRun = time.Now()
		lastRes = result
		mu.Unlock()
		return result, nil
	}

	if *once {
		result, err := runPass(context.Background())
		if err != nil {
			log.Error("analysis pass failed", sl.Err(err))
			os.Exit(1)
		}
		if err := repo.Close(); err != nil {
			log.Error("failed to close registry", sl.Err(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Error("failed to encode result", sl.Err(err))
			os.Exit(1)
		}
		return
	}

	healthServer := health.NewServer(log, cfg.Health.Address)
	if sqlite, ok := repo.(*registry.SQLite); ok {
		healthServer.AddChecker(health.NewRegistryHealthChecker(sqlite.Count))
	}
	healthServer.AddChecker(health.NewAnalysisHealthChecker(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return lastRun
	}, 2*cfg.Analysis.Interval))

	if err := healthServer.Start(); err != nil {
		log.Error("failed to start health server", sl.Err(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", slog.String("signal", sig.String()))
		cancel()
	}()

	if _, err := runPass(ctx); err != nil {
		log.Error("analysis pass failed", sl.Err(err))
	}

	ticker := time.NewTicker(cfg.Analysis.Interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if _, err := runPass(ctx); err != nil {
				log.Error("analysis pass failed", sl.Err(err))
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := healthServer.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop health server", sl.Err(err))
	}

	if err := repo.Close(); err != nil {
		log.Error("failed to close registry", sl.Err(err))
	}

	log.Info("analyzer stopped")
}
