package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gpu-price-tracker/src/config"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/tracker"
	"gpu-price-tracker/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	fixture := flag.String("fixture", "", "read listings from a saved availability response instead of the marketplace")
	interval := flag.Duration("interval", 0, "repeat the run on this interval (0 runs once)")
	writeConfig := flag.String("write-config", "", "write the effective config (without secrets) to this path and exit")
	flag.Parse()

	// 2. Load .env and config
	if err := config.LoadEnv(); err != nil {
		fmt.Printf("Error loading env: %v\n", err)
		os.Exit(1)
	}
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *writeConfig != "" {
		if err := conf.Save(*writeConfig); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if *fixture == "" {
		*fixture = conf.Marketplace.FixturePath
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	// 4. Setup Components
	store, err := setupStore(conf, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer store.Close()

	multiSource, err := setupSources(conf, *fixture, appLogger)
	if err != nil {
		appLogger.Critical("Failed to setup sources: %v", err)
		os.Exit(1)
	}

	t := tracker.NewTracker(conf.MConfig, multiSource, store, setupArchive(conf, appLogger), appLogger.Named("Tracker"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Single run
	if *interval <= 0 {
		if _, err := t.RunOnce(ctx); err != nil {
			appLogger.Error("Tracking run failed: %v", err)
			store.Close()
			os.Exit(1)
		}
		return
	}

	// 6. Scheduled runs
	appLogger.Info("Tracking every %s", interval.String())
	scheduler := utils.NewTrackingScheduler(*interval, appLogger.Named("Scheduler"))
	err = scheduler.Run(ctx, func(ctx context.Context) error {
		_, err := t.RunOnce(ctx)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Scheduler failed: %v", err)
	}
	appLogger.Info("Shutting down...")
}
