// Command simulation runs a world headless for a fixed number of ticks and
// writes per-window telemetry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/internal/engine"
	"github.com/lao-tseu-is-alive/go-boids/internal/telemetry"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "simulation:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "world config file (.json, .yaml or .toml)")
		ticks      = flag.Uint("ticks", 3000, "number of ticks to run")
		seed       = flag.Uint64("seed", 0, "random seed, overrides the config file")
		workers    = flag.Int("workers", 0, "worker goroutines per tick, overrides the config file")
		outputDir  = flag.String("output-dir", "", "directory for telemetry.csv and config.yaml (disabled when empty)")
		window     = flag.Uint("window", 100, "ticks per telemetry window")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configPath != "" {
		loaded, err := simulation.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	collector := telemetry.NewCollector(uint64(*window), out, logger)
	logger.Infof("run %s: %d ticks, seed %d, %d workers", collector.RunID(), *ticks, cfg.Seed, cfg.Workers)

	ctx := context.Background()
	eng, err := engine.Start(ctx, cfg, logger, nil, collector)
	if err != nil {
		return err
	}
	defer eng.Stop(ctx)

	start := time.Now()
	chunk := max(uint(1), *window)
	for done := uint(0); done < *ticks; {
		n := min(chunk, *ticks-done)
		if err := eng.Advance(ctx, uint32(n)); err != nil {
			return err
		}
		stats, err := eng.Stats(ctx)
		if err != nil {
			return err
		}
		done += n
		logger.Infof("tick %d: flockers %d, prey %d, predators %d, captured %d",
			stats.Tick, stats.Flockers, stats.Prey, stats.Predators, stats.Captured)
	}

	collector.Finish()
	if err := collector.Err(); err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Infof("done: %d ticks in %s (%.0f ticks/sec)", *ticks, elapsed.Round(time.Millisecond),
		float64(*ticks)/elapsed.Seconds())
	if dir := out.Dir(); dir != "" {
		logger.Infof("telemetry written to %s", dir)
	}
	return nil
}
