package telemetry

import (
	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

// Collector accumulates step results into windows of ticks and produces
// WindowStats. It is meant to be registered as an engine observer, so all of
// its methods run on the world actor goroutine; read it only after the
// engine has answered a later Stats request or has been stopped.
type Collector struct {
	runID       string
	windowTicks uint64
	out         *OutputManager
	logger      log.Logger

	// Current window tracking
	windowStartTick uint64
	captures        int
	last            *simulation.Snapshot

	windows []WindowStats
	err     error
}

// NewCollector creates a collector flushing every windowTicks ticks (at
// least 1). out may be nil to keep the windows in memory only.
func NewCollector(windowTicks uint64, out *OutputManager, logger log.Logger) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Collector{
		runID:       uuid.NewString(),
		windowTicks: windowTicks,
		out:         out,
		logger:      logger,
	}
}

// RunID identifies the run in every CSV row.
func (c *Collector) RunID() string { return c.runID }

// Observe records one tick and flushes the window when it is full.
func (c *Collector) Observe(res simulation.StepResult, snap *simulation.Snapshot) {
	c.captures += len(res.Removed)
	c.last = snap
	if snap.Tick-c.windowStartTick >= c.windowTicks {
		c.Flush(snap)
	}
}

// Flush produces a WindowStats for the window ending at snap, writes it and
// resets the counters for the next window.
func (c *Collector) Flush(snap *simulation.Snapshot) WindowStats {
	mean, std, p10, p50, p90 := ComputeSpeedStats(Speeds(snap.Flockers))
	preyMean, _, _, _, _ := ComputeSpeedStats(Speeds(snap.Prey))
	predMean, _, _, _, _ := ComputeSpeedStats(Speeds(snap.Predators))

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   snap.Tick,

		Flockers:  len(snap.Flockers),
		Prey:      len(snap.Prey),
		Predators: len(snap.Predators),
		Captures:  c.captures,

		FlockerSpeedMean: mean,
		FlockerSpeedStd:  std,
		FlockerSpeedP10:  p10,
		FlockerSpeedP50:  p50,
		FlockerSpeedP90:  p90,
		Polarization:     Polarization(snap.Flockers),
		Spread:           Spread(snap.Flockers),

		PreySpeedMean:     preyMean,
		PredatorSpeedMean: predMean,
	}

	if err := c.out.WriteTelemetry(stats); err != nil && c.err == nil {
		c.err = err
		c.logger.Errorf("telemetry output disabled: %v", err)
	}
	c.logger.Debugf("window %d-%d: polarization %.3f, spread %.1f, captures %d",
		stats.WindowStartTick, stats.WindowEndTick, stats.Polarization, stats.Spread, stats.Captures)

	// Reset for next window
	c.windowStartTick = snap.Tick
	c.captures = 0
	c.windows = append(c.windows, stats)
	return stats
}

// Finish flushes a trailing partial window, if any.
func (c *Collector) Finish() {
	if c.last != nil && c.last.Tick > c.windowStartTick {
		c.Flush(c.last)
	}
}

// Windows returns every window flushed so far.
func (c *Collector) Windows() []WindowStats {
	return append([]WindowStats(nil), c.windows...)
}

// Err returns the first output error, if any.
func (c *Collector) Err() error { return c.err }
