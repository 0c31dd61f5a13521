// Package telemetry turns the stream of world snapshots into per-window
// statistics and writes them out as CSV.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	RunID           string `csv:"run_id"`
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`

	// Population counts at window end
	Flockers  int `csv:"flockers"`
	Prey      int `csv:"prey"`
	Predators int `csv:"predators"`

	// Events during window
	Captures int `csv:"captures"`

	// Flocker motion (sampled at window end)
	FlockerSpeedMean float64 `csv:"flocker_speed_mean"`
	FlockerSpeedStd  float64 `csv:"flocker_speed_std"`
	FlockerSpeedP10  float64 `csv:"flocker_speed_p10"`
	FlockerSpeedP50  float64 `csv:"flocker_speed_p50"`
	FlockerSpeedP90  float64 `csv:"flocker_speed_p90"`
	Polarization     float64 `csv:"polarization"` // 1 when every flocker heads the same way
	Spread           float64 `csv:"spread"`       // mean distance to the flock centroid

	PreySpeedMean     float64 `csv:"prey_speed_mean"`
	PredatorSpeedMean float64 `csv:"predator_speed_mean"`
}

// Speeds returns the velocity magnitude of every agent.
func Speeds(agents []behavior.Agent) []float64 {
	out := make([]float64, len(agents))
	for i := range agents {
		out[i] = agents[i].Speed()
	}
	return out
}

// ComputeSpeedStats calculates mean, standard deviation and percentiles.
// It returns zeros for an empty slice.
func ComputeSpeedStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// Polarization is the length of the mean heading: 1 for a perfectly aligned
// flock, close to 0 for a disordered one. Agents at rest have no heading and
// count as 0.
func Polarization(agents []behavior.Agent) float64 {
	if len(agents) == 0 {
		return 0
	}
	var sum geometry.Vector2D
	for i := range agents {
		sum = sum.Add(agents[i].Vel.Normalize())
	}
	return sum.Len() / float64(len(agents))
}

// Spread is the mean distance of the agents to their centroid.
func Spread(agents []behavior.Agent) float64 {
	center, ok := behavior.Centroid(agents)
	if !ok {
		return 0
	}
	dist := make([]float64, len(agents))
	for i := range agents {
		dist[i] = agents[i].Pos.DistanceTo(center)
	}
	return stat.Mean(dist, nil)
}
