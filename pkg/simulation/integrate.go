package simulation

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Bounds describes the playable area.
type Bounds struct {
	Width, Height float64
	Border        float64
}

// Center returns the middle of the world.
func (b Bounds) Center() geometry.Vector2D {
	return geometry.Vector2D{X: b.Width / 2, Y: b.Height / 2}
}

// Integrator applies the per-tick constraints and moves an agent.
type Integrator struct {
	Bounds       Bounds
	Policy       BoundaryPolicy
	IdleSpeed    float64
	CenterWeight float64

	// Obstacles are checked after the move when Rebound is set.
	Obstacles []behavior.Obstacle
	Rebound   bool
}

// NewIntegrator builds the integrator described by cfg.
func NewIntegrator(cfg *Config, obstacles []behavior.Obstacle) *Integrator {
	return &Integrator{
		Bounds: Bounds{
			Width:  cfg.WorldWidth,
			Height: cfg.WorldHeight,
			Border: cfg.Border,
		},
		Policy:       cfg.Boundary,
		IdleSpeed:    cfg.IdleSpeed,
		CenterWeight: cfg.CenterWeight,
		Obstacles:    obstacles,
		Rebound:      cfg.CollisionRebound,
	}
}

// Integrate runs, in order: boundary policy, idle nudge, speed limit,
// position update and obstacle rebound. On return ‖a.Vel‖ <= a.MaxSpeed.
func (in *Integrator) Integrate(a *behavior.Agent, rng *rand.Rand) {
	switch in.Policy {
	case BoundaryWrap:
		a.Pos.X = wrapAxis(a.Pos.X, a.Vel.X, in.Bounds.Width)
		a.Pos.Y = wrapAxis(a.Pos.Y, a.Vel.Y, in.Bounds.Height)
	default:
		a.Vel.X = bounceAxis(a.Pos.X, a.Vel.X, in.Bounds.Border, in.Bounds.Width, rng)
		a.Vel.Y = bounceAxis(a.Pos.Y, a.Vel.Y, in.Bounds.Border, in.Bounds.Height, rng)
	}

	if a.Speed() < in.IdleSpeed {
		behavior.ReturnToCenter(a, in.Bounds.Center(), in.CenterWeight)
	}

	a.Vel = a.Vel.ClampLen(a.MaxSpeed)
	a.Pos = a.Pos.Add(a.Vel)

	if in.Rebound {
		for _, o := range in.Obstacles {
			if o.Contains(a.Pos) {
				a.Vel = a.Vel.Mul(-uniform(rng, 0.1, 0.9))
				break
			}
		}
	}
}

// bounceAxis reflects v with a random energy loss when pos is past the
// border and still heading out.
func bounceAxis(pos, v, border, dimension float64, rng *rand.Rand) float64 {
	if (pos < border && v < 0) || (pos > dimension-border && v > 0) {
		return -v * rng.Float64()
	}
	return v
}

// wrapAxis teleports pos to the opposite edge when it left the world in
// the direction of travel.
func wrapAxis(pos, v, dimension float64) float64 {
	switch {
	case pos < 0 && v < 0:
		return dimension
	case pos > dimension && v > 0:
		return 0
	}
	return pos
}
