package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

const (
	numRoles = 3
	// spawnAttempts bounds the retries when a random spawn point falls inside
	// an obstacle.
	spawnAttempts = 32
)

// World owns the populations and obstacles of one simulation.
// The current populations double as the read-only snapshot of a tick, the
// next state is written into spare buffers that are swapped in at the end
// of Step. A World is not safe for concurrent use.
type World struct {
	cfg        *Config
	logger     log.Logger
	integrator *Integrator

	obstacles []behavior.Obstacle
	current   [numRoles][]behavior.Agent
	next      [numRoles][]behavior.Agent
	grids     [numRoles]*spatialGrid
	scratches []*scratch

	tick     uint64
	captured int
	nextID   uint32
}

// Snapshot is a deep copy of the world state, safe to hand to a renderer or
// a telemetry sink.
type Snapshot struct {
	Tick      uint64
	Flockers  []behavior.Agent
	Prey      []behavior.Agent
	Predators []behavior.Agent
	Obstacles []behavior.Obstacle
	Captured  int // prey removed since the world was created
}

// NewWorld validates cfg and spawns the obstacles then the populations at
// seeded random positions. A nil cfg means DefaultConfig, a nil logger
// discards everything.
func NewWorld(cfg *Config, logger log.Logger) (*World, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg:    cfg,
		logger: logger,
		nextID: 1,
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, spawnStream))
	w.obstacles = w.spawnObstacles(rng)
	w.integrator = NewIntegrator(cfg, w.obstacles)

	w.current[behavior.RoleFlocker] = w.spawnAgents(rng, behavior.RoleFlocker, cfg.NumFlockers)
	w.current[behavior.RolePrey] = w.spawnAgents(rng, behavior.RolePrey, cfg.NumPrey)
	w.current[behavior.RolePredator] = w.spawnAgents(rng, behavior.RolePredator, cfg.NumPredators)

	if cfg.SpatialGrid {
		cell := math.Max(cfg.FlockRadius, math.Max(cfg.Flocker.FieldOfView,
			math.Max(cfg.Prey.FieldOfView, cfg.Predator.FieldOfView)))
		for r := range w.grids {
			w.grids[r] = newSpatialGrid(cell)
		}
	}

	logger.Infof("World created %.0fx%.0f (%s): %d flockers, %d prey, %d predators, %d obstacles, seed %d",
		cfg.WorldWidth, cfg.WorldHeight, cfg.Boundary,
		cfg.NumFlockers, cfg.NumPrey, cfg.NumPredators, len(w.obstacles), cfg.Seed)
	return w, nil
}

func (w *World) spawnObstacles(rng *rand.Rand) []behavior.Obstacle {
	obstacles := make([]behavior.Obstacle, 0, w.cfg.NumObstacles)
	size := 2 * w.cfg.ObstacleHalfWidth
	for i := 0; i < w.cfg.NumObstacles; i++ {
		x := uniform(rng, w.cfg.Border, math.Max(w.cfg.Border, w.cfg.WorldWidth-w.cfg.Border-size))
		y := uniform(rng, w.cfg.Border, math.Max(w.cfg.Border, w.cfg.WorldHeight-w.cfg.Border-size))
		obstacles = append(obstacles, behavior.Obstacle{
			Pos:       geometry.Vector2D{X: x, Y: y},
			HalfWidth: w.cfg.ObstacleHalfWidth,
		})
	}
	return obstacles
}

func (w *World) spawnAgents(rng *rand.Rand, role behavior.Role, n int) []behavior.Agent {
	profile := w.cfg.Profile(role)
	agents := make([]behavior.Agent, 0, n)
	for i := 0; i < n; i++ {
		a := behavior.Agent{
			ID:          w.nextID,
			Role:        role,
			Pos:         w.spawnPoint(rng),
			Weights:     profile.Weights(),
			FieldOfView: profile.FieldOfView,
			MaxSpeed:    profile.MaxSpeed,
		}
		// Start slow, in [0.1, 1.0] per axis.
		a.Vel = geometry.Vector2D{
			X: float64(rng.IntN(10)+1) / 10,
			Y: float64(rng.IntN(10)+1) / 10,
		}
		w.nextID++
		agents = append(agents, a)
	}
	return agents
}

func (w *World) spawnPoint(rng *rand.Rand) geometry.Vector2D {
	var p geometry.Vector2D
	for attempt := 0; attempt < spawnAttempts; attempt++ {
		p = geometry.Vector2D{
			X: uniform(rng, w.cfg.Border, w.cfg.WorldWidth-w.cfg.Border),
			Y: uniform(rng, w.cfg.Border, w.cfg.WorldHeight-w.cfg.Border),
		}
		if !w.insideObstacle(p) {
			return p
		}
	}
	return p
}

func (w *World) insideObstacle(p geometry.Vector2D) bool {
	for _, o := range w.obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 { return w.tick }

// Captured returns the number of prey removed so far.
func (w *World) Captured() int { return w.captured }

// Config returns the configuration the world runs with.
func (w *World) Config() *Config { return w.cfg }

// Count returns the current size of the population of role r.
func (w *World) Count(r behavior.Role) int {
	if int(r) >= numRoles {
		return 0
	}
	return len(w.current[r])
}

// Population returns a copy of the current population of role r.
func (w *World) Population(r behavior.Role) []behavior.Agent {
	if int(r) >= numRoles {
		return nil
	}
	return cloneAgents(w.current[r])
}

// SetPopulation replaces the population of role r. Agents keep the ids they
// are given; the caller is responsible for keeping them unique.
func (w *World) SetPopulation(r behavior.Role, agents []behavior.Agent) error {
	if int(r) >= numRoles {
		return fmt.Errorf("unknown role %s", r)
	}
	for i := range agents {
		if agents[i].Role != r {
			return fmt.Errorf("agent %d has role %s, want %s", agents[i].ID, agents[i].Role, r)
		}
		if agents[i].ID >= w.nextID {
			w.nextID = agents[i].ID + 1
		}
	}
	w.current[r] = cloneAgents(agents)
	return nil
}

// SetObstacles replaces the obstacle field.
func (w *World) SetObstacles(obstacles []behavior.Obstacle) {
	w.obstacles = append([]behavior.Obstacle(nil), obstacles...)
	w.integrator.Obstacles = w.obstacles
}

// Snapshot returns a deep copy of the current state.
func (w *World) Snapshot() *Snapshot {
	return &Snapshot{
		Tick:      w.tick,
		Flockers:  cloneAgents(w.current[behavior.RoleFlocker]),
		Prey:      cloneAgents(w.current[behavior.RolePrey]),
		Predators: cloneAgents(w.current[behavior.RolePredator]),
		Obstacles: append([]behavior.Obstacle(nil), w.obstacles...),
		Captured:  w.captured,
	}
}

func cloneAgents(agents []behavior.Agent) []behavior.Agent {
	if agents == nil {
		return nil
	}
	return append(make([]behavior.Agent, 0, len(agents)), agents...)
}
