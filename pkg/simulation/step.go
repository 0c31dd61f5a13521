package simulation

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// ErrNonFinite reports a slot whose next state is NaN or infinite. The tick
// that produced it is discarded.
var ErrNonFinite = errors.New("non-finite agent state")

// parallelThreshold is the population size under which a pass stays serial
// even when more than one worker is configured.
var parallelThreshold = 64

// StepResult reports what happened during one tick.
type StepResult struct {
	Tick    uint64   // tick number just completed
	Removed []uint32 // ids of the prey captured during the tick
}

// scratch holds the per-worker buffers reused across slots.
type scratch struct {
	idx    []int
	agents []behavior.Agent
	rng    *stream
}

func newScratch() *scratch {
	return &scratch{rng: newStream()}
}

// Step advances the world by one tick. goal, when not nil, is the point the
// flockers seek. Every slot is computed from the populations as they were
// at the start of the tick, then capture runs on the finished next state and
// the buffers are swapped. On error the world keeps its previous state.
func (w *World) Step(goal *geometry.Vector2D) (StepResult, error) {
	if w.cfg.SpatialGrid {
		for r := range w.grids {
			w.grids[r].rebuild(w.current[r])
		}
	}
	for r := range w.next {
		w.next[r] = resize(w.next[r], len(w.current[r]))
	}

	flockers := w.next[behavior.RoleFlocker]
	err := w.forEachSlot(len(flockers), func(s *scratch, i int) error {
		flockers[i] = w.stepFlocker(s, i, goal)
		return checkFinite(&flockers[i])
	})
	if err != nil {
		return StepResult{Tick: w.tick}, err
	}
	prey := w.next[behavior.RolePrey]
	err = w.forEachSlot(len(prey), func(s *scratch, i int) error {
		prey[i] = w.stepPrey(s, i)
		return checkFinite(&prey[i])
	})
	if err != nil {
		return StepResult{Tick: w.tick}, err
	}
	predators := w.next[behavior.RolePredator]
	err = w.forEachSlot(len(predators), func(s *scratch, i int) error {
		predators[i] = w.stepPredator(s, i)
		return checkFinite(&predators[i])
	})
	if err != nil {
		return StepResult{Tick: w.tick}, err
	}

	removed := w.capture()

	w.current, w.next = w.next, w.current
	w.tick++
	return StepResult{Tick: w.tick, Removed: removed}, nil
}

func checkFinite(a *behavior.Agent) error {
	if !a.Pos.IsFinite() || !a.Vel.IsFinite() {
		return fmt.Errorf("%w: %s %d at %v moving %v", ErrNonFinite, a.Role, a.ID, a.Pos, a.Vel)
	}
	return nil
}

// forEachSlot calls fn for every slot in [0, n) and returns the first error.
// Above parallelThreshold the range is cut into one contiguous chunk per
// worker.
func (w *World) forEachSlot(n int, fn func(s *scratch, i int) error) error {
	if n == 0 {
		return nil
	}
	workers := w.cfg.Workers
	if workers <= 1 || n < parallelThreshold {
		s := w.scratch(0)
		for i := 0; i < n; i++ {
			if err := fn(s, i); err != nil {
				return err
			}
		}
		return nil
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for k, start := 0, 0; start < n; k, start = k+1, start+chunk {
		end := min(start+chunk, n)
		s := w.scratch(k)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(s, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *World) scratch(k int) *scratch {
	for len(w.scratches) <= k {
		w.scratches = append(w.scratches, newScratch())
	}
	return w.scratches[k]
}

func (w *World) stepFlocker(s *scratch, i int, goal *geometry.Vector2D) behavior.Agent {
	flockers := w.current[behavior.RoleFlocker]
	a := flockers[i]
	rng := s.rng.reseed(w.cfg.Seed, w.tick, a.Role, a.ID)

	s.idx = w.neighbors(behavior.RoleFlocker, s.idx[:0], i, a.Pos, w.cfg.FlockRadius)
	s.agents = gather(s.agents[:0], flockers, s.idx)
	w.flock(&a, s.agents)
	w.avoidObstacles(&a)
	if goal != nil {
		behavior.Seek(&a, *goal)
	}

	w.integrator.Integrate(&a, rng)
	return a
}

func (w *World) stepPrey(s *scratch, i int) behavior.Agent {
	prey := w.current[behavior.RolePrey]
	a := prey[i]
	rng := s.rng.reseed(w.cfg.Seed, w.tick, a.Role, a.ID)

	s.idx = w.neighbors(behavior.RolePrey, s.idx[:0], i, a.Pos, w.cfg.FlockRadius)
	s.agents = gather(s.agents[:0], prey, s.idx)
	w.flock(&a, s.agents)
	w.avoidObstacles(&a)

	if j := w.nearest(s, behavior.RolePredator, a.Pos, a.FieldOfView); j >= 0 {
		predator := w.current[behavior.RolePredator][j]
		behavior.Flee(&a, predator, w.cfg.Lookahead, func() float64 {
			return uniform(rng, w.cfg.FleeJitterMin, w.cfg.FleeJitterMax)
		})
	} else {
		behavior.ReturnToCenter(&a, w.integrator.Bounds.Center(), w.cfg.CenterWeight)
	}

	w.integrator.Integrate(&a, rng)
	return a
}

func (w *World) stepPredator(s *scratch, i int) behavior.Agent {
	predators := w.current[behavior.RolePredator]
	a := predators[i]
	rng := s.rng.reseed(w.cfg.Seed, w.tick, a.Role, a.ID)

	s.idx = w.neighbors(behavior.RolePredator, s.idx[:0], i, a.Pos, a.FieldOfView)
	s.agents = gather(s.agents[:0], predators, s.idx)
	w.flock(&a, s.agents)
	w.avoidObstacles(&a)

	prey := w.current[behavior.RolePrey]
	s.idx = w.neighbors(behavior.RolePrey, s.idx[:0], -1, a.Pos, a.FieldOfView)
	s.agents = gather(s.agents[:0], prey, s.idx)
	behavior.Attack(&a, s.agents, w.cfg.Lookahead, w.integrator.Bounds.Center(), w.cfg.CenterWeight)

	w.integrator.Integrate(&a, rng)
	return a
}

func (w *World) flock(a *behavior.Agent, neighbors []behavior.Agent) {
	behavior.Cohesion(a, neighbors)
	behavior.Alignment(a, neighbors)
	behavior.Separation(a, neighbors, w.cfg.MinDistance)
}

// avoidObstacles reacts to every obstacle whose center is in the agent's
// field of view.
func (w *World) avoidObstacles(a *behavior.Agent) {
	for _, o := range w.obstacles {
		if !Within(a.Pos, o.Center(), a.FieldOfView) {
			continue
		}
		if w.cfg.HardAvoidDistance > 0 {
			behavior.AvoidObstacleHard(a, o, w.cfg.HardAvoidDistance)
		} else {
			behavior.AvoidObstacle(a, o)
		}
	}
}

func (w *World) neighbors(r behavior.Role, dst []int, self int, pos geometry.Vector2D, radius float64) []int {
	if g := w.grids[r]; g != nil {
		return g.neighbors(dst, self, pos, w.current[r], radius)
	}
	return Neighbors(dst, self, pos, w.current[r], radius)
}

func (w *World) nearest(s *scratch, r behavior.Role, pos geometry.Vector2D, radius float64) int {
	if g := w.grids[r]; g != nil {
		s.idx = g.neighbors(s.idx[:0], -1, pos, w.current[r], radius)
		return nearestOf(pos, w.current[r], s.idx)
	}
	return NearestWithin(pos, w.current[r], radius)
}

// capture removes from the next prey buffer every prey that ended the tick
// within CaptureRadius of a predator. Order of the survivors is preserved.
func (w *World) capture() []uint32 {
	prey := w.next[behavior.RolePrey]
	predators := w.next[behavior.RolePredator]
	if len(prey) == 0 || len(predators) == 0 {
		return nil
	}

	var removed []uint32
	kept := prey[:0]
	for _, p := range prey {
		if caught(p.Pos, predators, w.cfg.CaptureRadius) {
			removed = append(removed, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	w.next[behavior.RolePrey] = kept

	if len(removed) > 0 {
		w.captured += len(removed)
		w.logger.Debugf("tick %d: captured prey %v, %d left", w.tick, removed, len(kept))
	}
	return removed
}

func caught(pos geometry.Vector2D, predators []behavior.Agent, radius float64) bool {
	for i := range predators {
		if Within(pos, predators[i].Pos, radius) {
			return true
		}
	}
	return false
}

func resize(buf []behavior.Agent, n int) []behavior.Agent {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]behavior.Agent, n)
}
