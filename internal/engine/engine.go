package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

const askTimeout = 5 * time.Second

// Engine is a running actor system with one WorldActor.
type Engine struct {
	System   actor.ActorSystem
	worldPID *actor.PID
}

// Start boots an actor system and spawns the world actor in it.
func Start(ctx context.Context, cfg *simulation.Config, logger log.Logger, snapshotCh chan<- *simulation.Snapshot, observers ...Observer) (*Engine, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	system, err := actor.NewActorSystem("BoidsWorld", actor.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting actor system: %w", err)
	}

	pid, err := system.Spawn(ctx, "world", NewWorldActor(cfg, snapshotCh, observers...))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("spawning world: %w", err)
	}
	return &Engine{System: system, worldPID: pid}, nil
}

// Advance queues n ticks. It does not wait for them to run.
func (e *Engine) Advance(ctx context.Context, n uint32) error {
	return actor.Tell(ctx, e.worldPID, Advance(n))
}

// SetGoal makes the flockers seek p from the next tick on.
func (e *Engine) SetGoal(ctx context.Context, p geometry.Vector2D) error {
	return actor.Tell(ctx, e.worldPID, SetGoal(p))
}

// ClearGoal stops goal seeking.
func (e *Engine) ClearGoal(ctx context.Context) error {
	return actor.Tell(ctx, e.worldPID, ClearGoal())
}

// Stats waits for every message queued before it and reports the world
// state.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	reply, err := actor.Ask(ctx, e.worldPID, StatsRequest(), askTimeout)
	if err != nil {
		return Stats{}, fmt.Errorf("asking world stats: %w", err)
	}
	return ParseStats(reply)
}

// Stop shuts the actor system down.
func (e *Engine) Stop(ctx context.Context) error {
	return e.System.Stop(ctx)
}
