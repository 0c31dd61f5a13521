// Package engine hosts a simulation.World inside a goakt actor so that the
// world is only ever touched from its mailbox.
package engine

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

// Observer receives every tick, in order, from the actor goroutine.
type Observer interface {
	Observe(res simulation.StepResult, snap *simulation.Snapshot)
}

// WorldActor owns the authoritative World.
type WorldActor struct {
	cfg        *simulation.Config
	world      *simulation.World
	goal       *geometry.Vector2D
	snapshotCh chan<- *simulation.Snapshot
	observers  []Observer

	// --- Benchmark Stats ---
	ticksSinceLog int
	lastLogTime   time.Time
}

// NewWorldActor creates the world logic unit. snapshotCh may be nil.
func NewWorldActor(cfg *simulation.Config, snapshotCh chan<- *simulation.Snapshot, observers ...Observer) *WorldActor {
	return &WorldActor{
		cfg:        cfg,
		snapshotCh: snapshotCh,
		observers:  observers,
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	world, err := simulation.NewWorld(w.cfg, ctx.ActorSystem().Logger())
	if err != nil {
		return err
	}
	w.world = world
	w.lastLogTime = time.Now()
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World %s started", ctx.Self().Name())
		w.pushSnapshot(w.world.Snapshot())

	case *wrapperspb.UInt32Value:
		for i := uint32(0); i < msg.GetValue(); i++ {
			if err := w.step(); err != nil {
				ctx.Logger().Errorf("tick %d failed, dropping the rest of the batch: %v", w.world.Tick()+1, err)
				break
			}
		}
		w.logBenchmarks(ctx)

	case *structpb.Struct:
		goal, err := parseGoal(msg)
		if err != nil {
			ctx.Logger().Warnf("ignoring goal: %v", err)
			return
		}
		w.goal = goal

	case *emptypb.Empty:
		ctx.Response(w.stats().toProto())

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) step() error {
	res, err := w.world.Step(w.goal)
	if err != nil {
		return err
	}
	w.ticksSinceLog++
	if w.snapshotCh == nil && len(w.observers) == 0 {
		return nil
	}
	snap := w.world.Snapshot()
	for _, o := range w.observers {
		o.Observe(res, snap)
	}
	w.pushSnapshot(snap)
	return nil
}

func (w *WorldActor) pushSnapshot(snap *simulation.Snapshot) {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | tick %d | flockers %d, prey %d, predators %d, captured %d",
			w.ticksSinceLog, w.world.Tick(),
			w.world.Count(behavior.RoleFlocker), w.world.Count(behavior.RolePrey),
			w.world.Count(behavior.RolePredator), w.world.Captured())
		w.ticksSinceLog = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) stats() Stats {
	return Stats{
		Tick:      w.world.Tick(),
		Flockers:  w.world.Count(behavior.RoleFlocker),
		Prey:      w.world.Count(behavior.RolePrey),
		Predators: w.world.Count(behavior.RolePredator),
		Captured:  w.world.Captured(),
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	if w.world == nil {
		return nil
	}
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.world.Tick())
	return nil
}
