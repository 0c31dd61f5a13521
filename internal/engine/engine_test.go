package engine

import (
	"context"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

type recorder struct {
	ticks   []uint64
	removed int
}

func (r *recorder) Observe(res simulation.StepResult, snap *simulation.Snapshot) {
	r.ticks = append(r.ticks, snap.Tick)
	r.removed += len(res.Removed)
}

func smallConfig() *simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.NumFlockers = 20
	cfg.NumPrey = 10
	cfg.NumPredators = 2
	cfg.NumObstacles = 3
	cfg.Seed = 5
	return cfg
}

func TestEngine_AdvanceAndStats(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	snapshots := make(chan *simulation.Snapshot, 100)

	e, err := Start(ctx, smallConfig(), nil, snapshots, rec)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer e.Stop(ctx)

	if err := e.SetGoal(ctx, geometry.Vector2D{X: 100, Y: 100}); err != nil {
		t.Fatal(err)
	}
	if err := e.Advance(ctx, 15); err != nil {
		t.Fatal(err)
	}
	if err := e.ClearGoal(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.Advance(ctx, 10); err != nil {
		t.Fatal(err)
	}

	stats, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Tick != 25 {
		t.Errorf("Tick = %d; want 25", stats.Tick)
	}
	if stats.Flockers != 20 || stats.Predators != 2 {
		t.Errorf("populations = %+v; want 20 flockers and 2 predators", stats)
	}
	if stats.Prey+stats.Captured != 10 {
		t.Errorf("prey %d + captured %d; want 10", stats.Prey, stats.Captured)
	}

	if len(rec.ticks) != 25 || rec.ticks[0] != 1 || rec.ticks[24] != 25 {
		t.Errorf("observer saw ticks %v; want 1..25 in order", rec.ticks)
	}
	if rec.removed != stats.Captured {
		t.Errorf("observer counted %d removals; stats report %d", rec.removed, stats.Captured)
	}
	if len(snapshots) == 0 {
		t.Error("no snapshot was pushed")
	}
}

func TestEngine_SameSeedSameStats(t *testing.T) {
	ctx := context.Background()
	run := func() Stats {
		e, err := Start(ctx, smallConfig(), nil, nil)
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		defer e.Stop(ctx)
		_ = e.Advance(ctx, 200)
		s, err := e.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed, different outcome: %+v vs %+v", a, b)
	}
}

func TestStart_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Prey.GoalWeight = 0
	e, err := Start(context.Background(), cfg, nil, nil)
	if err == nil {
		_ = e.Stop(context.Background())
		t.Fatal("Start() accepted an invalid config")
	}
}

func TestParseGoal(t *testing.T) {
	goal, err := parseGoal(SetGoal(geometry.Vector2D{X: 3, Y: -4}))
	if err != nil || goal == nil || !goal.Eq(geometry.Vector2D{X: 3, Y: -4}) {
		t.Errorf("parseGoal(SetGoal) = %v, %v", goal, err)
	}

	goal, err = parseGoal(ClearGoal())
	if err != nil || goal != nil {
		t.Errorf("parseGoal(ClearGoal) = %v, %v; want nil, nil", goal, err)
	}

	bad := &structpb.Struct{Fields: map[string]*structpb.Value{"x": structpb.NewStringValue("left")}}
	if _, err := parseGoal(bad); err == nil {
		t.Error("parseGoal accepted a non numeric goal")
	}
}

func TestParseStats(t *testing.T) {
	want := Stats{Tick: 42, Flockers: 3, Prey: 2, Predators: 1, Captured: 7}
	got, err := ParseStats(want.toProto())
	if err != nil || got != want {
		t.Errorf("ParseStats = %+v, %v; want %+v", got, err, want)
	}
	if _, err := ParseStats(wrapperspb.UInt32(1)); err == nil {
		t.Error("ParseStats accepted a wrong reply type")
	}
}
