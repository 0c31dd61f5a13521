package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

const tolerance = 1e-9

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1024))
}

func testIntegrator(policy BoundaryPolicy) *Integrator {
	return &Integrator{
		Bounds:       Bounds{Width: 600, Height: 400, Border: 30},
		Policy:       policy,
		CenterWeight: 150,
	}
}

func agentAt(x, y, vx, vy, maxSpeed float64) behavior.Agent {
	return behavior.Agent{
		Pos:      geometry.Vector2D{X: x, Y: y},
		Vel:      geometry.Vector2D{X: vx, Y: vy},
		MaxSpeed: maxSpeed,
	}
}

func TestIntegrate_SpeedLimitIsTrueMagnitude(t *testing.T) {
	in := testIntegrator(BoundaryWrap)
	rng := testRand()

	a := agentAt(300, 200, 30, 40, 8)
	in.Integrate(&a, rng)
	if s := a.Vel.Len(); s > 8+tolerance {
		t.Errorf("speed after integration = %v; want <= 8", s)
	}
	// direction is preserved: 3:4
	if math.Abs(a.Vel.X-4.8) > tolerance || math.Abs(a.Vel.Y-6.4) > tolerance {
		t.Errorf("clamped velocity = %v; want (4.8, 6.4)", a.Vel)
	}
	if !a.Pos.Eq(geometry.Vector2D{X: 304.8, Y: 206.4}) {
		t.Errorf("position = %v; want moved by the clamped velocity", a.Pos)
	}
}

func TestIntegrate_SpeedNeverExceedsMax(t *testing.T) {
	in := testIntegrator(BoundaryBounce)
	in.IdleSpeed = 2
	rng := testRand()
	for i := 0; i < 1000; i++ {
		a := agentAt(rng.Float64()*600, rng.Float64()*400, (rng.Float64()-0.5)*100, (rng.Float64()-0.5)*100, 1+rng.Float64()*10)
		in.Integrate(&a, rng)
		if s := a.Vel.Len(); s > a.MaxSpeed+tolerance {
			t.Fatalf("case %d: speed %v exceeds max %v", i, s, a.MaxSpeed)
		}
	}
}

func TestIntegrate_Wrap(t *testing.T) {
	tests := []struct {
		name    string
		agent   behavior.Agent
		wantPos geometry.Vector2D
	}{
		{"RightEdge", agentAt(601, 100, 3, 0, 8), geometry.Vector2D{X: 3, Y: 100}},
		{"LeftEdge", agentAt(-1, 100, -3, 0, 8), geometry.Vector2D{X: 597, Y: 100}},
		{"BottomEdge", agentAt(100, 405, 0, 4, 8), geometry.Vector2D{X: 100, Y: 4}},
		{"TopEdge", agentAt(100, -2, 0, -4, 8), geometry.Vector2D{X: 100, Y: 396}},
		{"OutsideMovingBack", agentAt(601, 100, -3, 0, 8), geometry.Vector2D{X: 598, Y: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testIntegrator(BoundaryWrap)
			a := tt.agent
			vel := a.Vel
			in.Integrate(&a, testRand())
			if !a.Pos.Eq(tt.wantPos) {
				t.Errorf("position = %v; want %v", a.Pos, tt.wantPos)
			}
			if a.Vel != vel {
				t.Errorf("wrap changed velocity %v -> %v", vel, a.Vel)
			}
		})
	}
}

func TestWrapAxis(t *testing.T) {
	if got := wrapAxis(600.5, 1, 600); got != 0 {
		t.Errorf("wrapAxis past the far edge = %v; want 0", got)
	}
	if got := wrapAxis(-0.5, -1, 600); got != 600 {
		t.Errorf("wrapAxis past the near edge = %v; want 600", got)
	}
	if got := wrapAxis(300, 1, 600); got != 300 {
		t.Errorf("wrapAxis inside = %v; want 300", got)
	}
}

func TestBounceAxis(t *testing.T) {
	rng := testRand()
	for i := 0; i < 500; i++ {
		v := -(0.1 + rng.Float64()*8)
		got := bounceAxis(10, v, 30, 600, rng)
		if got < 0 {
			t.Fatalf("bounce near 0 kept pointing out: %v -> %v", v, got)
		}
		if math.Abs(got) > math.Abs(v) {
			t.Fatalf("bounce gained energy: %v -> %v", v, got)
		}

		v = -v
		got = bounceAxis(590, v, 30, 600, rng)
		if got > 0 {
			t.Fatalf("bounce near the far edge kept pointing out: %v -> %v", v, got)
		}
		if math.Abs(got) > math.Abs(v) {
			t.Fatalf("bounce gained energy: %v -> %v", v, got)
		}
	}

	// heading back inside is left alone
	if got := bounceAxis(10, 2, 30, 600, rng); got != 2 {
		t.Errorf("bounceAxis heading inside = %v; want 2", got)
	}
}

func TestIntegrate_BouncePointsBackInside(t *testing.T) {
	in := testIntegrator(BoundaryBounce)
	a := agentAt(5, 395, -6, 5, 8)
	in.Integrate(&a, testRand())
	if a.Vel.X < 0 || a.Vel.Y > 0 {
		t.Errorf("velocity after bounce = %v; want pointing back inside", a.Vel)
	}
}

func TestIntegrate_IdleNudge(t *testing.T) {
	in := testIntegrator(BoundaryWrap)
	in.IdleSpeed = 2
	a := agentAt(0, 0, 0, 0, 8)
	in.Integrate(&a, testRand())

	want := geometry.Vector2D{X: 300.0 / 150, Y: 200.0 / 150}
	if !a.Vel.Eq(want) {
		t.Errorf("idle agent velocity = %v; want %v", a.Vel, want)
	}
}

func TestIntegrate_ObstacleRebound(t *testing.T) {
	in := testIntegrator(BoundaryBounce)
	in.Obstacles = []behavior.Obstacle{{Pos: geometry.Vector2D{X: 100, Y: 100}, HalfWidth: 15}}
	in.Rebound = true

	a := agentAt(95, 110, 6, 0, 8) // lands at (101, 110), inside the box
	in.Integrate(&a, testRand())
	if a.Vel.X >= 0 {
		t.Errorf("rebound velocity = %v; want reversed", a.Vel)
	}
	if s := math.Abs(a.Vel.X); s < 0.1*6-tolerance || s >= 0.9*6 {
		t.Errorf("rebound speed = %v; want in [0.6, 5.4)", s)
	}

	in.Rebound = false
	b := agentAt(95, 110, 6, 0, 8)
	in.Integrate(&b, testRand())
	if b.Vel.X != 6 {
		t.Errorf("rebound disabled but velocity changed to %v", b.Vel)
	}
}
