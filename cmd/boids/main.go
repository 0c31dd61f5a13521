// Command boids is an ebiten viewer for the flocking engine. Hold the left
// mouse button to make the flock follow the cursor; the panel in the top
// right corner pauses, single-steps and overlays perception radii.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/internal/engine"
	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids/pkg/ui"
)

var (
	whiteImage = ebiten.NewImage(3, 3)

	background    = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	obstacleColor = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	goalColor     = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	fovColor      = color.RGBA{R: 255, G: 80, B: 80, A: 60}
	radiusColor   = color.RGBA{R: 80, G: 120, B: 255, A: 40}

	// vertex colors per role
	roleColors = map[behavior.Role][3]float32{
		behavior.RoleFlocker:  {0.4, 0.8, 1},
		behavior.RolePrey:     {0.3, 1, 0.4},
		behavior.RolePredator: {1, 0.25, 0.25},
	}
)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx       context.Context
	engine    *engine.Engine
	cfg       *simulation.Config
	snapshots chan *simulation.Snapshot
	lastState *simulation.Snapshot

	goal    *geometry.Vector2D
	seeking bool

	// UI Controls
	panel         *ui.Panel
	widgetPause   *ui.Toggle
	widgetFOV     *ui.Toggle
	widgetRadius  *ui.Toggle
	stepRequested bool

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// Retrieve Latest State (Non-blocking), dropping stale frames
drain:
	for {
		select {
		case snap := <-g.snapshots:
			g.lastState = snap
		default:
			break drain
		}
	}

	ptr := ui.ReadPointer()
	g.panel.Update(ptr)

	if ptr.Pressed && !g.panel.Bounds().Contains(ptr) {
		p := geometry.Vector2D{X: ptr.X, Y: ptr.Y}
		if g.goal == nil || *g.goal != p {
			g.goal = &p
			if err := g.engine.SetGoal(g.ctx, p); err != nil {
				return err
			}
		}
		g.seeking = true
	} else if g.seeking {
		g.goal = nil
		g.seeking = false
		if err := g.engine.ClearGoal(g.ctx); err != nil {
			return err
		}
	}

	// Trigger Simulation Step
	if g.widgetPause.Value && !g.stepRequested {
		return nil
	}
	g.stepRequested = false
	return g.engine.Advance(g.ctx, 1)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if g.lastState == nil {
		return
	}

	for _, o := range g.lastState.Obstacles {
		size := float32(2 * o.HalfWidth)
		vector.FillRect(screen, float32(o.Pos.X), float32(o.Pos.Y), size, size, obstacleColor, true)
	}
	for _, pop := range [][]behavior.Agent{g.lastState.Flockers, g.lastState.Prey, g.lastState.Predators} {
		for i := range pop {
			a := &pop[i]
			if g.widgetFOV.Value {
				vector.StrokeCircle(screen, float32(a.Pos.X), float32(a.Pos.Y), float32(a.FieldOfView), 1, fovColor, true)
			}
			if g.widgetRadius.Value {
				vector.StrokeCircle(screen, float32(a.Pos.X), float32(a.Pos.Y), float32(g.cfg.FlockRadius), 1, radiusColor, true)
			}
			drawBoid(screen, a)
		}
	}
	if g.goal != nil {
		vector.StrokeCircle(screen, float32(g.goal.X), float32(g.goal.Y), 6, 1, goalColor, true)
	}

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nUpdate: %.2fms\n\nTick: %d\nFlockers: %d\nPrey: %d\nPredators: %d\nCaptured: %d",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.lastState.Tick,
		len(g.lastState.Flockers),
		len(g.lastState.Prey),
		len(g.lastState.Predators),
		g.lastState.Captured)
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)

	g.panel.Draw(screen)
}

func drawBoid(screen *ebiten.Image, b *behavior.Agent) {
	angle := b.Vel.Angle()
	size := 6.0
	if b.Role == behavior.RolePredator {
		size = 9
	}

	tipX := b.Pos.X + math.Cos(angle)*size
	tipY := b.Pos.Y + math.Sin(angle)*size
	rightX := b.Pos.X + math.Cos(angle+2.5)*(size-1)
	rightY := b.Pos.Y + math.Sin(angle+2.5)*(size-1)
	leftX := b.Pos.X + math.Cos(angle-2.5)*(size-1)
	leftY := b.Pos.Y + math.Sin(angle-2.5)*(size-1)

	c := roleColors[b.Role]
	vertex := func(x, y float64) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 1, SrcY: 1,
			ColorR: c[0], ColorG: c[1], ColorB: c[2], ColorA: 1,
		}
	}
	vertices := []ebiten.Vertex{vertex(tipX, tipY), vertex(rightX, rightY), vertex(leftX, leftY)}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }

func main() {
	configPath := flag.String("config", "", "world config file (.json, .yaml or .toml)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	cfg := simulation.DefaultConfig()
	if *configPath != "" {
		loaded, err := simulation.LoadConfig(*configPath)
		if err != nil {
			logger.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	ctx := context.Background()
	snapshots := make(chan *simulation.Snapshot, 10) // Buffer to avoid blocking
	eng, err := engine.Start(ctx, cfg, logger, snapshots)
	if err != nil {
		logger.Fatalf("starting engine: %v", err)
	}
	defer eng.Stop(ctx)

	g := &Game{
		ctx:       ctx,
		engine:    eng,
		cfg:       cfg,
		snapshots: snapshots,
	}

	g.panel = ui.NewPanel("View", cfg.WorldWidth-230, 10, 220)
	g.widgetPause = g.panel.AddToggle("Pause", false)
	g.panel.AddButton("Step", func() { g.stepRequested = true })
	g.widgetFOV = g.panel.AddToggle("Show field of view", false)
	g.widgetRadius = g.panel.AddToggle("Show flock radius", false)

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids: flock, prey and predators")
	if err := ebiten.RunGame(g); err != nil {
		logger.Error(err)
	}
}
