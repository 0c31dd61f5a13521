// Package ui holds the few widgets the viewer draws on top of the world.
// Widgets never poll ebiten for input themselves: the caller reads the
// cursor once per frame and hands it over as a Pointer.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Pointer is the cursor state of one frame.
type Pointer struct {
	X, Y    float64
	Pressed bool
}

// ReadPointer samples the mouse.
func ReadPointer() Pointer {
	x, y := ebiten.CursorPosition()
	return Pointer{
		X:       float64(x),
		Y:       float64(y),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	}
}

// Rect is an axis aligned screen rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the pointer is over r.
func (r Rect) Contains(p Pointer) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Widget is anything the Panel can lay out.
type Widget interface {
	Update(p Pointer)
	Draw(screen *ebiten.Image)
	Height() float64
	place(x, y, w float64)
}

// latch turns a held button into a single click.
type latch struct {
	down bool
}

// press returns true on the first frame the pointer is pressed over r.
func (l *latch) press(r Rect, p Pointer) bool {
	if !p.Pressed || !r.Contains(p) {
		l.down = false
		return false
	}
	if l.down {
		return false
	}
	l.down = true
	return true
}

// Toggle is a labelled checkbox.
type Toggle struct {
	Label string
	Value bool

	box   Rect
	latch latch
}

const toggleSize = 16

func (t *Toggle) Update(p Pointer) {
	if t.latch.press(t.box, p) {
		t.Value = !t.Value
	}
}

func (t *Toggle) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(t.box.X), float32(t.box.Y), float32(t.box.W), float32(t.box.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	if t.Value {
		vector.FillRect(screen,
			float32(t.box.X+2), float32(t.box.Y+2), float32(t.box.W-4), float32(t.box.H-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255}, true)
	}
	ebitenutil.DebugPrintAt(screen, t.Label, int(t.box.X+t.box.W+8), int(t.box.Y))
}

func (t *Toggle) Height() float64 { return toggleSize + 6 }

func (t *Toggle) place(x, y, _ float64) {
	t.box = Rect{X: x, Y: y, W: toggleSize, H: toggleSize}
}

// Button runs OnClick once per press.
type Button struct {
	Label   string
	OnClick func()

	rect  Rect
	over  bool
	latch latch
}

func (b *Button) Update(p Pointer) {
	b.over = b.rect.Contains(p)
	if b.latch.press(b.rect, p) && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := color.RGBA{R: 80, G: 120, B: 180, A: 255}
	if b.over {
		bg = color.RGBA{R: 100, G: 150, B: 220, A: 255}
	}
	vector.FillRect(screen,
		float32(b.rect.X), float32(b.rect.Y), float32(b.rect.W), float32(b.rect.H), bg, true)
	vector.StrokeRect(screen,
		float32(b.rect.X), float32(b.rect.Y), float32(b.rect.W), float32(b.rect.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.rect.X+8), int(b.rect.Y+4))
}

func (b *Button) Height() float64 { return 28 }

func (b *Button) place(x, y, w float64) {
	b.rect = Rect{X: x, Y: y, W: w, H: 22}
}
