package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelMargin = 10
	titleHeight = 24
)

// Panel stacks widgets vertically under a title.
type Panel struct {
	Title   string
	X, Y, W float64
	Widgets []Widget

	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates an empty panel at (x, y).
func NewPanel(title string, x, y, width float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		W:           width,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddToggle appends a checkbox and returns it so the caller can read Value.
func (p *Panel) AddToggle(label string, value bool) *Toggle {
	t := &Toggle{Label: label, Value: value}
	p.add(t)
	return t
}

// AddButton appends a button.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := &Button{Label: label, OnClick: onClick}
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	w.place(p.X+panelMargin, p.Y+p.Height()-panelMargin, p.W-2*panelMargin)
	p.Widgets = append(p.Widgets, w)
}

// Height returns the panel height including margins.
func (p *Panel) Height() float64 {
	h := float64(titleHeight + 2*panelMargin)
	for _, w := range p.Widgets {
		h += w.Height()
	}
	return h
}

// Bounds returns the screen area covered by the panel.
func (p *Panel) Bounds() Rect {
	return Rect{X: p.X, Y: p.Y, W: p.W, H: p.Height()}
}

// Update forwards the pointer to every widget.
func (p *Panel) Update(ptr Pointer) {
	for _, w := range p.Widgets {
		w.Update(ptr)
	}
}

// Draw renders the panel and all widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	b := p.Bounds()
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), p.BGColor, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+panelMargin), int(p.Y+panelMargin/2))
	for _, w := range p.Widgets {
		w.Draw(screen)
	}
}
