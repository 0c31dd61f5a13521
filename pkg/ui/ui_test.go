package ui

import "testing"

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 5}
	tests := []struct {
		p    Pointer
		want bool
	}{
		{Pointer{X: 10, Y: 10}, true},
		{Pointer{X: 30, Y: 15}, true},
		{Pointer{X: 31, Y: 12}, false},
		{Pointer{X: 15, Y: 9}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v) = %v; want %v", tt.p, got, tt.want)
		}
	}
}

func TestToggle_FlipsOncePerPress(t *testing.T) {
	p := NewPanel("View", 0, 0, 200)
	tg := p.AddToggle("Pause", false)
	over := Pointer{X: tg.box.X + 2, Y: tg.box.Y + 2, Pressed: true}

	p.Update(over)
	p.Update(over) // still held
	if !tg.Value {
		t.Fatal("toggle did not switch on the first press")
	}

	over.Pressed = false
	p.Update(over)
	over.Pressed = true
	p.Update(over)
	if tg.Value {
		t.Error("second press should switch the toggle back")
	}

	p.Update(Pointer{X: 500, Y: 500, Pressed: true})
	if tg.Value {
		t.Error("a press outside the box changed the toggle")
	}
}

func TestButton_ClicksOncePerPress(t *testing.T) {
	p := NewPanel("View", 0, 0, 200)
	clicks := 0
	b := p.AddButton("Step", func() { clicks++ })
	over := Pointer{X: b.rect.X + 5, Y: b.rect.Y + 5, Pressed: true}

	for i := 0; i < 5; i++ {
		p.Update(over)
	}
	over.Pressed = false
	p.Update(over)
	over.Pressed = true
	p.Update(over)

	if clicks != 2 {
		t.Errorf("clicks = %d; want 2", clicks)
	}
}

func TestPanel_StacksWidgets(t *testing.T) {
	p := NewPanel("View", 10, 20, 200)
	first := p.AddToggle("a", false)
	second := p.AddToggle("b", false)
	btn := p.AddButton("c", nil)

	if second.box.Y != first.box.Y+first.Height() {
		t.Errorf("second toggle at y=%v; want %v", second.box.Y, first.box.Y+first.Height())
	}
	if btn.rect.Y != second.box.Y+second.Height() {
		t.Errorf("button at y=%v; want %v", btn.rect.Y, second.box.Y+second.Height())
	}
	if b := p.Bounds(); !b.Contains(Pointer{X: btn.rect.X + 1, Y: btn.rect.Y + btn.rect.H}) {
		t.Errorf("panel bounds %+v do not cover the last widget %+v", b, btn.rect)
	}
}
