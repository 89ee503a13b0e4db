package shell

import (
	"testing"

	"github.com/fenestra-wm/fenestra/internal/compositor"
	"github.com/fenestra-wm/fenestra/internal/config"
)

func TestPanelRenderPositions(t *testing.T) {
	screen := compositor.Rect{Width: 1920, Height: 1080}
	cases := []struct {
		pos  config.PanelPosition
		want compositor.Rect
	}{
		{config.PanelTop, compositor.Rect{X: 0, Y: 0, Width: 1920, Height: 28}},
		{config.PanelBottom, compositor.Rect{X: 0, Y: 1080 - 28, Width: 1920, Height: 28}},
		{config.PanelLeft, compositor.Rect{X: 0, Y: 0, Width: 28, Height: 1080}},
		{config.PanelRight, compositor.Rect{X: 1920 - 28, Y: 0, Width: 28, Height: 1080}},
	}
	for _, tc := range cases {
		p := NewPanel(config.Panel{Height: 28, Position: tc.pos, Opacity: 1, Color: [3]uint8{1, 2, 3}})
		quads := p.Render(screen)
		if len(quads) != 1 {
			t.Fatalf("position %v: got %d quads, want 1", tc.pos, len(quads))
		}
		if quads[0].Rect != tc.want {
			t.Errorf("position %v: rect = %+v, want %+v", tc.pos, quads[0].Rect, tc.want)
		}
	}
}

func TestPanelRenderZeroHeightHidesIt(t *testing.T) {
	p := NewPanel(config.Panel{Height: 0})
	if quads := p.Render(compositor.Rect{Width: 100, Height: 100}); quads != nil {
		t.Errorf("zero-height panel should render nothing, got %v", quads)
	}
}

func TestLogoutDialogHiddenByDefault(t *testing.T) {
	d := NewLogoutDialog()
	if quads := d.Render(compositor.Rect{Width: 800, Height: 600}); quads != nil {
		t.Error("logout dialog must render nothing while not visible")
	}
}

func TestLogoutDialogVisibleRendersScrimAndDialog(t *testing.T) {
	d := NewLogoutDialog()
	d.Visible = true
	quads := d.Render(compositor.Rect{Width: 800, Height: 600})
	if len(quads) != 2 {
		t.Fatalf("visible logout dialog should render scrim + dialog, got %d quads", len(quads))
	}
}
