// Package shell implements ShellOverlay: the panel strip and logout
// confirmation dialog, both rendered by CompositorCore as colored
// rectangles through a narrow RectRenderer contract. Grounded on
// original_source/src/shell/panel.rs, logout.rs, and render.rs, whose
// deliberate separation from WM/compositor coupling (no input handling, no
// desktop-file scanning) is kept here too: this package only ever turns
// config and a screen rectangle into Quads.
package shell

import (
	"github.com/fenestra-wm/fenestra/internal/compositor"
	"github.com/fenestra-wm/fenestra/internal/config"
)

// Panel renders the always-on strip described by the config's panel block.
type Panel struct {
	cfg config.Panel
}

// NewPanel builds a Panel overlay from the configured block.
func NewPanel(cfg config.Panel) *Panel {
	return &Panel{cfg: cfg}
}

// Render implements compositor.RectRenderer: a single strip positioned per
// cfg.Position, colored and sized from the config block.
func (p *Panel) Render(screen compositor.Rect) []compositor.Quad {
	if p.cfg.Height <= 0 {
		return nil
	}
	h := uint16(p.cfg.Height)
	r, g, b := float32(p.cfg.Color[0])/255, float32(p.cfg.Color[1])/255, float32(p.cfg.Color[2])/255
	a := float32(p.cfg.Opacity)

	var rect compositor.Rect
	switch p.cfg.Position {
	case config.PanelBottom:
		rect = compositor.Rect{X: 0, Y: int16(screen.Height) - int16(h), Width: screen.Width, Height: h}
	case config.PanelLeft:
		rect = compositor.Rect{X: 0, Y: 0, Width: h, Height: screen.Height}
	case config.PanelRight:
		rect = compositor.Rect{X: int16(screen.Width) - int16(h), Y: 0, Width: h, Height: screen.Height}
	default:
		rect = compositor.Rect{X: 0, Y: 0, Width: screen.Width, Height: h}
	}
	return []compositor.Quad{{Rect: rect, R: r, G: g, B: b, A: a}}
}

// Reserved returns the screen-edge inset this panel occupies. The window
// manager's work-area calculation reads the same panel height from the
// config directly rather than calling this.
func (p *Panel) Reserved() int {
	return p.cfg.Height
}

// LogoutDialog is a centered confirmation rectangle, shown only while
// Visible is set (toggled by whatever SessionControl key binding triggers
// it; this package owns no input handling of its own).
type LogoutDialog struct {
	Visible bool
	width   uint16
	height  uint16
}

// NewLogoutDialog builds a fixed-size logout confirmation overlay.
func NewLogoutDialog() *LogoutDialog {
	return &LogoutDialog{width: 320, height: 120}
}

// Render draws the dialog centered on screen when Visible, and a dimming
// scrim behind it so it reads as modal.
func (d *LogoutDialog) Render(screen compositor.Rect) []compositor.Quad {
	if !d.Visible {
		return nil
	}
	scrim := compositor.Quad{
		Rect: compositor.Rect{X: 0, Y: 0, Width: screen.Width, Height: screen.Height},
		R: 0, G: 0, B: 0, A: 0.5,
	}
	cx := int16(screen.Width/2) - int16(d.width/2)
	cy := int16(screen.Height/2) - int16(d.height/2)
	dialog := compositor.Quad{
		Rect: compositor.Rect{X: cx, Y: cy, Width: d.width, Height: d.height},
		R: 0.15, G: 0.15, B: 0.17, A: 0.97,
	}
	return []compositor.Quad{scrim, dialog}
}
