// CursorOverlay mirrors the X server's cursor image into a GL texture so
// CompositorCore can draw it above the scene, since reparenting window
// managers composite the pointer themselves once redirection hides the
// hardware cursor plane. Grounded on xgb/xfixes's DisplayCursor/
// GetCursorImage pair, the same extension x11core.Core already probes.
package compositor

import (
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/fenestra-wm/fenestra/internal/x11core"
)

// CursorOverlay holds the last-mirrored cursor image and its GL texture.
type CursorOverlay struct {
	core *x11core.Core

	x, y           int16
	width, height  uint16
	xhot, yhot     uint16
	serial         uint32
	dirty          bool
	visible        bool

	texture uint32
	hasTex  bool
}

// NewCursorOverlay subscribes to XFixes CursorNotify on the root, per
// §4.K's "on creation" step.
func NewCursorOverlay(core *x11core.Core) (*CursorOverlay, error) {
	co := &CursorOverlay{core: core, visible: true}
	if !core.Ext.XFixes {
		return co, nil
	}
	const cursorNotifyMask = 1 // XFixesDisplayCursorNotifyMask
	if err := xfixes.SelectCursorInputChecked(core.Conn, core.Root, cursorNotifyMask).Check(); err != nil {
		return nil, err
	}
	return co, nil
}

// NoteNotify records that the cursor changed shape; the next Update call
// will re-fetch the image only if the serial actually differs.
func (co *CursorOverlay) NoteNotify() {
	co.dirty = true
}

// Update re-reads the cursor image from the server when dirty, per §4.K:
// {x,y,w,h,xhot,yhot,serial,pixels[]} in ARGB32, server-native byte order.
// Returns true if the mirror's pixel contents actually changed.
func (co *CursorOverlay) Update() bool {
	if !co.dirty || !co.core.Ext.XFixes {
		return false
	}
	co.dirty = false

	reply, err := xfixes.GetCursorImage(co.core.Conn).Reply()
	if err != nil {
		return false
	}
	if reply.CursorSerial == co.serial {
		co.x, co.y = reply.X, reply.Y
		return false
	}

	co.serial = reply.CursorSerial
	co.x, co.y = reply.X, reply.Y
	co.width, co.height = reply.Width, reply.Height
	co.xhot, co.yhot = reply.XHot, reply.YHot

	pixels := make([]byte, int(reply.Width)*int(reply.Height)*4)
	for i, px := range reply.CursorImage {
		o := i * 4
		// CursorImage is ARGB32 packed little-endian per pixel on the wire;
		// GL_BGRA/UNSIGNED_BYTE consumes it without a software byte-swap.
		pixels[o+0] = byte(px)
		pixels[o+1] = byte(px >> 8)
		pixels[o+2] = byte(px >> 16)
		pixels[o+3] = byte(px >> 24)
	}

	if !co.hasTex {
		gl.GenTextures(1, &co.texture)
		co.hasTex = true
	}
	gl.BindTexture(gl.TEXTURE_2D, co.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(reply.Width), int32(reply.Height), 0,
		gl.BGRA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return true
}

// SetPosition updates the cursor's root-relative hotspot-adjusted position
// from an UpdateCursor Bridge command.
func (co *CursorOverlay) SetPosition(x, y int16, visible bool) {
	co.x, co.y = x, y
	co.visible = visible
}

// Quad returns the rectangle to draw the cursor texture at, offset by its
// hotspot, or ok=false when nothing has been captured yet.
func (co *CursorOverlay) Quad() (rect Rect, texture uint32, ok bool) {
	if !co.hasTex || !co.visible || co.width == 0 {
		return Rect{}, 0, false
	}
	return Rect{
		X: co.x - int16(co.xhot), Y: co.y - int16(co.yhot),
		Width: co.width, Height: co.height,
	}, co.texture, true
}
