// §4.E's pointer-driven drag contract: titlebar move, Alt+Button move/
// resize on the bare client, double-click-to-maximize, and button-chrome
// click handling. Grounded on other_examples' funkycode-marwind wm/wm.go
// ButtonPress/MotionNotify/ButtonRelease handlers, generalized to the
// titlebar-chrome and quadrant-inferred resize this specification adds.
package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
	"github.com/fenestra-wm/fenestra/internal/frame"
)

const (
	doubleClickWindowMs = 300
	doubleClickSlopPx   = 6
)

// lookupChrome resolves w to the managed client it belongs to, whether w is
// a client window itself or one of its chrome windows.
func (c *Controller) lookupChrome(w xproto.Window) (*client.Client, bool) {
	if cl, ok := c.clients[w]; ok {
		return cl, true
	}
	if owner, ok := c.chromeToID[w]; ok {
		for _, cl := range c.clients {
			if cl.Frame != nil && cl.Frame.Frame == owner {
				return cl, true
			}
		}
	}
	return nil, false
}

// handleButtonPress implements the titlebar/button/Alt+client press contract.
func (c *Controller) handleButtonPress(e xproto.ButtonPressEvent) {
	c.lastUserInteraction = e.Time
	cl, ok := c.lookupChrome(e.Event)
	if !ok {
		return
	}

	if cl.Frame != nil {
		ref := frame.FrameRef{FrameHandle: cl.Frame}
		if btn := ref.ButtonOf(e.Event); btn != frame.ButtonNone {
			// Deferred to ButtonRelease per §4.E: a button press alone does
			// nothing but claim the pointer grab implicitly.
			return
		}
		if e.Event == cl.Frame.Titlebar {
			c.shouldGrantFocus(cl, focusSourceUser, e.Time)
			c.setFocus(cl)

			if c.isDoubleClick(cl.ID, e.Time, e.RootX, e.RootY) {
				c.ToggleMaximize(cl)
				c.drag = dragState{}
				return
			}
			c.drag = dragState{
				kind: dragMove, window: cl.ID, startX: e.RootX, startY: e.RootY, startGeom: cl.Geometry,
				lastClickWindow: cl.ID, lastClickTime: e.Time, lastClickX: e.RootX, lastClickY: e.RootY,
			}
			return
		}
	}

	// Alt+Button on the bare client window: Button1 moves, Button3 resizes
	// with direction inferred from which quadrant of the window was struck.
	const modAlt = xproto.ModMask1
	if e.State&modAlt == 0 {
		return
	}
	switch e.Detail {
	case 1:
		c.setFocus(cl)
		c.drag = dragState{kind: dragMove, window: cl.ID, startX: e.RootX, startY: e.RootY, startGeom: cl.Geometry}
	case 3:
		c.setFocus(cl)
		c.drag = dragState{kind: quadrantResizeKind(cl, e.EventX, e.EventY), window: cl.ID,
			startX: e.RootX, startY: e.RootY, startGeom: cl.Geometry}
	}
}

// quadrantResizeKind infers a resize direction from where within cl's
// content area the pointer struck, split into quadrants around the center.
func quadrantResizeKind(cl *client.Client, x, y int16) dragKind {
	halfW, halfH := int16(cl.Geometry.Width/2), int16(cl.Geometry.Height/2)
	top, left := y < halfH, x < halfW
	switch {
	case top && left:
		return dragResizeNW
	case top && !left:
		return dragResizeNE
	case !top && left:
		return dragResizeSW
	default:
		return dragResizeSE
	}
}

// isDoubleClick reports whether (w, time, x, y) follows the controller's
// last recorded click on the same window within the 300ms/6px window.
func (c *Controller) isDoubleClick(w xproto.Window, t xproto.Timestamp, x, y int16) bool {
	if c.drag.lastClickWindow != w {
		return false
	}
	dt := int64(t) - int64(c.drag.lastClickTime)
	if dt < 0 || dt > doubleClickWindowMs {
		return false
	}
	dx, dy := int(x-c.drag.lastClickX), int(y-c.drag.lastClickY)
	return absInt(dx) <= doubleClickSlopPx && absInt(dy) <= doubleClickSlopPx
}

// handleMotionNotify applies the in-progress drag's delta to the starting
// geometry and pushes the new geometry to the Bridge.
func (c *Controller) handleMotionNotify(e xproto.MotionNotifyEvent) {
	if c.drag.kind == dragNone {
		return
	}
	cl, ok := c.clients[c.drag.window]
	if !ok {
		c.drag = dragState{}
		return
	}
	dx := e.RootX - c.drag.startX
	dy := e.RootY - c.drag.startY

	g := c.drag.startGeom
	switch c.drag.kind {
	case dragMove:
		g.X += dx
		g.Y += dy
	case dragResizeSE:
		g.Width = clampDim(int32(g.Width) + int32(dx))
		g.Height = clampDim(int32(g.Height) + int32(dy))
	case dragResizeSW:
		g.X += dx
		g.Width = clampDim(int32(g.Width) - int32(dx))
		g.Height = clampDim(int32(g.Height) + int32(dy))
	case dragResizeNE:
		g.Y += dy
		g.Width = clampDim(int32(g.Width) + int32(dx))
		g.Height = clampDim(int32(g.Height) - int32(dy))
	case dragResizeNW:
		g.X += dx
		g.Y += dy
		g.Width = clampDim(int32(g.Width) - int32(dx))
		g.Height = clampDim(int32(g.Height) - int32(dy))
	}
	g = c.clampToSizeHints(cl, g)
	c.applyGeometry(cl, g)
}

func clampDim(v int32) uint16 {
	if v < 1 {
		return 1
	}
	return uint16(v)
}

func (c *Controller) clampToSizeHints(cl *client.Client, g client.Geometry) client.Geometry {
	if cl.SizeHints.HasMin {
		if int(g.Width) < cl.SizeHints.MinWidth {
			g.Width = uint16(cl.SizeHints.MinWidth)
		}
		if int(g.Height) < cl.SizeHints.MinHeight {
			g.Height = uint16(cl.SizeHints.MinHeight)
		}
	}
	if cl.SizeHints.HasMax && cl.SizeHints.MaxWidth > 0 {
		if int(g.Width) > cl.SizeHints.MaxWidth {
			g.Width = uint16(cl.SizeHints.MaxWidth)
		}
		if int(g.Height) > cl.SizeHints.MaxHeight {
			g.Height = uint16(cl.SizeHints.MaxHeight)
		}
	}
	return g
}

// handleButtonRelease ends an in-progress drag, or fires the deferred
// chrome-button action (close/maximize/minimize) of the button window the
// release event is reported on.
func (c *Controller) handleButtonRelease(e xproto.ButtonReleaseEvent) {
	if c.drag.kind != dragNone && c.drag.window != 0 {
		c.drag = dragState{
			lastClickWindow: c.drag.window, lastClickTime: e.Time,
			lastClickX: e.RootX, lastClickY: e.RootY,
		}
		return
	}

	cl, ok := c.lookupChrome(e.Event)
	if !ok || cl.Frame == nil {
		return
	}
	ref := frame.FrameRef{FrameHandle: cl.Frame}
	switch ref.ButtonOf(e.Event) {
	case frame.ButtonClose:
		c.CloseClient(cl)
	case frame.ButtonMaximize:
		c.ToggleMaximize(cl)
	case frame.ButtonMinimize:
		c.Minimize(cl)
	}
}
