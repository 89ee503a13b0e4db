// Per-event contracts for window lifecycle: MapRequest, UnmapNotify,
// DestroyNotify, ConfigureRequest/Notify, PropertyNotify. Grounded on
// other_examples' funkycode-marwind wm/wm.go dispatch and wm/frame.go's
// reparent/map/unmap/destroy operations, generalized to the decoration,
// Bridge-publishing and fullscreen-bypass-heuristic contract of §4.E.
package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/fenestra-wm/fenestra/internal/atoms"
	"github.com/fenestra-wm/fenestra/internal/bridge"
	"github.com/fenestra-wm/fenestra/internal/client"
	"github.com/fenestra-wm/fenestra/internal/frame"
)

// manageWindow brings w under management: builds a Client record,
// optionally a frame, publishes frame extents, maps the chrome and client,
// raises, tells the Bridge to start compositing it, and republishes
// _NET_CLIENT_LIST. startup is true during the initial scan, where w may
// already be mapped.
func (c *Controller) manageWindow(w xproto.Window, startup bool) {
	if existing, ok := c.clients[w]; ok {
		if !existing.Flags.Has(client.FlagMapped) {
			xproto.MapWindowChecked(c.core.Conn, w).Check()
			existing.Flags |= client.FlagMapped
		}
		return
	}

	geomReply, err := xproto.GetGeometry(c.core.Conn, xproto.Drawable(w)).Reply()
	if err != nil {
		log.Warn("GetGeometry for new window %d: %v", w, err)
		return
	}

	cl := client.New(w, client.Geometry{X: geomReply.X, Y: geomReply.Y, Width: geomReply.Width, Height: geomReply.Height})
	instance, class := c.atoms.WmClass(w)
	cl.Instance, cl.Class = instance, class
	cl.Title = c.atoms.WmName(w)
	cl.WindowType = c.atoms.GetWindowType(w)
	cl.TransientFor = c.atoms.TransientFor(w)
	cl.Workspace = c.ws.current
	cl.Layer = layerFor(cl)
	if hints, err := c.atoms.SizeHints(w); err == nil && hints != nil {
		cl.SizeHints = convertSizeHints(hints)
	}

	var motifDecorate *bool
	if dec, ok := c.atoms.ShouldDecorateFromMotifHints(w); ok {
		motifDecorate = &dec
	}
	decorate := frame.ShouldDecorate(cl.Class, cl.Instance, cl.Title, cl.WindowType, motifDecorate)

	if decorate {
		fh, err := c.frames.Create(w, cl.Geometry)
		if err != nil {
			log.Warn("creating frame for %d: %v", w, err)
		} else {
			cl.Frame = fh
			c.registerChrome(fh)
		}
	}

	c.updateFrameExtents(cl)

	c.bridge.MarkReparenting(w)
	xproto.MapWindowChecked(c.core.Conn, w).Check()
	cl.Flags |= client.FlagMapped

	c.clients[w] = cl
	c.raise(cl)
	c.core.Flush() // flush before telling the compositor, so it samples current geometry

	bridgeID := w
	if cl.Frame != nil {
		bridgeID = cl.Frame.Frame
	}
	c.bridge.Send(bridge.Command{Kind: bridge.AddWindow, Window: bridgeID, Layer: int(cl.Layer), ZIndex: cl.ZIndex,
		Geometry: c.rootGeometry(cl)})

	c.publishClientList()
	c.publishClientListStacking()

	if !startup {
		c.setFocus(cl)
	}
}

func (c *Controller) registerChrome(fh *client.FrameHandle) {
	for _, w := range []xproto.Window{fh.Frame, fh.Titlebar, fh.CloseBtn, fh.MinBtn, fh.MaxBtn} {
		c.chromeToID[w] = fh.Frame
		c.bridge.MarkFrameWindow(w)
	}
}

func (c *Controller) unregisterChrome(fh *client.FrameHandle) {
	for _, w := range []xproto.Window{fh.Frame, fh.Titlebar, fh.CloseBtn, fh.MinBtn, fh.MaxBtn} {
		delete(c.chromeToID, w)
		c.bridge.UnmarkFrameWindow(w)
	}
}

func convertSizeHints(h *icccm.NormalHints) client.SizeHints {
	sh := client.SizeHints{}
	if h.Flags&icccm.SizeHintPMinSize != 0 {
		sh.HasMin = true
		sh.MinWidth, sh.MinHeight = int(h.MinWidth), int(h.MinHeight)
	}
	if h.Flags&icccm.SizeHintPMaxSize != 0 {
		sh.HasMax = true
		sh.MaxWidth, sh.MaxHeight = int(h.MaxWidth), int(h.MaxHeight)
	}
	return sh
}

// updateFrameExtents writes _NET_FRAME_EXTENTS for cl: the configured
// border/titlebar insets when decorated, all-zero otherwise (fullscreen
// clients have no frame per the §3 invariant, so this naturally zeroes out
// on fullscreen entry).
func (c *Controller) updateFrameExtents(cl *client.Client) {
	var ext atoms.FrameExtents
	if cl.Frame != nil {
		deco := c.cfg.WindowManager.Decorations
		ext = atoms.FrameExtents{Left: deco.BorderWidth, Right: deco.BorderWidth, Top: deco.TitlebarHeight + deco.BorderWidth, Bottom: deco.BorderWidth}
	}
	c.atoms.UpdateFrameExtents(cl.ID, ext)
}

// handleUnmapNotify implements the UnmapNotify contract: ignored while
// mid-reparent, ignored for framed clients (DestroyNotify does the real
// cleanup), otherwise unmanage.
func (c *Controller) handleUnmapNotify(w xproto.Window) {
	if c.bridge.ConsumeReparenting(w) {
		return
	}
	cl, ok := c.clients[w]
	if !ok {
		return
	}
	if cl.Frame != nil {
		return
	}
	c.unmanage(cl)
}

// handleDestroyNotify cleans up client and frame resources, notifies the
// Bridge, recomputes the client list, and removes the window from focus
// history.
func (c *Controller) handleDestroyNotify(w xproto.Window) {
	if cl, ok := c.clients[w]; ok {
		c.unmanage(cl)
	}
}

func (c *Controller) unmanage(cl *client.Client) {
	bridgeID := cl.ID
	if cl.Frame != nil {
		bridgeID = cl.Frame.Frame
		c.unregisterChrome(cl.Frame)
		xproto.DestroyWindowChecked(c.core.Conn, cl.Frame.Frame).Check()
	}

	delete(c.clients, cl.ID)
	c.focus.forget(cl.ID)
	c.bridge.Send(bridge.Command{Kind: bridge.RemoveWindow, Window: bridgeID})

	if c.focus.focused != nil && *c.focus.focused == cl.ID {
		if prev, ok := c.focus.previous(cl.ID); ok {
			if prevClient, ok := c.clients[prev]; ok {
				c.setFocus(prevClient)
			}
		} else {
			c.setFocus(nil)
		}
	}

	c.publishClientList()
	c.publishClientListStacking()
}

// handleConfigureRequest grants the request verbatim per §4.E, then checks
// the fullscreen-bypass geometry heuristic.
func (c *Controller) handleConfigureRequest(e xproto.ConfigureRequestEvent) {
	cl, managed := c.clients[e.Window]

	var values []uint32
	var mask uint16
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(e.X))
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(e.Y))
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(e.Width))
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(e.Height))
	}
	if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(e.BorderWidth))
	}
	if e.ValueMask&xproto.ConfigWindowSibling != 0 {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(e.Sibling))
	}
	if e.ValueMask&xproto.ConfigWindowStackMode != 0 {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, uint32(e.StackMode))
	}
	xproto.ConfigureWindowChecked(c.core.Conn, e.Window, mask, values).Check()

	if !managed {
		return
	}

	if e.ValueMask&xproto.ConfigWindowX != 0 {
		cl.Geometry.X = e.X
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		cl.Geometry.Y = e.Y
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		cl.Geometry.Width = e.Width
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		cl.Geometry.Height = e.Height
	}
	c.pushGeometry(cl, false)
	c.maybeEnterBypassFullscreen(cl)
}

// maybeEnterBypassFullscreen applies the geometry-based fullscreen
// heuristic: a configure request whose size approximates the monitor, at a
// near-zero origin, on a client advertising _NET_WM_BYPASS_COMPOSITOR,
// triggers fullscreen entry.
func (c *Controller) maybeEnterBypassFullscreen(cl *client.Client) {
	if cl.Flags.Has(client.FlagFullscreen) {
		return
	}
	bypass, ok := c.atoms.CheckBypassCompositor(cl.ID)
	if !ok || !bypass {
		return
	}
	screenW, screenH := int(c.core.Screen.WidthInPixels), int(c.core.Screen.HeightInPixels)
	const tolerance = 4
	if absInt(int(cl.Geometry.X)) <= tolerance && absInt(int(cl.Geometry.Y)) <= tolerance &&
		absInt(int(cl.Geometry.Width)-screenW) <= tolerance && absInt(int(cl.Geometry.Height)-screenH) <= tolerance {
		c.EnterFullscreen(cl)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pushGeometry tells the Bridge the CWindow backing cl moved, resized, or
// restacked, flushing first so the compositor never samples a stale frame
// boundary.
func (c *Controller) pushGeometry(cl *client.Client, damaged bool) {
	w := cl.ID
	if cl.Frame != nil {
		w = cl.Frame.Frame
	}
	c.core.Flush()
	c.bridge.Send(bridge.Command{Kind: bridge.UpdateWindowGeometry, Window: w, Layer: int(cl.Layer), ZIndex: cl.ZIndex,
		Geometry: c.rootGeometry(cl)})
	if damaged {
		c.bridge.Send(bridge.Command{Kind: bridge.UpdateWindowDamage, Window: w})
	}
}

// rootGeometry computes the root-relative rectangle CompositorCore should
// sample: the frame's outer extent when framed, the client's own geometry
// otherwise (e.g. while fullscreen and unredirected).
func (c *Controller) rootGeometry(cl *client.Client) bridge.Geometry {
	if cl.Frame == nil {
		return bridge.Geometry{X: cl.Geometry.X, Y: cl.Geometry.Y, Width: cl.Geometry.Width, Height: cl.Geometry.Height}
	}
	deco := c.cfg.WindowManager.Decorations
	fg := cl.FrameGeometry(deco.BorderWidth, deco.TitlebarHeight)
	return bridge.Geometry{X: fg.X, Y: fg.Y, Width: fg.Width, Height: fg.Height}
}

// handlePropertyNotify refreshes cached title/state when a property the
// controller reasons about changes out from under it.
func (c *Controller) handlePropertyNotify(e xproto.PropertyNotifyEvent) {
	cl, ok := c.clients[e.Window]
	if !ok {
		return
	}
	switch c.atomName(e.Atom) {
	case "_NET_WM_NAME", "WM_NAME":
		cl.Title = c.atoms.WmName(e.Window)
	case "_NET_WM_BYPASS_COMPOSITOR":
		c.maybeEnterBypassFullscreen(cl)
	case "WM_NORMAL_HINTS":
		if hints, err := c.atoms.SizeHints(e.Window); err == nil && hints != nil {
			cl.SizeHints = convertSizeHints(hints)
		}
	}
}

func (c *Controller) atomName(a xproto.Atom) string {
	reply, err := xproto.GetAtomName(c.core.Conn, a).Reply()
	if err != nil {
		return ""
	}
	return reply.Name
}
