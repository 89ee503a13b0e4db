// WMController's §4.E state-transition contract: maximize, fullscreen,
// minimize/restore, and the _NET_WM_STATE / _NET_MOVERESIZE_WINDOW /
// _NET_CLOSE_WINDOW client-message handlers that drive them. Grounded on
// original_source/src/wm/state.rs for the restore-geometry bookkeeping and
// other_examples' funkycode-marwind wm/wm.go for the ConfigureWindow
// sequencing around a geometry change.
package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/atoms"
	"github.com/fenestra-wm/fenestra/internal/client"
	"github.com/fenestra-wm/fenestra/internal/frame"
)

// workArea returns the usable root rectangle, i.e. the full screen minus
// any panel reservation, per §4.G.
func (c *Controller) workArea() client.Geometry {
	screenW := c.core.Screen.WidthInPixels
	screenH := c.core.Screen.HeightInPixels
	g := client.Geometry{X: 0, Y: 0, Width: screenW, Height: screenH}
	h := uint16(c.cfg.Panel.Height)
	if h == 0 {
		return g
	}
	switch c.cfg.Panel.Position {
	case "bottom":
		g.Height -= h
	case "left":
		g.X += int16(h)
		g.Width -= h
	case "right":
		g.Width -= h
	default: // top
		g.Y += int16(h)
		g.Height -= h
	}
	return g
}

func (c *Controller) saveRestoreGeometry(cl *client.Client) {
	if cl.RestoreGeometry == nil {
		g := cl.Geometry
		cl.RestoreGeometry = &g
	}
}

// applyGeometry sets cl's content geometry both at the X level (resizing
// its frame if any) and in the Client record, then pushes it to the Bridge.
func (c *Controller) applyGeometry(cl *client.Client, g client.Geometry) {
	cl.Geometry = g
	x, y := g.X, g.Y
	if cl.Frame != nil {
		c.frames.MoveTo(cl.Frame, g.X-int16(c.cfg.WindowManager.Decorations.BorderWidth),
			g.Y-int16(c.cfg.WindowManager.Decorations.TitlebarHeight+c.cfg.WindowManager.Decorations.BorderWidth))
		c.frames.Resize(cl.Frame, g.Width, g.Height)
		// A framed client is a child of its frame, so it sits at the fixed
		// decoration offset rather than at root coordinates.
		x = int16(c.cfg.WindowManager.Decorations.BorderWidth)
		y = int16(c.cfg.WindowManager.Decorations.TitlebarHeight + c.cfg.WindowManager.Decorations.BorderWidth)
	}
	xproto.ConfigureWindowChecked(c.core.Conn, cl.ID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(uint16(x)), uint32(uint16(y)), uint32(g.Width), uint32(g.Height)}).Check()
	c.pushGeometry(cl, true)
}

// ToggleMaximize implements §4.E's maximize contract: geometry snaps to the
// work area minus decoration insets, both MAXIMIZED_VERT/HORZ atoms are
// set, and the pre-maximize geometry is restored on the second call.
func (c *Controller) ToggleMaximize(cl *client.Client) {
	if cl.Flags.Has(client.FlagMaximized) {
		c.restoreFromMaximized(cl)
		return
	}
	if cl.Flags.Has(client.FlagFullscreen) {
		return
	}
	c.saveRestoreGeometry(cl)

	area := c.workArea()
	deco := c.cfg.WindowManager.Decorations
	inset := client.Geometry{
		X:      area.X + int16(deco.BorderWidth),
		Y:      area.Y + int16(deco.TitlebarHeight+deco.BorderWidth),
		Width:  area.Width - uint16(2*deco.BorderWidth),
		Height: area.Height - uint16(deco.TitlebarHeight+2*deco.BorderWidth),
	}
	cl.Flags |= client.FlagMaximized
	c.applyGeometry(cl, inset)
	c.atoms.SetWindowState(cl.ID, []atoms.State{atoms.StateMaximizedVert, atoms.StateMaximizedHorz}, nil)
}

func (c *Controller) restoreFromMaximized(cl *client.Client) {
	cl.Flags &^= client.FlagMaximized
	if cl.RestoreGeometry != nil {
		g := *cl.RestoreGeometry
		cl.RestoreGeometry = nil
		c.applyGeometry(cl, g)
	}
	c.atoms.SetWindowState(cl.ID, nil, []atoms.State{atoms.StateMaximizedVert, atoms.StateMaximizedHorz})
}

// EnterFullscreen implements §4.E's fullscreen-entry contract: the frame is
// torn down (fullscreen clients have none, per the §3 invariant), geometry
// is set to the full monitor rectangle, and FULLSCREEN plus ABOVE are set.
func (c *Controller) EnterFullscreen(cl *client.Client) {
	if cl.Flags.Has(client.FlagFullscreen) {
		return
	}
	c.saveRestoreGeometry(cl)

	if cl.Frame != nil {
		fh := cl.Frame
		c.unregisterChrome(fh)
		c.frames.Destroy(fh, cl.ID, 0, 0)
		cl.Frame = nil
	}

	cl.Flags |= client.FlagFullscreen
	cl.Layer = client.LayerFullscreen
	screen := client.Geometry{X: 0, Y: 0, Width: c.core.Screen.WidthInPixels, Height: c.core.Screen.HeightInPixels}
	cl.Geometry = screen
	xproto.ConfigureWindowChecked(c.core.Conn, cl.ID,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{0, 0, uint32(screen.Width), uint32(screen.Height)}).Check()

	c.updateFrameExtents(cl)
	c.atoms.SetWindowState(cl.ID, []atoms.State{atoms.StateFullscreen, atoms.StateAbove}, nil)
	c.raise(cl)
}

// ExitFullscreen reverses EnterFullscreen: re-decorates if the client's
// decoration policy calls for it, restores the pre-fullscreen geometry, and
// clears FULLSCREEN/ABOVE.
func (c *Controller) ExitFullscreen(cl *client.Client) {
	if !cl.Flags.Has(client.FlagFullscreen) {
		return
	}
	cl.Flags &^= client.FlagFullscreen
	cl.Layer = layerFor(cl)

	var motifDecorate *bool
	if dec, ok := c.atoms.ShouldDecorateFromMotifHints(cl.ID); ok {
		motifDecorate = &dec
	}
	if frame.ShouldDecorate(cl.Class, cl.Instance, cl.Title, cl.WindowType, motifDecorate) {
		if fh, err := c.frames.Create(cl.ID, cl.Geometry); err == nil {
			cl.Frame = fh
			c.registerChrome(fh)
		} else {
			log.Warn("re-creating frame on fullscreen exit for %d: %v", cl.ID, err)
		}
	}

	if cl.RestoreGeometry != nil {
		g := *cl.RestoreGeometry
		cl.RestoreGeometry = nil
		c.applyGeometry(cl, g)
	} else {
		c.pushGeometry(cl, true)
	}

	c.updateFrameExtents(cl)
	c.atoms.SetWindowState(cl.ID, nil, []atoms.State{atoms.StateFullscreen, atoms.StateAbove})
	c.raise(cl)
}

// ToggleFullscreen dispatches to EnterFullscreen/ExitFullscreen.
func (c *Controller) ToggleFullscreen(cl *client.Client) {
	if cl.Flags.Has(client.FlagFullscreen) {
		c.ExitFullscreen(cl)
	} else {
		c.EnterFullscreen(cl)
	}
}

// Minimize withdraws cl from view without destroying it: it's unmapped at
// the X level (suppressing the self-induced UnmapNotify via the Bridge's
// reparenting set, the same trick WorkspaceManager uses) and
// _NET_WM_STATE_HIDDEN is added to its _NET_WM_STATE.
func (c *Controller) Minimize(cl *client.Client) {
	if cl.Flags.Has(client.FlagMinimized) {
		return
	}
	cl.Flags |= client.FlagMinimized
	w := cl.ID
	if cl.Frame != nil {
		w = cl.Frame.Frame
	}
	c.bridge.MarkReparenting(w)
	xproto.UnmapWindowChecked(c.core.Conn, w).Check()
	c.atoms.SetWindowState(cl.ID, []atoms.State{atoms.StateHidden}, nil)
	if c.focus.focused != nil && *c.focus.focused == cl.ID {
		if prev, ok := c.focus.previous(cl.ID); ok {
			if prevClient, ok := c.clients[prev]; ok {
				c.setFocus(prevClient)
			}
		} else {
			c.setFocus(nil)
		}
	}
}

// Restore reverses Minimize.
func (c *Controller) Restore(cl *client.Client) {
	if !cl.Flags.Has(client.FlagMinimized) {
		return
	}
	cl.Flags &^= client.FlagMinimized
	w := cl.ID
	if cl.Frame != nil {
		w = cl.Frame.Frame
	}
	c.bridge.MarkReparenting(w)
	xproto.MapWindowChecked(c.core.Conn, w).Check()
	c.atoms.SetWindowState(cl.ID, nil, []atoms.State{atoms.StateHidden})
	c.setFocus(cl)
}

// CloseClient implements §4.E's close contract: WM_DELETE_WINDOW via
// WM_PROTOCOLS when supported, otherwise a forceful kill.
func (c *Controller) CloseClient(cl *client.Client) {
	err := c.atoms.SendDeleteWindow(cl.ID, c.core.CurrentTime())
	if err == nil {
		return
	}
	if atoms.IsNotSupported(err) {
		xproto.KillClientChecked(c.core.Conn, uint32(cl.ID)).Check()
		return
	}
	log.Warn("sending WM_DELETE_WINDOW to %d: %v", cl.ID, err)
}

// handleClientMessage dispatches the EWMH client messages a pager or
// application may send: _NET_CLOSE_WINDOW, _NET_WM_STATE (toggle
// maximize/fullscreen/etc.), _NET_ACTIVE_WINDOW, and _NET_MOVERESIZE_WINDOW.
func (c *Controller) handleClientMessage(e xproto.ClientMessageEvent) {
	cl, ok := c.clients[e.Window]
	if !ok {
		return
	}
	data := e.Data.Data32
	switch c.atomName(e.Type) {
	case "_NET_CLOSE_WINDOW":
		c.CloseClient(cl)
	case "_NET_ACTIVE_WINDOW":
		if c.shouldGrantFocus(cl, activeWindowFocusSource(data[0]), c.core.CurrentTime()) {
			c.setFocus(cl)
		}
	case "_NET_WM_STATE":
		if len(data) < 3 {
			return
		}
		c.applyNetWMState(cl, data[0], c.atomName(xproto.Atom(data[1])), c.atomName(xproto.Atom(data[2])))
	case "_NET_MOVERESIZE_WINDOW":
		if len(data) < 5 {
			return
		}
		c.applyNetMoveResizeWindow(cl, data[0], int16(data[1]), int16(data[2]), uint16(data[3]), uint16(data[4]))
	}
}

// activeWindowFocusSource maps a _NET_ACTIVE_WINDOW message's source
// indication (2=pager, anything else=application) onto a focusSource so
// shouldGrantFocus's stealing policy actually sees who asked, per §4.E/§8
// scenario 6.
func activeWindowFocusSource(sourceIndication uint32) focusSource {
	if sourceIndication == 2 {
		return focusSourcePager
	}
	return focusSourceApplication
}

// _NET_MOVERESIZE_WINDOW flag bits, per the xfwm4-derived gravity_and_flags
// layout: bits 8-11 gate which of x/y/width/height are present, bit 12 is
// the USER_POS twist that lets a user-positioned request move a maximized
// window where a plain application request cannot.
const (
	moveResizeFlagX       = 1 << 8
	moveResizeFlagY       = 1 << 9
	moveResizeFlagWidth   = 1 << 10
	moveResizeFlagHeight  = 1 << 11
	moveResizeFlagUserPos = 1 << 12
)

// mergeMoveResizeGeometry applies only the fields of a _NET_MOVERESIZE_WINDOW
// message whose flag bits are set, leaving the rest of current untouched.
func mergeMoveResizeGeometry(current client.Geometry, flags uint32, x, y int16, w, h uint16) client.Geometry {
	g := current
	if flags&moveResizeFlagX != 0 {
		g.X = x
	}
	if flags&moveResizeFlagY != 0 {
		g.Y = y
	}
	if flags&moveResizeFlagWidth != 0 {
		g.Width = w
	}
	if flags&moveResizeFlagHeight != 0 {
		g.Height = h
	}
	return g
}

// applyNetMoveResizeWindow implements §4.E's "apply only the fields whose
// flag bits are set; refuse if window is maximized and USER_POS bit is
// unset" contract.
func (c *Controller) applyNetMoveResizeWindow(cl *client.Client, flags uint32, x, y int16, w, h uint16) {
	if cl.Flags.Has(client.FlagMaximized) && flags&moveResizeFlagUserPos == 0 {
		return
	}
	c.applyGeometry(cl, mergeMoveResizeGeometry(cl.Geometry, flags, x, y, w, h))
}

// _NET_WM_STATE action codes, per EWMH.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	netWMStateToggle = 2
)

// statesContainMaximize reports whether either property of a _NET_WM_STATE
// message names MAXIMIZED_VERT or MAXIMIZED_HORZ, the pair EWMH clients send
// together for a single maximize/restore request.
func statesContainMaximize(prop1, prop2 string) bool {
	return prop1 == string(atoms.StateMaximizedVert) || prop1 == string(atoms.StateMaximizedHorz) ||
		prop2 == string(atoms.StateMaximizedVert) || prop2 == string(atoms.StateMaximizedHorz)
}

func (c *Controller) applyNetWMState(cl *client.Client, action uint32, prop1, prop2 string) {
	props := []string{prop1, prop2}

	// MAXIMIZED_VERT and MAXIMIZED_HORZ name a single maximize/restore
	// decision, not two independent toggles: a client that wants "maximize"
	// sends both atoms in one message, so the pair is coalesced and applied
	// once against the flag state as it stood when the message arrived,
	// rather than once per atom against flags the first half just mutated.
	if statesContainMaximize(prop1, prop2) {
		c.applyToggle(action, cl.Flags.Has(client.FlagMaximized), func() { c.ToggleMaximize(cl) }, func() { c.ToggleMaximize(cl) })
	}

	for _, prop := range props {
		switch prop {
		case string(atoms.StateFullscreen):
			c.applyToggle(action, cl.Flags.Has(client.FlagFullscreen), func() { c.EnterFullscreen(cl) }, func() { c.ExitFullscreen(cl) })
		case string(atoms.StateMaximizedVert), string(atoms.StateMaximizedHorz):
			// handled once, above, before either prop could mutate flags.
		case string(atoms.StateAbove):
			c.applyFlagToggle(cl, client.FlagAbove, action)
			cl.Layer = layerFor(cl)
			c.publishClientListStacking()
		case string(atoms.StateBelow):
			c.applyFlagToggle(cl, client.FlagBelow, action)
			cl.Layer = layerFor(cl)
			c.publishClientListStacking()
		case string(atoms.StateSticky):
			c.applyFlagToggle(cl, client.FlagSticky, action)
		case string(atoms.StateDemandsAttention):
			c.applyFlagToggle(cl, client.FlagDemandsAttention, action)
		}
	}
}

func (c *Controller) applyToggle(action uint32, currentlyOn bool, enter, exit func()) {
	switch action {
	case netWMStateAdd:
		if !currentlyOn {
			enter()
		}
	case netWMStateRemove:
		if currentlyOn {
			exit()
		}
	case netWMStateToggle:
		if currentlyOn {
			exit()
		} else {
			enter()
		}
	}
}

func (c *Controller) applyFlagToggle(cl *client.Client, bit client.Flags, action uint32) {
	on := cl.Flags.Has(bit)
	switch action {
	case netWMStateAdd:
		cl.Flags |= bit
	case netWMStateRemove:
		cl.Flags &^= bit
	case netWMStateToggle:
		if on {
			cl.Flags &^= bit
		} else {
			cl.Flags |= bit
		}
	}
}
