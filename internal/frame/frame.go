// Package frame implements FrameFactory: creation, geometry, hit-testing
// and teardown of the reparenting frame (outer window + titlebar + three
// buttons), grounded on other_examples' funkycode-marwind wm/frame.go
// (createParent/reparent/doMap/doUnmap/onDestroy/ChangeSaveSet) and
// generalized to the titlebar+buttons chrome this specification requires.
package frame

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
	"github.com/fenestra-wm/fenestra/internal/config"
	"github.com/fenestra-wm/fenestra/internal/flog"
)

var log = flog.New("frame")

// ButtonKind identifies which chrome button a window ID names.
type ButtonKind int

const (
	ButtonNone ButtonKind = iota
	ButtonClose
	ButtonMaximize
	ButtonMinimize
)

// Factory creates and manipulates frames on behalf of WMController.
type Factory struct {
	conn   *xgb.Conn
	root   xproto.Window
	depth  byte
	visual xproto.Visualid

	deco   config.Decorations
	colors config.Colors
}

// New builds a Factory bound to conn/root using the given decoration
// geometry and color configuration.
func New(conn *xgb.Conn, root xproto.Window, depth byte, visual xproto.Visualid, deco config.Decorations, colors config.Colors) *Factory {
	return &Factory{conn: conn, root: root, depth: depth, visual: visual, deco: deco, colors: colors}
}

// Create issues the five window-creation requests described in §4.D:
// outer frame, titlebar child, and three button children, reparents win
// into the frame at (border_width, titlebar_height+border_width), and maps
// the frame and its chrome; win itself is left for the caller to map last
// (so MapRequest ordering stays under WMController's control).
func (f *Factory) Create(win xproto.Window, geom client.Geometry) (*client.FrameHandle, error) {
	outerW := geom.Width + uint16(2*f.deco.BorderWidth)
	outerH := geom.Height + uint16(f.deco.TitlebarHeight+2*f.deco.BorderWidth)

	frameID, err := f.createWindow(outerW, outerH, f.colors.Background,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify|
			xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion,
		true)
	if err != nil {
		return nil, fmt.Errorf("creating frame window: %w", err)
	}
	if err := xproto.ConfigureWindowChecked(f.conn, frameID, xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(uint16(geom.X) - uint16(f.deco.BorderWidth)), uint32(uint16(geom.Y) - uint16(f.deco.TitlebarHeight+f.deco.BorderWidth))}).Check(); err != nil {
		return nil, err
	}

	titlebarID, err := f.createChildWindow(frameID, 0, 0, outerW, uint16(f.deco.TitlebarHeight), f.colors.Titlebar,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskExposure)
	if err != nil {
		return nil, fmt.Errorf("creating titlebar: %w", err)
	}

	btnSize := uint16(f.deco.ButtonSize)
	closeID, err := f.createChildWindow(titlebarID, 0, 0, btnSize, btnSize, f.colors.CloseButton, xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease)
	if err != nil {
		return nil, fmt.Errorf("creating close button: %w", err)
	}
	maxID, err := f.createChildWindow(titlebarID, 0, 0, btnSize, btnSize, f.colors.MaximizeButton, xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease)
	if err != nil {
		return nil, fmt.Errorf("creating maximize button: %w", err)
	}
	minID, err := f.createChildWindow(titlebarID, 0, 0, btnSize, btnSize, f.colors.MinimizeButton, xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease)
	if err != nil {
		return nil, fmt.Errorf("creating minimize button: %w", err)
	}

	fh := &client.FrameHandle{Frame: frameID, Titlebar: titlebarID, CloseBtn: closeID, MaxBtn: maxID, MinBtn: minID}
	f.layoutButtons(fh, outerW)

	if err := xproto.ReparentWindowChecked(f.conn, win, frameID, int16(f.deco.BorderWidth), int16(f.deco.TitlebarHeight+f.deco.BorderWidth)).Check(); err != nil {
		return nil, fmt.Errorf("reparenting client: %w", err)
	}
	// ChangeSaveSet ensures the client is reparented back to root (rather
	// than destroyed) if this process dies unexpectedly, matching the
	// marwind frame.go pattern.
	xproto.ChangeSaveSetChecked(f.conn, xproto.SetModeInsert, win)

	for _, w := range []xproto.Window{frameID, titlebarID, closeID, maxID, minID} {
		if err := xproto.MapWindowChecked(f.conn, w).Check(); err != nil {
			log.Warn("mapping chrome window %d: %v", w, err)
		}
	}

	return fh, nil
}

func (f *Factory) createWindow(w, h uint16, background uint32, eventMask uint32, overrideRedirect bool) (xproto.Window, error) {
	id, err := xproto.NewWindowId(f.conn)
	if err != nil {
		return 0, err
	}
	var orVal uint32
	if overrideRedirect {
		orVal = 1
	}
	err = xproto.CreateWindowChecked(f.conn, f.depth, id, f.root,
		0, 0, w, h, 0, xproto.WindowClassInputOutput, f.visual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{background, orVal, eventMask}).Check()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (f *Factory) createChildWindow(parent xproto.Window, x, y int16, w, h uint16, background uint32, eventMask uint32) (xproto.Window, error) {
	id, err := xproto.NewWindowId(f.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(f.conn, f.depth, id, parent,
		x, y, w, h, 0, xproto.WindowClassInputOutput, f.visual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{background, eventMask}).Check()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// layoutButtons places close/maximize/minimize right-to-left inside the
// titlebar, separated by button_padding.
func (f *Factory) layoutButtons(fh *client.FrameHandle, titlebarWidth uint16) {
	size := int32(f.deco.ButtonSize)
	pad := int32(f.deco.ButtonPadding)
	y := (int32(f.deco.TitlebarHeight) - size) / 2
	if y < 0 {
		y = 0
	}
	x := int32(titlebarWidth) - pad - size
	for _, w := range []xproto.Window{fh.CloseBtn, fh.MaxBtn, fh.MinBtn} {
		xproto.ConfigureWindowChecked(f.conn, w, xproto.ConfigWindowX|xproto.ConfigWindowY,
			[]uint32{uint32(int16(x)), uint32(int16(y))}).Check()
		x -= size + pad
	}
}

// Contains reports whether w is this frame, its titlebar, or any button.
func (fh FrameRef) Contains(w xproto.Window) bool {
	h := fh.FrameHandle
	return w == h.Frame || w == h.Titlebar || w == h.CloseBtn || w == h.MaxBtn || w == h.MinBtn
}

// FrameRef wraps a *client.FrameHandle to host hit-testing methods without
// adding X-connection dependencies to the client package.
type FrameRef struct {
	FrameHandle *client.FrameHandle
}

// ButtonOf identifies which button window w is, if any.
func (fh FrameRef) ButtonOf(w xproto.Window) ButtonKind {
	h := fh.FrameHandle
	switch w {
	case h.CloseBtn:
		return ButtonClose
	case h.MaxBtn:
		return ButtonMaximize
	case h.MinBtn:
		return ButtonMinimize
	default:
		return ButtonNone
	}
}

// Resize reconfigures the frame size and titlebar width for a client content
// size of w x h, and repositions buttons from the right edge. The client
// window itself is not reconfigured here.
func (f *Factory) Resize(fh *client.FrameHandle, w, h uint16) {
	outerW := w + uint16(2*f.deco.BorderWidth)
	outerH := h + uint16(f.deco.TitlebarHeight+2*f.deco.BorderWidth)
	xproto.ConfigureWindowChecked(f.conn, fh.Frame, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(outerW), uint32(outerH)}).Check()
	xproto.ConfigureWindowChecked(f.conn, fh.Titlebar, xproto.ConfigWindowWidth,
		[]uint32{uint32(outerW)}).Check()
	f.layoutButtons(fh, outerW)
}

// MoveTo configures the frame's position.
func (f *Factory) MoveTo(fh *client.FrameHandle, x, y int16) {
	xproto.ConfigureWindowChecked(f.conn, fh.Frame, xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(x), uint32(y)}).Check()
}

// Destroy reparents the client back to root at the given root-absolute
// coordinates and destroys the frame, which recursively destroys its
// children.
func (f *Factory) Destroy(fh *client.FrameHandle, clientWin xproto.Window, rootX, rootY int16) {
	xproto.ReparentWindowChecked(f.conn, clientWin, f.root, rootX, rootY).Check()
	xproto.DestroyWindowChecked(f.conn, fh.Frame).Check()
}

// suppressedSubstrings lists the WM_CLASS/title fragments that disable
// decoration, per §6's pattern list.
var suppressedSubstrings = []string{"chrome", "chromium", "firefox", "navigator", "electron", "wine"}

var suppressedTypes = map[string]bool{
	"_NET_WM_WINDOW_TYPE_DOCK":         true,
	"_NET_WM_WINDOW_TYPE_TOOLTIP":      true,
	"_NET_WM_WINDOW_TYPE_NOTIFICATION": true,
	"_NET_WM_WINDOW_TYPE_SPLASH":       true,
	"_NET_WM_WINDOW_TYPE_MENU":         true,
	"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU": true,
	"_NET_WM_WINDOW_TYPE_POPUP_MENU":   true,
}

// ShouldDecorate resolves whether a client should receive a frame. Motif
// hints win when present (an explicit, structured signal); the pattern
// list and window-type check are the heuristic fallback, per DESIGN.md's
// resolution of the corresponding open question.
func ShouldDecorate(class, instance, title string, windowType []string, motifDecorate *bool) bool {
	if motifDecorate != nil {
		return *motifDecorate
	}
	for _, t := range windowType {
		if suppressedTypes[t] {
			return false
		}
	}
	lowerClass := strings.ToLower(class)
	lowerInstance := strings.ToLower(instance)
	lowerTitle := strings.ToLower(title)
	for _, s := range suppressedSubstrings {
		if strings.Contains(lowerClass, s) || strings.Contains(lowerInstance, s) || strings.Contains(lowerTitle, s) {
			return false
		}
	}
	if strings.HasSuffix(lowerTitle, ".exe") {
		return false
	}
	return true
}
