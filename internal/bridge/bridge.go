// Package bridge implements the single-producer/single-consumer command
// channel WMController uses to instruct CompositorCore, plus the two
// side-band window-ID registries WMController keeps to recognize its own
// reparenting side effects and its own chrome windows.
package bridge

import "github.com/BurntSushi/xgb/xproto"

// Kind tags a Command's payload, standing in for the tagged variant type
// the design notes call for instead of virtual dispatch.
type Kind int

const (
	AddWindow Kind = iota
	RemoveWindow
	UpdateWindowGeometry
	UpdateWindowDamage
	UpdateCursor
	UnredirectWindow
	RedirectWindow
	TriggerRender
	Shutdown
)

// Geometry is a frame-relative or root-relative rectangle, depending on
// context; CompositorCore always treats it as root-relative.
type Geometry struct {
	X, Y          int16
	Width, Height uint16
	BorderWidth   uint16
}

// Command is the single tagged-variant type carried over the channel. Only
// the fields relevant to Kind are populated; the receiver needs no
// cross-thread reads beyond what's here.
type Command struct {
	Kind     Kind
	Window   xproto.Window
	Geometry Geometry
	Layer    int
	ZIndex   int
	CursorX  int16
	CursorY  int16
	Visible  bool
}

// Bridge is the channel plus the WMController-owned ID registries. It is
// constructed by WMController and its receiver half handed to
// CompositorCore; WMController keeps the sender and the registries.
type Bridge struct {
	commands chan Command

	// reparenting holds windows currently mid-reparent, so the
	// Unmap/Map notifications the reparent itself triggers aren't mistaken
	// for application-originated visibility changes.
	reparenting map[xproto.Window]struct{}

	// frameWindows holds every chrome window (frame/titlebar/buttons) so
	// they are never accidentally managed as top-level clients.
	frameWindows map[xproto.Window]struct{}
}

// New creates a Bridge with an unbounded-in-practice buffered channel; the
// WM thread must never block on the compositor (§5's deadlock-avoidance
// rule), so the buffer is sized generously and producers never select on
// channel-full.
func New() *Bridge {
	return &Bridge{
		commands:     make(chan Command, 4096),
		reparenting:  make(map[xproto.Window]struct{}),
		frameWindows: make(map[xproto.Window]struct{}),
	}
}

// Send enqueues a command. The caller (WMController) is responsible for
// flushing the X connection first when the command depends on a request
// that must already have reached the server (the causal-consistency rule
// of §5).
func (b *Bridge) Send(cmd Command) {
	select {
	case b.commands <- cmd:
	default:
		// The channel is sized far beyond any plausible backlog; a full
		// channel means the compositor thread has exited. Drop silently,
		// matching the "Bridge send errors are ignored" error policy.
	}
}

// Receiver exposes the read-only half for CompositorCore.
func (b *Bridge) Receiver() <-chan Command {
	return b.commands
}

// MarkReparenting records w as mid-reparent.
func (b *Bridge) MarkReparenting(w xproto.Window) {
	b.reparenting[w] = struct{}{}
}

// ConsumeReparenting reports whether w was mid-reparent, clearing the mark
// if so (each insertion is removed within two events per the invariant).
func (b *Bridge) ConsumeReparenting(w xproto.Window) bool {
	if _, ok := b.reparenting[w]; ok {
		delete(b.reparenting, w)
		return true
	}
	return false
}

// MarkFrameWindow records w as WM chrome (frame/titlebar/button).
func (b *Bridge) MarkFrameWindow(w xproto.Window) {
	b.frameWindows[w] = struct{}{}
}

// UnmarkFrameWindow removes w from the chrome set, e.g. on frame destroy.
func (b *Bridge) UnmarkFrameWindow(w xproto.Window) {
	delete(b.frameWindows, w)
}

// IsFrameWindow reports whether w is WM chrome.
func (b *Bridge) IsFrameWindow(w xproto.Window) bool {
	_, ok := b.frameWindows[w]
	return ok
}
