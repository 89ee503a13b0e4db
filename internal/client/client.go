// Package client holds the per-window record WMController owns for every
// managed top-level, plus pure derived queries over it. Mutation happens
// only through WMController; this package exposes the data and a handful
// of read-only helpers, per the specification's data model.
package client

import "github.com/BurntSushi/xgb/xproto"

// AllWorkspaces is the sentinel workspace index meaning "visible on every
// desktop" (sticky windows use it alongside the Sticky flag).
const AllWorkspaces = -1

// Layer orders the compositor's scene stacking.
type Layer int

const (
	LayerDesktop Layer = iota
	LayerBelow
	LayerNormal
	LayerAbove
	LayerFullscreen
)

// Flags is the client state bitset from §3.
type Flags uint32

const (
	FlagMapped Flags = 1 << iota
	FlagFocused
	FlagMaximized
	FlagFullscreen
	FlagMinimized
	FlagAbove
	FlagBelow
	FlagUrgent
	FlagModal
	FlagSticky
	FlagSkipPager
	FlagSkipTaskbar
	FlagDemandsAttention
	FlagShaded
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Geometry is a client-content or frame rectangle in root coordinates.
type Geometry struct {
	X, Y          int16
	Width, Height uint16
}

// FrameHandle names the four chrome windows a decorated client has.
type FrameHandle struct {
	Frame    xproto.Window
	Titlebar xproto.Window
	CloseBtn xproto.Window
	MaxBtn   xproto.Window
	MinBtn   xproto.Window
}

// SizeHints mirrors the subset of WM_NORMAL_HINTS the controller consults.
type SizeHints struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
	HasMin, HasMax      bool
}

// Client is the authoritative per-window record, keyed externally by ID in
// WMController's map (the design notes' "integer IDs instead of reference
// cycles").
type Client struct {
	ID   xproto.Window
	Frame *FrameHandle

	Geometry        Geometry
	RestoreGeometry *Geometry

	Flags Flags

	Title       string
	Class       string
	Instance    string
	WindowType  []string
	TransientFor xproto.Window
	Protocols   map[string]bool

	SizeHints SizeHints
	Opacity   float64
	Monitor   int

	Workspace int
	Layer     Layer
	ZIndex    int
}

// New creates a Client in its initial, undecorated, unmapped state.
func New(id xproto.Window, geom Geometry) *Client {
	return &Client{
		ID:        id,
		Geometry:  geom,
		Workspace: 0,
		Layer:     LayerNormal,
		Protocols: map[string]bool{},
		Opacity:   1.0,
	}
}

// FrameGeometry returns the outer bounding rectangle given decoration
// constants, per §4.C's derived query. When the client has no frame the
// content geometry itself is the outer rectangle.
func (c *Client) FrameGeometry(borderWidth, titlebarHeight int) Geometry {
	if c.Frame == nil {
		return c.Geometry
	}
	return Geometry{
		X:      c.Geometry.X - int16(borderWidth),
		Y:      c.Geometry.Y - int16(titlebarHeight+borderWidth),
		Width:  c.Geometry.Width + uint16(2*borderWidth),
		Height: c.Geometry.Height + uint16(titlebarHeight+2*borderWidth),
	}
}

// Invariant checks, used by tests and assertions rather than enforced
// inline (mutation happens in internal/wm, which is responsible for
// maintaining these):

// IsConsistent reports whether c satisfies the §3 invariants that can be
// checked from the record alone.
func (c *Client) IsConsistent() bool {
	if c.Flags.Has(FlagFullscreen) {
		if c.Frame != nil {
			return false
		}
	}
	hasRestore := c.RestoreGeometry != nil
	wantsRestore := c.Flags.Has(FlagMaximized) || c.Flags.Has(FlagFullscreen)
	return hasRestore == wantsRestore
}
