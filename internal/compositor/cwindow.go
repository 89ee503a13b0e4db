// CWindow is the per-drawable record CompositorCore keeps for every
// Bridge-tracked window: geometry, binding state, and the GLX/GL handles
// bound to it. Grounded on original_source/src/compositor/window.rs's
// CompositorWindow struct, translated into the Go-owned map entry the
// actor's single-threaded render loop mutates directly instead of behind
// a mutex (§5: CompositorCore owns this state exclusively).
package compositor

import (
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/glx"
)

// Rect is a root-relative rectangle, mirroring bridge.Geometry without
// importing it into every call site that only needs position and size.
type Rect struct {
	X, Y          int16
	Width, Height uint16
}

// CWindow is one compositor-tracked drawable. ID is the frame window for a
// decorated client and the client window itself for a client without a
// frame.
type CWindow struct {
	ID          xproto.Window
	Geometry    Rect
	BorderWidth uint16
	Viewable    bool
	Opacity     float64

	Damaged      bool
	Redirected   bool
	Unredirected bool
	BindFailed   bool

	Layer  int
	ZIndex int

	damageObj damage.Damage
	hasDamage bool

	pixmap    xproto.Pixmap
	glxPixmap glx.Pixmap
	texture   uint32
	bound     bool
}

// presentable is the §3 invariant: only viewable, non-unredirected windows
// ever reach the draw step.
func (w *CWindow) presentable() bool {
	return w.Viewable && !w.Unredirected
}
