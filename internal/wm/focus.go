// FocusAndStacking: focus history, click-to-focus/sloppy policy, raise/
// lower, layer assignment, and the _NET_CLIENT_LIST[_STACKING] updates
// those operations drive. Grounded on original_source/src/wm/focus.rs and
// stacking.rs for the update ordering.
package wm

import (
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
)

const focusHistoryLimit = 64

// focusState is FocusAndStacking's data: the bounded history deque and the
// currently focused window, if any.
type focusState struct {
	history []xproto.Window // most-recent-last
	focused *xproto.Window
}

func newFocusState() *focusState {
	return &focusState{}
}

// remember pushes w to the back (most-recent end) of the history, trimming duplicates and
// bounding the deque's length.
func (f *focusState) remember(w xproto.Window) {
	filtered := f.history[:0]
	for _, x := range f.history {
		if x != w {
			filtered = append(filtered, x)
		}
	}
	f.history = append(filtered, w)
	if len(f.history) > focusHistoryLimit {
		f.history = f.history[len(f.history)-focusHistoryLimit:]
	}
}

// forget removes w from the history entirely (called on DestroyNotify so
// the invariant "focus history never contains a destroyed window" holds).
func (f *focusState) forget(w xproto.Window) {
	filtered := f.history[:0]
	for _, x := range f.history {
		if x != w {
			filtered = append(filtered, x)
		}
	}
	f.history = filtered
	if f.focused != nil && *f.focused == w {
		f.focused = nil
	}
}

// previous returns the most recently focused window other than w, for
// refocusing after a close/unmanage.
func (f *focusState) previous(excluding xproto.Window) (xproto.Window, bool) {
	for i := len(f.history) - 1; i >= 0; i-- {
		if f.history[i] != excluding {
			return f.history[i], true
		}
	}
	return 0, false
}

// stackingOrder returns client IDs ordered by (layer, zIndex) ascending,
// the same order CompositorCore draws CWindows in.
func (f *focusState) stackingOrder(clients map[xproto.Window]*client.Client) []xproto.Window {
	ids := make([]xproto.Window, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	// simple insertion sort by (layer, zIndex): client counts are small
	// (tens, not thousands), so O(n^2) avoids pulling in sort for a
	// comparator this thin.
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && less(clients[ids[j]], clients[ids[j-1]]) {
			ids[j], ids[j-1] = ids[j-1], ids[j]
			j--
		}
	}
	return ids
}

func less(a, b *client.Client) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	return a.ZIndex < b.ZIndex
}

// layerFor computes the stacking layer a client belongs in, per §4.F:
// desktop windows get the desktop layer and docks the below layer, fullscreen clients
// float to the fullscreen layer while fullscreen, and explicit ABOVE/BELOW
// atoms shift normal windows up or down one layer.
func layerFor(cl *client.Client) client.Layer {
	if cl.Flags.Has(client.FlagFullscreen) {
		return client.LayerFullscreen
	}
	for _, t := range cl.WindowType {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DESKTOP":
			return client.LayerDesktop
		case "_NET_WM_WINDOW_TYPE_DOCK":
			return client.LayerBelow
		}
	}
	if cl.Flags.Has(client.FlagAbove) {
		return client.LayerAbove
	}
	if cl.Flags.Has(client.FlagBelow) {
		return client.LayerBelow
	}
	return client.LayerNormal
}

// raise assigns cl the highest zIndex currently in use plus one, then
// republishes the two EWMH stacking properties.
func (c *Controller) raise(cl *client.Client) {
	max := -1
	for _, other := range c.clients {
		if other.ZIndex > max {
			max = other.ZIndex
		}
	}
	cl.ZIndex = max + 1
	cl.Layer = layerFor(cl)
	c.publishClientListStacking()
	c.pushGeometry(cl, true)
}

// lower assigns cl a zIndex one below the lowest currently in use, and at
// most 0.
func (c *Controller) lower(cl *client.Client) {
	min := 1
	for _, other := range c.clients {
		if other.ZIndex < min {
			min = other.ZIndex
		}
	}
	cl.ZIndex = min - 1
	c.publishClientListStacking()
}

// shouldGrantFocus implements the focus-stealing policy of §4.E: an
// application-originated request within focusStealingDelay of the last
// user interaction is granted; otherwise it is dropped unless the target
// is modal or demands attention. Pager and user-originated sources always
// succeed.
func (c *Controller) shouldGrantFocus(cl *client.Client, source focusSource, now xproto.Timestamp) bool {
	switch source {
	case focusSourcePager, focusSourceUser:
		return true
	}
	if cl.Flags.Has(client.FlagModal) || cl.Flags.Has(client.FlagDemandsAttention) {
		return true
	}
	if now == 0 || c.lastUserInteraction == 0 {
		return true
	}
	delta := int64(now) - int64(c.lastUserInteraction)
	return delta >= 0 && time.Duration(delta)*time.Millisecond <= focusStealingDelay
}

type focusSource int

const (
	focusSourceApplication focusSource = iota
	focusSourcePager
	focusSourceUser
)

// setFocus focuses cl (or clears focus entirely when cl is nil), writing
// _NET_ACTIVE_WINDOW, calling SetInputFocus, and sending WM_TAKE_FOCUS
// where supported. Skipped entirely when the client's WM_HINTS input flag
// is explicitly false.
func (c *Controller) setFocus(cl *client.Client) {
	if cl != nil {
		if input, ok := c.atoms.InputHint(cl.ID); ok && !input {
			return
		}
	}

	if c.focus.focused != nil {
		if prev, ok := c.clients[*c.focus.focused]; ok {
			prev.Flags &^= client.FlagFocused
		}
	}

	if cl == nil {
		c.focus.focused = nil
		c.atoms.UpdateActiveWindow(nil)
		xproto.SetInputFocusChecked(c.core.Conn, xproto.InputFocusPointerRoot, c.core.Root, c.core.CurrentTime()).Check()
		return
	}

	cl.Flags |= client.FlagFocused
	id := cl.ID
	c.focus.focused = &id
	c.focus.remember(id)

	c.atoms.UpdateActiveWindow(&id)
	xproto.SetInputFocusChecked(c.core.Conn, xproto.InputFocusPointerRoot, id, c.core.CurrentTime()).Check()
	if c.atoms.SupportsTakeFocus(id) {
		c.atoms.SendTakeFocus(id, c.core.CurrentTime())
	}

	if c.cfg.WindowManager.Behavior.RaiseOnFocus {
		c.raiseClient(cl)
	}
}

// raiseClient raises cl's frame/window above its siblings at the X level
// and in the compositor's scene.
func (c *Controller) raiseClient(cl *client.Client) {
	w := cl.ID
	if cl.Frame != nil {
		w = cl.Frame.Frame
	}
	xproto.ConfigureWindowChecked(c.core.Conn, w, xproto.ConfigWindowStackMode,
		[]uint32{uint32(xproto.StackModeAbove)}).Check()
	c.raise(cl)
}
