package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/atoms"
	"github.com/fenestra-wm/fenestra/internal/client"
)

// §8 scenario 2: a _NET_WM_STATE(toggle, MAXIMIZED_VERT, MAXIMIZED_HORZ)
// message must net to a single maximize decision, not two toggles that
// cancel each other out.
func TestStatesContainMaximizeDetectsEitherOrder(t *testing.T) {
	vert := string(atoms.StateMaximizedVert)
	horz := string(atoms.StateMaximizedHorz)
	if !statesContainMaximize(vert, horz) {
		t.Error("vert+horz pair must be recognized as a single maximize request")
	}
	if !statesContainMaximize(horz, vert) {
		t.Error("order of the two atoms must not matter")
	}
	if !statesContainMaximize(vert, "") {
		t.Error("a single maximize atom (the other slot unused) must still be recognized")
	}
	if statesContainMaximize(string(atoms.StateFullscreen), string(atoms.StateAbove)) {
		t.Error("unrelated state atoms must not be mistaken for a maximize request")
	}
}

// applyNetWMState itself needs a live connection, so this reproduces its
// maximize-pair step (statesContainMaximize, then one applyToggle) with a
// stub toggle in place of ToggleMaximize.
func TestApplyNetWMStateMaximizeTogglesExactlyOnce(t *testing.T) {
	c := &Controller{}
	cl := &client.Client{}
	calls := 0
	toggle := func() {
		calls++
		cl.Flags ^= client.FlagMaximized
	}

	if statesContainMaximize(string(atoms.StateMaximizedVert), string(atoms.StateMaximizedHorz)) {
		c.applyToggle(netWMStateToggle, cl.Flags.Has(client.FlagMaximized), toggle, toggle)
	}
	if calls != 1 {
		t.Fatalf("maximize toggle fired %d times, want exactly 1", calls)
	}
	if !cl.Flags.Has(client.FlagMaximized) {
		t.Error("window must end up maximized after a single toggle request")
	}
}

// §8 scenario 6: an application-sourced _NET_ACTIVE_WINDOW must be subject
// to focus-stealing prevention, while a pager-sourced one always succeeds.
func TestActiveWindowFocusSource(t *testing.T) {
	if got := activeWindowFocusSource(2); got != focusSourcePager {
		t.Errorf("source indication 2 = %v, want focusSourcePager", got)
	}
	if got := activeWindowFocusSource(1); got != focusSourceApplication {
		t.Errorf("source indication 1 = %v, want focusSourceApplication", got)
	}
	if got := activeWindowFocusSource(0); got != focusSourceApplication {
		t.Errorf("source indication 0 (legacy client) = %v, want focusSourceApplication", got)
	}
}

func TestActiveWindowFocusStealingBlockedForStaleApplicationRequest(t *testing.T) {
	c := &Controller{lastUserInteraction: 1000}
	cl := &client.Client{}
	source := activeWindowFocusSource(1) // application
	past := xproto.Timestamp(1000 + focusStealingDelay.Milliseconds() + 1)
	if c.shouldGrantFocus(cl, source, past) {
		t.Error("a stale application-sourced _NET_ACTIVE_WINDOW must not steal focus")
	}
}

func TestActiveWindowFocusStealingAllowedForPagerRequest(t *testing.T) {
	c := &Controller{lastUserInteraction: 1000}
	cl := &client.Client{}
	source := activeWindowFocusSource(2) // pager
	if !c.shouldGrantFocus(cl, source, 999999) {
		t.Error("a pager-sourced _NET_ACTIVE_WINDOW must always be granted focus")
	}
}

// §4.E / §8 scenario 3's MOVERESIZE_WINDOW field-selection half.
func TestMergeMoveResizeGeometryAppliesOnlySetFields(t *testing.T) {
	current := client.Geometry{X: 100, Y: 100, Width: 800, Height: 600}
	got := mergeMoveResizeGeometry(current, moveResizeFlagX|moveResizeFlagWidth, 50, 999, 400, 999)
	want := client.Geometry{X: 50, Y: 100, Width: 400, Height: 600}
	if got != want {
		t.Errorf("mergeMoveResizeGeometry = %+v, want %+v", got, want)
	}
}

func TestMergeMoveResizeGeometryNoFlagsLeavesGeometryUnchanged(t *testing.T) {
	current := client.Geometry{X: 1, Y: 2, Width: 3, Height: 4}
	got := mergeMoveResizeGeometry(current, 0, 9, 9, 9, 9)
	if got != current {
		t.Errorf("mergeMoveResizeGeometry with no flags = %+v, want unchanged %+v", got, current)
	}
}

// §4.E: a maximized window refuses _NET_MOVERESIZE_WINDOW unless USER_POS is
// set. The refusal path must return before touching the X connection.
func TestApplyNetMoveResizeWindowRefusesMaximizedWithoutUserPos(t *testing.T) {
	c := &Controller{}
	cl := &client.Client{Geometry: client.Geometry{X: 1, Y: 2, Width: 3, Height: 4}}
	cl.Flags |= client.FlagMaximized

	c.applyNetMoveResizeWindow(cl, moveResizeFlagX, 500, 0, 0, 0)

	if cl.Geometry.X != 1 {
		t.Error("a maximized window must refuse MOVERESIZE without the USER_POS bit")
	}
}
