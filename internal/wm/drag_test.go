package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
)

func TestQuadrantResizeKind(t *testing.T) {
	cl := client.New(1, client.Geometry{Width: 200, Height: 100})
	cases := []struct {
		x, y int16
		want dragKind
	}{
		{10, 10, dragResizeNW},
		{190, 10, dragResizeNE},
		{10, 90, dragResizeSW},
		{190, 90, dragResizeSE},
	}
	for _, tc := range cases {
		if got := quadrantResizeKind(cl, tc.x, tc.y); got != tc.want {
			t.Errorf("quadrantResizeKind(%d,%d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

// isDoubleClick implements spec's 300ms/6px double-click window, checked
// against (window_id, time, x, y) bookkeeping on the in-progress drag state.
func TestIsDoubleClick(t *testing.T) {
	c := &Controller{}
	w := xproto.Window(42)
	c.drag = dragState{lastClickWindow: w, lastClickTime: 1000, lastClickX: 50, lastClickY: 50}

	if !c.isDoubleClick(w, 1000+doubleClickWindowMs, 50+doubleClickSlopPx, 50-doubleClickSlopPx) {
		t.Error("click at the edge of the time/slop window should count as a double-click")
	}
	if c.isDoubleClick(w, 1000+doubleClickWindowMs+1, 50, 50) {
		t.Error("click 1ms past the window must not count as a double-click")
	}
	if c.isDoubleClick(w, 1000+100, 50+doubleClickSlopPx+1, 50) {
		t.Error("click 1px past the slop radius must not count as a double-click")
	}
	if c.isDoubleClick(999, 1000+100, 50, 50) {
		t.Error("a click on a different window must never count as a double-click")
	}
}

func TestClampToSizeHints(t *testing.T) {
	c := &Controller{}
	cl := client.New(1, client.Geometry{Width: 100, Height: 100})
	cl.SizeHints = client.SizeHints{
		HasMin: true, MinWidth: 50, MinHeight: 50,
		HasMax: true, MaxWidth: 400, MaxHeight: 400,
	}

	got := c.clampToSizeHints(cl, client.Geometry{Width: 10, Height: 10})
	if got.Width != 50 || got.Height != 50 {
		t.Errorf("clamp below min = %+v, want 50x50", got)
	}

	got = c.clampToSizeHints(cl, client.Geometry{Width: 9999, Height: 9999})
	if got.Width != 400 || got.Height != 400 {
		t.Errorf("clamp above max = %+v, want 400x400", got)
	}

	got = c.clampToSizeHints(cl, client.Geometry{Width: 200, Height: 200})
	if got.Width != 200 || got.Height != 200 {
		t.Errorf("in-range geometry must pass through unchanged, got %+v", got)
	}
}

func TestClampDimNeverZero(t *testing.T) {
	if clampDim(-5) != 1 {
		t.Error("clampDim must floor negative deltas to 1, never 0 or negative")
	}
	if clampDim(50) != 50 {
		t.Error("clampDim must pass positive values through unchanged")
	}
}
