package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
)

func TestFocusStateRememberDedupesAndBounds(t *testing.T) {
	f := newFocusState()
	f.remember(1)
	f.remember(2)
	f.remember(1) // re-focusing 1 should move it to the back, not duplicate

	if len(f.history) != 2 {
		t.Fatalf("history length = %d, want 2 (no duplicates)", len(f.history))
	}
	if f.history[len(f.history)-1] != 1 {
		t.Errorf("most recently focused window must be last, got %v", f.history)
	}

	for i := xproto.Window(3); i < 3+focusHistoryLimit+10; i++ {
		f.remember(i)
	}
	if len(f.history) != focusHistoryLimit {
		t.Errorf("history length = %d, want bounded to %d", len(f.history), focusHistoryLimit)
	}
}

// forget must satisfy "focus history never contains a destroyed window".
func TestFocusStateForgetRemovesFromHistory(t *testing.T) {
	f := newFocusState()
	f.remember(1)
	f.remember(2)
	f.remember(3)
	f.forget(2)

	for _, w := range f.history {
		if w == 2 {
			t.Fatal("forget(2) left window 2 in the history deque")
		}
	}
	if len(f.history) != 2 {
		t.Errorf("history length after forget = %d, want 2", len(f.history))
	}
}

func TestFocusStateForgetClearsFocusedPointer(t *testing.T) {
	f := newFocusState()
	w := xproto.Window(5)
	f.focused = &w
	f.forget(5)
	if f.focused != nil {
		t.Error("forget must clear focused when it names the forgotten window")
	}
}

func TestFocusStatePreviousSkipsExcluded(t *testing.T) {
	f := newFocusState()
	f.remember(1)
	f.remember(2)
	f.remember(3)

	got, ok := f.previous(3)
	if !ok || got != 2 {
		t.Errorf("previous(3) = (%v, %v), want (2, true)", got, ok)
	}
	if _, ok := newFocusState().previous(1); ok {
		t.Error("previous on empty history must report not-found")
	}
}

func TestStackingOrderSortsByLayerThenZIndex(t *testing.T) {
	f := newFocusState()
	clients := map[xproto.Window]*client.Client{
		1: {ID: 1, Layer: client.LayerNormal, ZIndex: 5},
		2: {ID: 2, Layer: client.LayerBelow, ZIndex: 10},
		3: {ID: 3, Layer: client.LayerNormal, ZIndex: 1},
	}
	order := f.stackingOrder(clients)
	want := []xproto.Window{2, 3, 1}
	if len(order) != len(want) {
		t.Fatalf("stackingOrder returned %d ids, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("stackingOrder = %v, want %v", order, want)
			break
		}
	}
}

func TestLayerForFullscreenOverridesWindowType(t *testing.T) {
	cl := &client.Client{WindowType: []string{"_NET_WM_WINDOW_TYPE_DOCK"}}
	cl.Flags |= client.FlagFullscreen
	if got := layerFor(cl); got != client.LayerFullscreen {
		t.Errorf("layerFor fullscreen dock = %v, want LayerFullscreen", got)
	}
}

func TestLayerForWindowTypes(t *testing.T) {
	cases := []struct {
		windowType []string
		want       client.Layer
	}{
		{[]string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, client.LayerDesktop},
		{[]string{"_NET_WM_WINDOW_TYPE_DOCK"}, client.LayerBelow},
		{[]string{"_NET_WM_WINDOW_TYPE_NORMAL"}, client.LayerNormal},
	}
	for _, tc := range cases {
		cl := &client.Client{WindowType: tc.windowType}
		if got := layerFor(cl); got != tc.want {
			t.Errorf("layerFor(%v) = %v, want %v", tc.windowType, got, tc.want)
		}
	}
}

func TestLayerForAboveBelowFlags(t *testing.T) {
	above := &client.Client{}
	above.Flags |= client.FlagAbove
	if got := layerFor(above); got != client.LayerAbove {
		t.Errorf("layerFor(ABOVE) = %v, want LayerAbove", got)
	}

	below := &client.Client{}
	below.Flags |= client.FlagBelow
	if got := layerFor(below); got != client.LayerBelow {
		t.Errorf("layerFor(BELOW) = %v, want LayerBelow", got)
	}
}

func TestShouldGrantFocusPagerAndUserAlwaysSucceed(t *testing.T) {
	c := &Controller{lastUserInteraction: 0}
	cl := &client.Client{}
	if !c.shouldGrantFocus(cl, focusSourcePager, 999999) {
		t.Error("pager-originated focus must always be granted")
	}
	if !c.shouldGrantFocus(cl, focusSourceUser, 999999) {
		t.Error("user-originated focus must always be granted")
	}
}

func TestShouldGrantFocusModalAndUrgentAlwaysSucceed(t *testing.T) {
	c := &Controller{lastUserInteraction: 1000}
	modal := &client.Client{}
	modal.Flags |= client.FlagModal
	if !c.shouldGrantFocus(modal, focusSourceApplication, 999999) {
		t.Error("modal clients must always be granted focus regardless of staleness")
	}

	urgent := &client.Client{}
	urgent.Flags |= client.FlagDemandsAttention
	if !c.shouldGrantFocus(urgent, focusSourceApplication, 999999) {
		t.Error("demands-attention clients must always be granted focus")
	}
}

func TestShouldGrantFocusAppRequestWithinDelay(t *testing.T) {
	c := &Controller{lastUserInteraction: 1000}
	cl := &client.Client{}
	boundary := xproto.Timestamp(1000 + focusStealingDelay.Milliseconds())
	if !c.shouldGrantFocus(cl, focusSourceApplication, boundary) {
		t.Error("an app-originated request at exactly the delay boundary should be granted")
	}
	if c.shouldGrantFocus(cl, focusSourceApplication, boundary+1) {
		t.Error("an app-originated request past the delay boundary should be refused")
	}
}
