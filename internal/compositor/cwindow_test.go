package compositor

import "testing"

// presentable must hold the §3 invariant: a CWindow is only drawn when
// viewable and not unredirected.
func TestCWindowPresentable(t *testing.T) {
	cases := []struct {
		name         string
		viewable     bool
		unredirected bool
		want         bool
	}{
		{"viewable and redirected", true, false, true},
		{"unredirected fullscreen window", true, true, false},
		{"unmapped window", false, false, false},
		{"unmapped and unredirected", false, true, false},
	}
	for _, tc := range cases {
		w := &CWindow{Viewable: tc.viewable, Unredirected: tc.unredirected}
		if got := w.presentable(); got != tc.want {
			t.Errorf("%s: presentable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
