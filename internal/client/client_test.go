package client

import "testing"

func TestFrameGeometryFrameless(t *testing.T) {
	c := New(1, Geometry{X: 10, Y: 20, Width: 300, Height: 200})
	got := c.FrameGeometry(2, 32)
	want := Geometry{X: 10, Y: 20, Width: 300, Height: 200}
	if got != want {
		t.Errorf("frameless FrameGeometry = %+v, want %+v", got, want)
	}
}

func TestFrameGeometryFramed(t *testing.T) {
	c := New(1, Geometry{X: 10, Y: 40, Width: 300, Height: 200})
	c.Frame = &FrameHandle{Frame: 2, Titlebar: 3, CloseBtn: 4, MaxBtn: 5, MinBtn: 6}

	got := c.FrameGeometry(2, 32)
	want := Geometry{X: 8, Y: 6, Width: 304, Height: 236}
	if got != want {
		t.Errorf("framed FrameGeometry = %+v, want %+v", got, want)
	}
}

func TestIsConsistentRequiresRestoreGeometryWhenFullscreen(t *testing.T) {
	c := New(1, Geometry{Width: 100, Height: 100})
	c.Flags |= FlagFullscreen
	if c.IsConsistent() {
		t.Error("fullscreen without a saved RestoreGeometry must be inconsistent")
	}
	g := Geometry{Width: 100, Height: 100}
	c.RestoreGeometry = &g
	if !c.IsConsistent() {
		t.Error("fullscreen with a saved RestoreGeometry should be consistent")
	}
}

func TestIsConsistentRejectsFramedFullscreen(t *testing.T) {
	c := New(1, Geometry{Width: 100, Height: 100})
	c.Flags |= FlagFullscreen
	g := Geometry{Width: 100, Height: 100}
	c.RestoreGeometry = &g
	c.Frame = &FrameHandle{}
	if c.IsConsistent() {
		t.Error("a fullscreen client must never carry a frame")
	}
}

func TestIsConsistentMaximizedWithoutRestoreGeometry(t *testing.T) {
	c := New(1, Geometry{Width: 100, Height: 100})
	c.Flags |= FlagMaximized
	if c.IsConsistent() {
		t.Error("maximized without a saved RestoreGeometry must be inconsistent")
	}
}

func TestFlagsHas(t *testing.T) {
	f := FlagMapped | FlagFocused
	if !f.Has(FlagMapped) || !f.Has(FlagFocused) {
		t.Error("Has must report set bits")
	}
	if f.Has(FlagMaximized) {
		t.Error("Has must not report unset bits")
	}
}
