package frame

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
)

func boolPtr(b bool) *bool { return &b }

func fhFixture() *client.FrameHandle {
	return &client.FrameHandle{
		Frame: xproto.Window(100), Titlebar: xproto.Window(101),
		CloseBtn: xproto.Window(102), MaxBtn: xproto.Window(103), MinBtn: xproto.Window(104),
	}
}

func TestShouldDecorateMotifHintsWin(t *testing.T) {
	// Motif hints override any pattern/type heuristic, even one that would
	// otherwise suppress decoration.
	if !ShouldDecorate("firefox", "firefox", "Mozilla Firefox", nil, boolPtr(true)) {
		t.Error("explicit Motif decorate=true must win over the suppression pattern")
	}
	if ShouldDecorate("xterm", "xterm", "term", nil, boolPtr(false)) {
		t.Error("explicit Motif decorate=false must win even for an otherwise-decorated app")
	}
}

func TestShouldDecorateSuppressedClass(t *testing.T) {
	cases := []string{"Chromium", "Google-chrome", "Firefox", "Electron", "wine"}
	for _, class := range cases {
		if ShouldDecorate(class, class, "untitled", nil, nil) {
			t.Errorf("class %q should be suppressed from decoration", class)
		}
	}
}

func TestShouldDecorateSuppressedWindowType(t *testing.T) {
	if ShouldDecorate("anything", "anything", "tip", []string{"_NET_WM_WINDOW_TYPE_TOOLTIP"}, nil) {
		t.Error("tooltip window type should never be decorated")
	}
}

func TestShouldDecorateNormalWindow(t *testing.T) {
	if !ShouldDecorate("Gedit", "gedit", "untitled document", []string{"_NET_WM_WINDOW_TYPE_NORMAL"}, nil) {
		t.Error("an ordinary normal-type window should be decorated by default")
	}
}

func TestButtonOfAndContains(t *testing.T) {
	fh := fhFixture()
	ref := FrameRef{FrameHandle: fh}

	if !ref.Contains(fh.Frame) || !ref.Contains(fh.Titlebar) || !ref.Contains(fh.CloseBtn) {
		t.Error("Contains must recognize frame, titlebar, and button windows")
	}
	if ref.Contains(9999) {
		t.Error("Contains must not recognize an unrelated window id")
	}

	if ref.ButtonOf(fh.CloseBtn) != ButtonClose {
		t.Error("ButtonOf must identify the close button")
	}
	if ref.ButtonOf(fh.MaxBtn) != ButtonMaximize {
		t.Error("ButtonOf must identify the maximize button")
	}
	if ref.ButtonOf(fh.MinBtn) != ButtonMinimize {
		t.Error("ButtonOf must identify the minimize button")
	}
	if ref.ButtonOf(fh.Titlebar) != ButtonNone {
		t.Error("ButtonOf must return ButtonNone for the titlebar itself")
	}
}
