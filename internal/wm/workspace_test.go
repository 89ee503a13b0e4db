package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
)

func TestNewWorkspaceStateNamesDefaults(t *testing.T) {
	ws := newWorkspaceState(3)
	want := []string{"Workspace 1", "Workspace 2", "Workspace 3"}
	for i, w := range want {
		if ws.names[i] != w {
			t.Errorf("names[%d] = %q, want %q", i, ws.names[i], w)
		}
	}
	if ws.current != 0 {
		t.Errorf("initial current workspace = %d, want 0", ws.current)
	}
}

// MoveClientToWorkspace's transient-follow step is exercised with the
// moved client marked sticky so the (core-connection-dependent) unmap path
// is skipped while the workspace field still changes.
func TestMoveClientToWorkspaceMovesTransients(t *testing.T) {
	c := &Controller{ws: newWorkspaceState(2)}
	parent := &client.Client{ID: 1, Workspace: 0}
	parent.Flags |= client.FlagSticky
	child := &client.Client{ID: 2, Workspace: 0, TransientFor: 1}
	unrelated := &client.Client{ID: 3, Workspace: 0, TransientFor: 99}
	c.clients = map[xproto.Window]*client.Client{1: parent, 2: child, 3: unrelated}

	c.MoveClientToWorkspace(parent, 1)

	if parent.Workspace != 1 {
		t.Errorf("parent workspace = %d, want 1", parent.Workspace)
	}
	if child.Workspace != 1 {
		t.Errorf("transient child must follow its parent's new workspace, got %d", child.Workspace)
	}
	if unrelated.Workspace != 0 {
		t.Error("a transient of a different window must not move")
	}
}
