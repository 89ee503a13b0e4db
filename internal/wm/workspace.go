// WorkspaceManager: virtual desktops, current/count/names, window
// visibility toggling on switch, and sticky handling. Grounded on
// original_source/src/wm/workspace.rs for the sticky/transient-follow
// update order.
package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/client"
)

type workspaceState struct {
	current int
	count   int
	names   []string
}

func newWorkspaceState(count int) *workspaceState {
	names := make([]string, count)
	for i := range names {
		names[i] = defaultWorkspaceName(i)
	}
	return &workspaceState{current: 0, count: count, names: names}
}

func defaultWorkspaceName(i int) string {
	return "Workspace " + string(rune('1'+i))
}

// SwitchWorkspace implements §4.G's switch contract: clients on the old
// workspace are unmapped, clients on the new workspace are mapped, sticky
// clients are untouched either way.
func (c *Controller) SwitchWorkspace(target int) {
	if target < 0 || target >= c.ws.count || target == c.ws.current {
		return
	}
	old := c.ws.current
	for _, cl := range c.clients {
		if cl.Flags.Has(client.FlagSticky) || cl.Workspace == client.AllWorkspaces {
			continue
		}
		if cl.Workspace == old {
			c.unmapForWorkspaceSwitch(cl)
		} else if cl.Workspace == target {
			c.mapForWorkspaceSwitch(cl)
		}
	}
	c.ws.current = target
	c.atoms.SetCurrentDesktop(target)
}

func (c *Controller) unmapForWorkspaceSwitch(cl *client.Client) {
	w := cl.ID
	if cl.Frame != nil {
		w = cl.Frame.Frame
	}
	c.bridge.MarkReparenting(w) // suppress the self-induced UnmapNotify
	xproto.UnmapWindowChecked(c.core.Conn, w).Check()
}

func (c *Controller) mapForWorkspaceSwitch(cl *client.Client) {
	w := cl.ID
	if cl.Frame != nil {
		w = cl.Frame.Frame
	}
	c.bridge.MarkReparenting(w)
	xproto.MapWindowChecked(c.core.Conn, w).Check()
}

// MoveClientToWorkspace moves cl and every transient referencing it to
// target, per §4.G.
func (c *Controller) MoveClientToWorkspace(cl *client.Client, target int) {
	cl.Workspace = target
	for _, other := range c.clients {
		if other.TransientFor == cl.ID {
			other.Workspace = target
		}
	}
	if target != c.ws.current && !cl.Flags.Has(client.FlagSticky) {
		c.unmapForWorkspaceSwitch(cl)
	}
}
