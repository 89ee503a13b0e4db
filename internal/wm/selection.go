package wm

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// acquireSelection implements the ICCCM WM_S<screen> selection-ownership
// protocol: become the window manager by taking ownership of WM_S0 (screen
// 0, the only screen this core manages), waiting for a prior owner to
// relinquish it when -replace was given.
func (c *Controller) acquireSelection(replace bool) error {
	selAtom, err := xprop.Atm(c.core.XU, "WM_S0")
	if err != nil {
		return fmt.Errorf("interning WM_S0: %w", err)
	}

	ownerReply, err := xproto.GetSelectionOwner(c.core.Conn, selAtom).Reply()
	if err != nil {
		return fmt.Errorf("querying current selection owner: %w", err)
	}
	priorOwner := ownerReply.Owner

	if priorOwner != 0 && !replace {
		return fmt.Errorf("another window manager is already running")
	}

	selWin, err := xproto.NewWindowId(c.core.Conn)
	if err != nil {
		return fmt.Errorf("allocating selection window id: %w", err)
	}
	if err := xproto.CreateWindowChecked(c.core.Conn, c.core.Screen.RootDepth, selWin, c.core.Root,
		-1, -1, 1, 1, 0, xproto.WindowClassInputOutput, c.core.Screen.RootVisual, 0, nil).Check(); err != nil {
		return fmt.Errorf("creating selection window: %w", err)
	}

	if priorOwner != 0 {
		xproto.ChangeWindowAttributesChecked(c.core.Conn, priorOwner,
			xproto.CwEventMask, []uint32{xproto.EventMaskStructureNotify}).Check()
	}

	if err := xproto.SetSelectionOwnerChecked(c.core.Conn, selWin, selAtom, xproto.TimeCurrentTime).Check(); err != nil {
		return fmt.Errorf("acquiring WM_S0 selection: %w", err)
	}

	if priorOwner != 0 {
		deadline := time.Now().Add(15 * time.Second)
		for time.Now().Before(deadline) {
			attr, err := xproto.GetWindowAttributes(c.core.Conn, priorOwner).Reply()
			if err != nil || attr == nil {
				break // prior owner's window is gone
			}
			time.Sleep(50 * time.Millisecond)
		}
	}

	return nil
}
