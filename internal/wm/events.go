// Run implements §4.L's main-loop tick contract on top of EventPump:
// flush, drain, dispatch, conditionally trigger a render, and the two
// periodic background tasks (orphan rescan, liveness render fallback).
// Grounded on other_examples' funkycode-marwind wm/wm.go Run() dispatch
// switch, generalized from its single blocking WaitForEvent to EventPump's
// batch-drain shape.
package wm

import (
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/fenestra-wm/fenestra/internal/bridge"
)

const (
	pumpPollTimeoutMs = 50
	orphanRescanEvery = 2 * time.Second
	renderFallback    = 1 * time.Second
)

// Run drains EventPump until stop is closed or the connection dies.
func (c *Controller) Run(stop <-chan struct{}) error {
	pump, err := NewEventPump(c.core)
	if err != nil {
		return err
	}
	defer pump.Close()

	lastRescan := time.Now()
	lastFallback := time.Now()

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		pump.Wait(pumpPollTimeoutMs)

		c.core.Flush()
		batch := pump.Drain()

		c.damagedThisTick = false
		for _, raw := range batch {
			if pe, ok := raw.(pumpError); ok {
				return pe.err
			}
			c.dispatch(raw)
		}
		if c.damagedThisTick {
			c.bridge.Send(bridge.Command{Kind: bridge.TriggerRender})
		}

		now := time.Now()
		if now.Sub(lastRescan) >= orphanRescanEvery {
			c.scanExisting()
			lastRescan = now
		}
		if now.Sub(lastFallback) >= renderFallback {
			c.bridge.Send(bridge.Command{Kind: bridge.TriggerRender})
			lastFallback = now
		}
	}
}

// dispatch routes a single X event to its §4.E handler, noting the event's
// timestamp and whether it should trigger a render.
func (c *Controller) dispatch(raw interface{}) {
	switch e := raw.(type) {
	case xproto.MapRequestEvent:
		c.manageWindow(e.Window, false)
		c.damagedThisTick = true

	case xproto.ConfigureRequestEvent:
		c.handleConfigureRequest(e)
		c.damagedThisTick = true

	case xproto.UnmapNotifyEvent:
		c.handleUnmapNotify(e.Window)
		c.damagedThisTick = true

	case xproto.DestroyNotifyEvent:
		c.handleDestroyNotify(e.Window)
		c.damagedThisTick = true

	case xproto.PropertyNotifyEvent:
		c.core.NoteTime(e.Time)
		c.handlePropertyNotify(e)

	case xproto.ClientMessageEvent:
		c.handleClientMessage(e)
		c.damagedThisTick = true

	case xproto.ButtonPressEvent:
		c.core.NoteTime(e.Time)
		c.handleButtonPress(e)

	case xproto.ButtonReleaseEvent:
		c.core.NoteTime(e.Time)
		c.handleButtonRelease(e)
		c.damagedThisTick = true

	case xproto.MotionNotifyEvent:
		c.core.NoteTime(e.Time)
		c.handleMotionNotify(e)
		c.damagedThisTick = true

	case xproto.KeyPressEvent:
		c.core.NoteTime(e.Time)
		c.handleKeyPress(e)

	case xproto.EnterNotifyEvent:
		c.core.NoteTime(e.Time)
		c.handleEnterNotify(e)

	case xproto.MappingNotifyEvent:
		// Keyboard mapping changed; re-grab the launcher key under the new
		// mapping so it keeps firing after a layout switch.
		if err := c.grabLauncherKey(); err != nil {
			log.Warn("re-grabbing launcher key after mapping change: %v", err)
		}
	}
}

// handleKeyPress fires the launcher when the grabbed key/modifier
// combination matches.
func (c *Controller) handleKeyPress(e xproto.KeyPressEvent) {
	if e.Detail == c.launcherKeycode && e.State == c.launcherModifiers {
		c.runLauncher()
	}
}

// handleEnterNotify implements focus-follows-mouse/sloppy focus: under
// click_to_focus, pointer movement never changes focus.
func (c *Controller) handleEnterNotify(e xproto.EnterNotifyEvent) {
	mode := c.cfg.WindowManager.Behavior.FocusMode
	if mode != "focus_follows_mouse" && mode != "sloppy_focus" {
		return
	}
	cl, ok := c.lookupChrome(e.Event)
	if !ok {
		return
	}
	if c.shouldGrantFocus(cl, focusSourceUser, e.Time) {
		c.setFocus(cl)
	}
}
