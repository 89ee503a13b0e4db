package wm

import (
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// parseKeybinding turns a "Mod4+d"-style binding string into the keycode
// and modifier mask xgbutil's keybind package resolves it to, falling back
// to a bare numeric keycode for layouts where symbolic lookup fails.
func (c *Controller) parseKeybinding(s string) (xproto.Keycode, uint16, bool) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		return xproto.Keycode(code), 0, true
	}

	mods, keyName, err := keybind.ParseString(c.core.XU, s)
	if err != nil {
		return 0, 0, false
	}
	keysym := keybind.StrToKeysym(keyName)
	keycodes := keybind.KeysymToKeycodes(c.core.XU, keysym)
	if len(keycodes) == 0 {
		return 0, 0, false
	}
	return keycodes[0], mods, true
}
