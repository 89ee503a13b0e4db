package x11core

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/damage"
)

// isDamageBadDamage isolates the damage-extension error type check so the
// main switch in IsDisappearedWindowError doesn't need the damage import
// sprinkled through it.
func isDamageBadDamage(err xgb.Error) bool {
	_, ok := err.(damage.BadDamageError)
	return ok
}
