//go:build linux

package system

import (
	"golang.design/x/hotkey"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// modifierMap maps native modifiers to X11 modifiers.
var modifierMap = map[keys.Modifier]hotkey.Modifier{
	keys.ModControl: hotkey.ModCtrl,
	keys.ModShift:   hotkey.ModShift,
	keys.ModOption:  hotkey.Mod1, // Alt
	keys.ModCommand: hotkey.Mod4, // Super
}
