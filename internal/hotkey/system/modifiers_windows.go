//go:build windows

package system

import (
	"golang.design/x/hotkey"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// modifierMap maps native modifiers to Win32 hotkey modifiers.
var modifierMap = map[keys.Modifier]hotkey.Modifier{
	keys.ModControl: hotkey.ModCtrl,
	keys.ModShift:   hotkey.ModShift,
	keys.ModOption:  hotkey.ModAlt,
	keys.ModCommand: hotkey.ModWin,
}
