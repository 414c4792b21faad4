//go:build darwin

package system

import (
	"golang.design/x/hotkey"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// modifierMap maps native modifiers to the Carbon modifiers used on macOS.
var modifierMap = map[keys.Modifier]hotkey.Modifier{
	keys.ModControl: hotkey.ModCtrl,
	keys.ModShift:   hotkey.ModShift,
	keys.ModOption:  hotkey.ModOption,
	keys.ModCommand: hotkey.ModCmd,
}
