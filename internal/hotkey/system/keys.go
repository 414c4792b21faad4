package system

import (
	"fmt"

	"golang.design/x/hotkey"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// osKeys maps virtual keycodes to the keys the OS shortcut facility can
// register. Only keys with a portable constant are listed.
var osKeys = map[keys.Keycode]hotkey.Key{
	0x00: hotkey.KeyA, 0x0B: hotkey.KeyB, 0x08: hotkey.KeyC, 0x02: hotkey.KeyD,
	0x0E: hotkey.KeyE, 0x03: hotkey.KeyF, 0x05: hotkey.KeyG, 0x04: hotkey.KeyH,
	0x22: hotkey.KeyI, 0x26: hotkey.KeyJ, 0x28: hotkey.KeyK, 0x25: hotkey.KeyL,
	0x2E: hotkey.KeyM, 0x2D: hotkey.KeyN, 0x1F: hotkey.KeyO, 0x23: hotkey.KeyP,
	0x0C: hotkey.KeyQ, 0x0F: hotkey.KeyR, 0x01: hotkey.KeyS, 0x11: hotkey.KeyT,
	0x20: hotkey.KeyU, 0x09: hotkey.KeyV, 0x0D: hotkey.KeyW, 0x07: hotkey.KeyX,
	0x10: hotkey.KeyY, 0x06: hotkey.KeyZ,
	0x1D: hotkey.Key0, 0x12: hotkey.Key1, 0x13: hotkey.Key2, 0x14: hotkey.Key3,
	0x15: hotkey.Key4, 0x17: hotkey.Key5, 0x16: hotkey.Key6, 0x1A: hotkey.Key7,
	0x1C: hotkey.Key8, 0x19: hotkey.Key9,
	keys.KeyF1: hotkey.KeyF1, keys.KeyF2: hotkey.KeyF2, keys.KeyF3: hotkey.KeyF3,
	keys.KeyF4: hotkey.KeyF4, keys.KeyF5: hotkey.KeyF5, keys.KeyF6: hotkey.KeyF6,
	keys.KeyF7: hotkey.KeyF7, keys.KeyF8: hotkey.KeyF8, keys.KeyF9: hotkey.KeyF9,
	keys.KeyF10: hotkey.KeyF10, keys.KeyF11: hotkey.KeyF11, keys.KeyF12: hotkey.KeyF12,
	keys.KeyF13: hotkey.KeyF13, keys.KeyF14: hotkey.KeyF14, keys.KeyF15: hotkey.KeyF15,
	keys.KeyF16: hotkey.KeyF16, keys.KeyF17: hotkey.KeyF17, keys.KeyF18: hotkey.KeyF18,
	keys.KeyF19:        hotkey.KeyF19,
	keys.KeySpace:      hotkey.KeySpace,
	keys.KeyReturn:     hotkey.KeyReturn,
	keys.KeyTab:        hotkey.KeyTab,
	keys.KeyEscape:     hotkey.KeyEscape,
	keys.KeyDelete:     hotkey.KeyDelete,
	keys.KeyLeftArrow:  hotkey.KeyLeft,
	keys.KeyRightArrow: hotkey.KeyRight,
	keys.KeyUpArrow:    hotkey.KeyUp,
	keys.KeyDownArrow:  hotkey.KeyDown,
}

func osKey(k keys.Keycode) (hotkey.Key, error) {
	key, ok := osKeys[k]
	if !ok {
		return 0, fmt.Errorf("keycode %#x: %w", k, ErrUnsupportedKey)
	}
	return key, nil
}

// osModifiers maps a native mask through the per-platform modifierMap.
func osModifiers(m keys.Modifier) ([]hotkey.Modifier, error) {
	if extra := m &^ (keys.ModShift | keys.ModControl | keys.ModOption | keys.ModCommand); extra != 0 {
		return nil, fmt.Errorf("modifier %#x: %w", uint32(extra), ErrUnsupportedKey)
	}
	var mods []hotkey.Modifier
	for _, mod := range []keys.Modifier{keys.ModControl, keys.ModOption, keys.ModShift, keys.ModCommand} {
		if m.Has(mod) {
			mods = append(mods, modifierMap[mod])
		}
	}
	return mods, nil
}
