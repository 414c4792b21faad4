package hotkey

import (
	"fmt"
	"strings"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// ParseModifiers converts modifier names to a native mask.
func ParseModifiers(names []string) (keys.Modifier, error) {
	var m keys.Modifier
	for _, name := range names {
		mod, ok := modifierNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown modifier: %q (available: ctrl, shift, alt, cmd)", name)
		}
		m |= mod
	}
	return m, nil
}

var modifierNames = map[string]keys.Modifier{
	"ctrl":    keys.ModControl,
	"control": keys.ModControl,
	"shift":   keys.ModShift,
	"alt":     keys.ModOption,
	"opt":     keys.ModOption,
	"option":  keys.ModOption,
	"cmd":     keys.ModCommand,
	"command": keys.ModCommand,
	"super":   keys.ModCommand,
	"win":     keys.ModCommand,
	"meta":    keys.ModCommand,
}

// KeycodeForCode converts a browser KeyboardEvent.code, such as "KeyR",
// "F5" or "Space", to a virtual keycode.
func KeycodeForCode(code string) (keys.Keycode, error) {
	k, ok := jsCodes[code]
	if !ok {
		return keys.InvalidKeycode, fmt.Errorf("unsupported key code: %q", code)
	}
	return k, nil
}

// CharacterForCode returns the character code types on a US layout, the
// reference layout of KeyboardEvent.code. It stands in for the layout
// when none is available.
func CharacterForCode(code string) keys.Char {
	k, ok := jsCodes[code]
	if !ok {
		return keys.NilChar
	}
	if c, ok := keys.SpecialCharacter(k); ok {
		return c
	}
	switch {
	case strings.HasPrefix(code, "Key"):
		return keys.Char(code[3] - 'A' + 'a')
	case strings.HasPrefix(code, "Digit"):
		return keys.Char(code[5])
	}
	if c, ok := usPunctuation[code]; ok {
		return c
	}
	return keys.NilChar
}

var usPunctuation = map[string]keys.Char{
	"Minus": '-', "Equal": '=', "BracketLeft": '[', "BracketRight": ']',
	"Backslash": '\\', "Semicolon": ';', "Quote": '\'', "Comma": ',',
	"Period": '.', "Slash": '/', "Backquote": '`',
}

var jsCodes = map[string]keys.Keycode{
	"KeyA": 0x00, "KeyB": 0x0B, "KeyC": 0x08, "KeyD": 0x02,
	"KeyE": 0x0E, "KeyF": 0x03, "KeyG": 0x05, "KeyH": 0x04,
	"KeyI": 0x22, "KeyJ": 0x26, "KeyK": 0x28, "KeyL": 0x25,
	"KeyM": 0x2E, "KeyN": 0x2D, "KeyO": 0x1F, "KeyP": 0x23,
	"KeyQ": 0x0C, "KeyR": 0x0F, "KeyS": 0x01, "KeyT": 0x11,
	"KeyU": 0x20, "KeyV": 0x09, "KeyW": 0x0D, "KeyX": 0x07,
	"KeyY": 0x10, "KeyZ": 0x06,
	"Digit0": 0x1D, "Digit1": 0x12, "Digit2": 0x13, "Digit3": 0x14,
	"Digit4": 0x15, "Digit5": 0x17, "Digit6": 0x16, "Digit7": 0x1A,
	"Digit8": 0x1C, "Digit9": 0x19,
	"Minus": 0x1B, "Equal": 0x18, "BracketLeft": 0x21, "BracketRight": 0x1E,
	"Backslash": 0x2A, "Semicolon": 0x29, "Quote": 0x27, "Comma": 0x2B,
	"Period": 0x2F, "Slash": 0x2C, "Backquote": 0x32,
	"F1": keys.KeyF1, "F2": keys.KeyF2, "F3": keys.KeyF3, "F4": keys.KeyF4,
	"F5": keys.KeyF5, "F6": keys.KeyF6, "F7": keys.KeyF7, "F8": keys.KeyF8,
	"F9": keys.KeyF9, "F10": keys.KeyF10, "F11": keys.KeyF11, "F12": keys.KeyF12,
	"F13": keys.KeyF13, "F14": keys.KeyF14, "F15": keys.KeyF15, "F16": keys.KeyF16,
	"F17": keys.KeyF17, "F18": keys.KeyF18, "F19": keys.KeyF19,
	"Space":      keys.KeySpace,
	"Enter":      keys.KeyReturn,
	"Tab":        keys.KeyTab,
	"Escape":     keys.KeyEscape,
	"Backspace":  keys.KeyDelete,
	"ArrowLeft":  keys.KeyLeftArrow,
	"ArrowRight": keys.KeyRightArrow,
	"ArrowUp":    keys.KeyUpArrow,
	"ArrowDown":  keys.KeyDownArrow,
}
