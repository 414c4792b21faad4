package keystroke

import (
	"fmt"
	"strings"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// KeyName carries the identifiers other input stacks use for a virtual
// keycode.
type KeyName struct {
	VK     uint16 // Windows virtual key
	Keysym string // X11 keysym name
	Usage  byte   // USB HID keyboard page usage
}

// LookupKey returns the foreign names of k.
func LookupKey(k keys.Keycode) (KeyName, bool) {
	n, ok := keyNames[k]
	return n, ok
}

func letter(c byte) KeyName {
	return KeyName{VK: uint16(c), Keysym: strings.ToLower(string(c)), Usage: 0x04 + c - 'A'}
}

func digit(d byte) KeyName {
	usage := 0x1D + d
	if d == 0 {
		usage = 0x27
	}
	return KeyName{VK: uint16('0' + d), Keysym: string('0' + d), Usage: usage}
}

func function(n int) KeyName {
	usage := byte(0x39 + n)
	if n > 12 {
		usage = byte(0x68 + n - 13)
	}
	return KeyName{VK: uint16(0x6F + n), Keysym: fmt.Sprintf("F%d", n), Usage: usage}
}

// keyNames covers the ANSI block and the special keys.
var keyNames = map[keys.Keycode]KeyName{
	0x00: letter('A'), 0x0B: letter('B'), 0x08: letter('C'), 0x02: letter('D'),
	0x0E: letter('E'), 0x03: letter('F'), 0x05: letter('G'), 0x04: letter('H'),
	0x22: letter('I'), 0x26: letter('J'), 0x28: letter('K'), 0x25: letter('L'),
	0x2E: letter('M'), 0x2D: letter('N'), 0x1F: letter('O'), 0x23: letter('P'),
	0x0C: letter('Q'), 0x0F: letter('R'), 0x01: letter('S'), 0x11: letter('T'),
	0x20: letter('U'), 0x09: letter('V'), 0x0D: letter('W'), 0x07: letter('X'),
	0x10: letter('Y'), 0x06: letter('Z'),

	0x1D: digit(0), 0x12: digit(1), 0x13: digit(2), 0x14: digit(3), 0x15: digit(4),
	0x17: digit(5), 0x16: digit(6), 0x1A: digit(7), 0x1C: digit(8), 0x19: digit(9),

	0x1B: {VK: 0xBD, Keysym: "minus", Usage: 0x2D},
	0x18: {VK: 0xBB, Keysym: "equal", Usage: 0x2E},
	0x21: {VK: 0xDB, Keysym: "bracketleft", Usage: 0x2F},
	0x1E: {VK: 0xDD, Keysym: "bracketright", Usage: 0x30},
	0x2A: {VK: 0xDC, Keysym: "backslash", Usage: 0x31},
	0x29: {VK: 0xBA, Keysym: "semicolon", Usage: 0x33},
	0x27: {VK: 0xDE, Keysym: "apostrophe", Usage: 0x34},
	0x32: {VK: 0xC0, Keysym: "grave", Usage: 0x35},
	0x2B: {VK: 0xBC, Keysym: "comma", Usage: 0x36},
	0x2F: {VK: 0xBE, Keysym: "period", Usage: 0x37},
	0x2C: {VK: 0xBF, Keysym: "slash", Usage: 0x38},

	keys.KeyF1: function(1), keys.KeyF2: function(2), keys.KeyF3: function(3),
	keys.KeyF4: function(4), keys.KeyF5: function(5), keys.KeyF6: function(6),
	keys.KeyF7: function(7), keys.KeyF8: function(8), keys.KeyF9: function(9),
	keys.KeyF10: function(10), keys.KeyF11: function(11), keys.KeyF12: function(12),
	keys.KeyF13: function(13), keys.KeyF14: function(14), keys.KeyF15: function(15),
	keys.KeyF16: function(16), keys.KeyF17: function(17), keys.KeyF18: function(18),
	keys.KeyF19: function(19),

	keys.KeyReturn:        {VK: 0x0D, Keysym: "Return", Usage: 0x28},
	keys.KeyEnter:         {VK: 0x0D, Keysym: "KP_Enter", Usage: 0x58},
	keys.KeyEscape:        {VK: 0x1B, Keysym: "Escape", Usage: 0x29},
	keys.KeyDelete:        {VK: 0x08, Keysym: "BackSpace", Usage: 0x2A},
	keys.KeyTab:           {VK: 0x09, Keysym: "Tab", Usage: 0x2B},
	keys.KeySpace:         {VK: 0x20, Keysym: "space", Usage: 0x2C},
	keys.KeyHelp:          {VK: 0x2F, Keysym: "Help", Usage: 0x75},
	keys.KeyHome:          {VK: 0x24, Keysym: "Home", Usage: 0x4A},
	keys.KeyPageUp:        {VK: 0x21, Keysym: "Prior", Usage: 0x4B},
	keys.KeyForwardDelete: {VK: 0x2E, Keysym: "Delete", Usage: 0x4C},
	keys.KeyEnd:           {VK: 0x23, Keysym: "End", Usage: 0x4D},
	keys.KeyPageDown:      {VK: 0x22, Keysym: "Next", Usage: 0x4E},
	keys.KeyRightArrow:    {VK: 0x27, Keysym: "Right", Usage: 0x4F},
	keys.KeyLeftArrow:     {VK: 0x25, Keysym: "Left", Usage: 0x50},
	keys.KeyDownArrow:     {VK: 0x28, Keysym: "Down", Usage: 0x51},
	keys.KeyUpArrow:       {VK: 0x26, Keysym: "Up", Usage: 0x52},
	keys.KeyClearLine:     {VK: 0x0C, Keysym: "Clear", Usage: 0x9C},
}

// modifierNames lists the modifiers a poster can hold, in press order.
var modifierNames = []struct {
	mod    keys.Modifier
	vk     uint16
	keysym string
	hid    byte
}{
	{keys.ModControl, 0x11, "ctrl", 0x01},
	{keys.ModShift, 0x10, "shift", 0x02},
	{keys.ModOption, 0x12, "alt", 0x04},
	{keys.ModCommand, 0x5B, "super", 0x08},
}

// HIDModifiers returns the modifier byte of a boot keyboard report.
func HIDModifiers(m keys.Modifier) byte {
	var b byte
	for _, n := range modifierNames {
		if m.Has(n.mod) {
			b |= n.hid
		}
	}
	return b
}

// xdotoolCombo returns the key argument xdotool understands, such as
// "ctrl+shift+a".
func xdotoolCombo(ks keys.Keystroke) (string, error) {
	n, ok := LookupKey(ks.Keycode)
	if !ok {
		return "", fmt.Errorf("keycode %#x: %w", ks.Keycode, ErrUnsupportedKey)
	}
	parts := make([]string, 0, len(modifierNames)+1)
	for _, m := range modifierNames {
		if ks.Modifier.Has(m.mod) {
			parts = append(parts, m.keysym)
		}
	}
	return strings.Join(append(parts, n.Keysym), "+"), nil
}

// windowsVKs returns the virtual keys to press, modifiers first.
func windowsVKs(ks keys.Keystroke) ([]uint16, error) {
	n, ok := LookupKey(ks.Keycode)
	if !ok {
		return nil, fmt.Errorf("keycode %#x: %w", ks.Keycode, ErrUnsupportedKey)
	}
	vks := make([]uint16, 0, len(modifierNames)+1)
	for _, m := range modifierNames {
		if ks.Modifier.Has(m.mod) {
			vks = append(vks, m.vk)
		}
	}
	return append(vks, n.VK), nil
}
