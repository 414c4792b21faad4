// Package keymap caches the keymap of the current keyboard layout and
// resolves keycodes and characters through it. Keys that do not depend on
// the layout (function, navigation and editing keys) are resolved first
// through a fixed table.
package keymap

import (
	"bytes"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/layout"
)

// KeyMap is an immutable snapshot of one keyboard layout. A nil *KeyMap
// still resolves special keys and returns sentinels for everything else.
type KeyMap struct {
	id   string
	name string
	data []byte
	ctx  *layout.Context
}

// New builds a keymap from a source, preferring legacy data when both
// formats are present.
func New(src Source) (*KeyMap, error) {
	format, data := layout.FormatRules, src.Rules
	if len(src.Legacy) > 0 {
		format, data = layout.FormatLegacy, src.Legacy
	}
	if len(data) == 0 {
		return nil, ErrNoLayout
	}
	ctx, err := layout.New(format, data, true)
	if err != nil {
		return nil, err
	}
	return &KeyMap{id: src.ID, name: src.LocalizedName, data: data, ctx: ctx}, nil
}

// SameLayout reports whether km and other were built from the same input
// source and layout data. A layout file rewritten in place keeps its ID
// but not its data.
func (km *KeyMap) SameLayout(other *KeyMap) bool {
	if km == nil || other == nil {
		return km == other
	}
	return km.id == other.id && bytes.Equal(km.data, other.data)
}

// ID returns the input source identifier.
func (km *KeyMap) ID() string {
	if km == nil {
		return ""
	}
	return km.id
}

// LocalizedName returns the display name of the input source.
func (km *KeyMap) LocalizedName() string {
	if km == nil {
		return ""
	}
	return km.name
}

func (km *KeyMap) CharacterForKeycode(k keys.Keycode, m keys.Modifier) keys.Char {
	if c, ok := keys.SpecialCharacter(k); ok {
		return c
	}
	if km == nil {
		return keys.NilChar
	}
	return km.ctx.CharacterForKeycode(k, m)
}

func (km *KeyMap) BaseCharacterForKeycode(k keys.Keycode) keys.Char {
	return km.CharacterForKeycode(k, 0)
}

// KeycodesForCharacter returns the keystrokes that type c, at most max of
// them, or nil.
func (km *KeyMap) KeycodesForCharacter(c keys.Char, max int) []keys.Keystroke {
	if max <= 0 {
		return nil
	}
	if k, ok := keys.SpecialKeycode(c); ok {
		return []keys.Keystroke{{Keycode: k}}
	}
	if km == nil {
		return nil
	}
	return km.ctx.KeycodesForCharacter(c, max)
}

// KeystrokesForCharacter returns every single keystroke that types c on
// the layout, preferred first. KeycodesForCharacter returns only the
// preferred sequence.
func (km *KeyMap) KeystrokesForCharacter(c keys.Char) []keys.Keystroke {
	if k, ok := keys.SpecialKeycode(c); ok {
		return []keys.Keystroke{{Keycode: k}}
	}
	if km == nil {
		return nil
	}
	return km.ctx.KeystrokesForCharacter(c)
}

// KeycodeForCharacter returns the single keystroke that types c, or
// keys.InvalidKeycode when c needs more than one keystroke or is not on the
// layout.
func (km *KeyMap) KeycodeForCharacter(c keys.Char) (keys.Keycode, keys.Modifier) {
	seq := km.KeycodesForCharacter(c, 1)
	if len(seq) != 1 {
		return keys.InvalidKeycode, 0
	}
	return seq[0].Keycode, seq[0].Modifier
}
