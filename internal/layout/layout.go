// Package layout converts between virtual keycodes and characters using a
// keyboard layout table. Two table formats are supported: the legacy fixed
// array format (KCHR) and the rule-based format (uchr) with dead-key state
// machines.
package layout

import (
	"errors"
	"fmt"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// ErrDataFormat is returned when a layout blob is truncated or carries the
// wrong format signature.
var ErrDataFormat = errors.New("malformed keyboard layout data")

// Format identifies the binary layout format.
type Format int

const (
	FormatLegacy Format = iota // KCHR
	FormatRules                // uchr
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "kchr"
	case FormatRules:
		return "uchr"
	default:
		return "unknown"
	}
}

// MaxKeycode bounds the keycode space scanned by reverse lookups.
const MaxKeycode keys.Keycode = 128

// keyTable is implemented by each layout format. State 0 is the idle state;
// any other state is a pending dead key.
type keyTable interface {
	// translate returns the characters emitted by pressing k with the given
	// Carbon modifiers while in state, and the state that follows.
	translate(k keys.Keycode, carbon uint32, state uint32) ([]keys.Char, uint32)
	// terminator returns what the layout emits when state cannot continue.
	terminator(state uint32) []keys.Char
}

// Context wraps one parsed layout. The zero value is usable and resolves
// nothing.
type Context struct {
	format  Format
	table   keyTable
	reverse map[keys.Char][]keys.Keystroke
}

// New parses data in the given format. When reverse is true a
// character-to-keystrokes index is built up front; otherwise reverse lookups
// scan the keycode space on every call.
func New(format Format, data []byte, reverse bool) (*Context, error) {
	var (
		table keyTable
		err   error
	)
	switch format {
	case FormatLegacy:
		table, err = parseKCHR(data)
	case FormatRules:
		table, err = parseUchr(data)
	default:
		return nil, fmt.Errorf("layout format %d: %w", format, ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s layout: %w", format, err)
	}
	c := &Context{format: format, table: table}
	if reverse {
		c.reverse = buildReverseIndex(table)
	}
	return c, nil
}

// Format returns the format the context was built from.
func (c *Context) Format() Format {
	return c.format
}

// CharacterForKeycode returns the single character produced by pressing k
// with modifiers m. A dead key resolves to its terminator when the layout
// defines one; otherwise, and for keys producing more than one character, it
// returns keys.NilChar.
func (c *Context) CharacterForKeycode(k keys.Keycode, m keys.Modifier) keys.Char {
	if c == nil || c.table == nil {
		return keys.NilChar
	}
	return singleShot(c.table, k, m.ToCarbon())
}

// BaseCharacterForKeycode is CharacterForKeycode without modifiers.
func (c *Context) BaseCharacterForKeycode(k keys.Keycode) keys.Char {
	return c.CharacterForKeycode(k, 0)
}

// KeycodesForCharacter returns the keystroke sequence that types ch, or nil
// when ch is unreachable with this layout or the sequence is longer than max.
func (c *Context) KeycodesForCharacter(ch keys.Char, max int) []keys.Keystroke {
	if c == nil || c.table == nil || ch == keys.NilChar || max <= 0 {
		return nil
	}
	var seq []keys.Keystroke
	if c.reverse != nil {
		seq = c.reverse[ch]
	} else {
		seq = scanForCharacter(c.table, ch)
	}
	if len(seq) == 0 || len(seq) > max {
		return nil
	}
	out := make([]keys.Keystroke, len(seq))
	copy(out, seq)
	return out
}

// KeystrokesForCharacter returns every single keystroke that types ch,
// in the order KeycodesForCharacter prefers them. The modifier combinations
// tried are those of the reverse index, or the common ones (none, shift,
// option, shift+option) for a context built without it.
func (c *Context) KeystrokesForCharacter(ch keys.Char) []keys.Keystroke {
	if c == nil || c.table == nil || ch == keys.NilChar {
		return nil
	}
	mods := commonModifiers
	if c.reverse != nil {
		mods = indexModifiers
	}
	var out []keys.Keystroke
	for _, m := range mods {
		carbon := m.ToCarbon()
		for k := keys.Keycode(0); k < MaxKeycode; k++ {
			if singleShot(c.table, k, carbon) == ch {
				out = append(out, keys.Keystroke{Keycode: k, Modifier: m})
			}
		}
	}
	return out
}

func singleShot(t keyTable, k keys.Keycode, carbon uint32) keys.Char {
	out, next := t.translate(k, carbon, 0)
	if next != 0 {
		out = t.terminator(next)
	}
	if len(out) != 1 {
		return keys.NilChar
	}
	return out[0]
}

// tableIndex maps Carbon modifiers to the byte used to select a table.
func tableIndex(carbon uint32) int {
	return int(carbon>>8) & 0xFF
}
