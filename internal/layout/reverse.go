package layout

import (
	"math/bits"
	"sort"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// commonModifiers are tried first, in order, by every reverse lookup.
var commonModifiers = []keys.Modifier{
	0,
	keys.ModShift,
	keys.ModOption,
	keys.ModShift | keys.ModOption,
}

// indexModifiers is the cross product of shift, option, control and command
// with the common combinations first and the rest by number of modifiers.
var indexModifiers = func() []keys.Modifier {
	base := []keys.Modifier{keys.ModShift, keys.ModOption, keys.ModControl, keys.ModCommand}
	seen := make(map[keys.Modifier]bool)
	out := append([]keys.Modifier(nil), commonModifiers...)
	for _, m := range out {
		seen[m] = true
	}
	var rest []keys.Modifier
	for mask := 0; mask < 1<<len(base); mask++ {
		var m keys.Modifier
		for i, b := range base {
			if mask&(1<<i) != 0 {
				m |= b
			}
		}
		if !seen[m] {
			rest = append(rest, m)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return bits.OnesCount32(uint32(rest[i])) < bits.OnesCount32(uint32(rest[j]))
	})
	return append(out, rest...)
}()

type deadStart struct {
	stroke keys.Keystroke
	state  uint32
}

// buildReverseIndex records, for every character the layout can type, the
// first keystroke sequence found. Single keystrokes win over dead-key
// sequences and fewer modifiers win over more.
func buildReverseIndex(t keyTable) map[keys.Char][]keys.Keystroke {
	index := make(map[keys.Char][]keys.Keystroke)
	add := func(c keys.Char, seq ...keys.Keystroke) {
		if c == keys.NilChar {
			return
		}
		if _, ok := index[c]; !ok {
			index[c] = seq
		}
	}

	var dead []deadStart
	for _, m := range indexModifiers {
		carbon := m.ToCarbon()
		for k := keys.Keycode(0); k < MaxKeycode; k++ {
			out, next := t.translate(k, carbon, 0)
			stroke := keys.Keystroke{Keycode: k, Modifier: m}
			if next != 0 {
				dead = append(dead, deadStart{stroke: stroke, state: next})
				out = t.terminator(next)
			}
			if len(out) == 1 {
				add(out[0], stroke)
			}
		}
	}

	for _, d := range dead {
		for _, m := range indexModifiers {
			carbon := m.ToCarbon()
			for k := keys.Keycode(0); k < MaxKeycode; k++ {
				out, next := t.translate(k, carbon, d.state)
				if next != 0 || len(out) != 1 {
					continue
				}
				add(out[0], d.stroke, keys.Keystroke{Keycode: k, Modifier: m})
			}
		}
	}
	return index
}

// scanForCharacter is the index-free lookup: the first single keystroke
// over the common modifier combinations that produces c.
func scanForCharacter(t keyTable, c keys.Char) []keys.Keystroke {
	for _, m := range commonModifiers {
		carbon := m.ToCarbon()
		for k := keys.Keycode(0); k < MaxKeycode; k++ {
			if singleShot(t, k, carbon) == c {
				return []keys.Keystroke{{Keycode: k, Modifier: m}}
			}
		}
	}
	return nil
}
