package layout

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// KCHR blobs are big-endian:
//
//	u16 version
//	u8  modifier index -> table number [256]
//	u16 table count
//	u8  tables [count][128]      Mac OS Roman output bytes
//	u16 dead key count
//	dead key records:
//	  u8  table number
//	  u8  keycode
//	  u16 completor count
//	  {u8 completor, u8 substitute} [count]
//	  {u8 reserved, u8 no-match}
const (
	kchrTableSize    = 128
	kchrModifierSize = 256
	// Every KCHR resource Apple shipped is version 2.
	kchrMinVersion = 1
	kchrMaxVersion = 2
)

type kchrDeadKey struct {
	table      byte
	keycode    byte
	completors map[byte]byte
	noMatch    byte
}

type kchrTable struct {
	modifiers [kchrModifierSize]byte
	tables    [][kchrTableSize]byte
	deadKeys  []kchrDeadKey
}

func parseKCHR(data []byte) (*kchrTable, error) {
	r := reader{data: data, order: binary.BigEndian}
	version, ok := r.u16(0)
	if !ok {
		return nil, fmt.Errorf("header: %w", ErrDataFormat)
	}
	if version < kchrMinVersion || version > kchrMaxVersion {
		return nil, fmt.Errorf("version %#x: %w", version, ErrDataFormat)
	}
	off := 2
	mods, ok := r.bytes(off, kchrModifierSize)
	if !ok {
		return nil, fmt.Errorf("modifier table: %w", ErrDataFormat)
	}
	t := &kchrTable{}
	copy(t.modifiers[:], mods)
	off += kchrModifierSize

	count, ok := r.u16(off)
	if !ok || count == 0 {
		return nil, fmt.Errorf("table count: %w", ErrDataFormat)
	}
	off += 2
	t.tables = make([][kchrTableSize]byte, count)
	for i := range t.tables {
		b, ok := r.bytes(off, kchrTableSize)
		if !ok {
			return nil, fmt.Errorf("table %d: %w", i, ErrDataFormat)
		}
		copy(t.tables[i][:], b)
		off += kchrTableSize
	}
	for i, n := range t.modifiers {
		if int(n) >= len(t.tables) {
			return nil, fmt.Errorf("modifier index %d selects table %d of %d: %w", i, n, len(t.tables), ErrDataFormat)
		}
	}

	// The dead key section is optional in older resources.
	deadCount, ok := r.u16(off)
	if !ok {
		return t, nil
	}
	off += 2
	for i := 0; i < int(deadCount); i++ {
		hdr, ok := r.bytes(off, 4)
		if !ok {
			return nil, fmt.Errorf("dead key %d: %w", i, ErrDataFormat)
		}
		dk := kchrDeadKey{
			table:      hdr[0],
			keycode:    hdr[1],
			completors: make(map[byte]byte),
		}
		n := int(r.order.Uint16(hdr[2:]))
		off += 4
		pairs, ok := r.bytes(off, n*2+2)
		if !ok {
			return nil, fmt.Errorf("dead key %d completors: %w", i, ErrDataFormat)
		}
		for j := 0; j < n; j++ {
			dk.completors[pairs[j*2]] = pairs[j*2+1]
		}
		dk.noMatch = pairs[n*2+1]
		off += n*2 + 2
		t.deadKeys = append(t.deadKeys, dk)
	}
	return t, nil
}

func (t *kchrTable) tableFor(carbon uint32) int {
	return int(t.modifiers[tableIndex(carbon)])
}

func (t *kchrTable) translate(k keys.Keycode, carbon uint32, state uint32) ([]keys.Char, uint32) {
	if k >= kchrTableSize {
		return nil, 0
	}
	table := t.tableFor(carbon)
	if state != 0 {
		dk := t.deadKeys[state-1]
		b := t.tables[table][k]
		if sub, ok := dk.completors[b]; ok {
			return decodeMacRoman(sub), 0
		}
		// not a completor: emit the pending dead key, then process k normally
		out := decodeMacRoman(dk.noMatch)
		next, nextState := t.translate(k, carbon, 0)
		return append(out, next...), nextState
	}
	for i, dk := range t.deadKeys {
		if int(dk.table) == table && keys.Keycode(dk.keycode) == k {
			return nil, uint32(i + 1)
		}
	}
	return decodeMacRoman(t.tables[table][k]), 0
}

func (t *kchrTable) terminator(state uint32) []keys.Char {
	if state == 0 || int(state) > len(t.deadKeys) {
		return nil
	}
	return decodeMacRoman(t.deadKeys[state-1].noMatch)
}

// decodeMacRoman turns one output byte into a character. Zero is "no
// output".
func decodeMacRoman(b byte) []keys.Char {
	if b == 0 {
		return nil
	}
	r := charmap.Macintosh.DecodeByte(b)
	if r > 0xFFFF {
		return nil
	}
	return []keys.Char{keys.Char(r)}
}
