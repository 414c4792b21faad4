// Package layouttest builds synthetic keyboard layout blobs for tests.
package layouttest

import (
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
)

// KCHRDeadKey describes one legacy dead key. Completors map the base
// character of the second key to its substitute.
type KCHRDeadKey struct {
	Table      byte
	Keycode    byte
	Completors map[rune]rune
	NoMatch    rune
}

// KCHR is a legacy layout under construction. Tables hold Unicode and are
// encoded to Mac OS Roman by Bytes.
type KCHR struct {
	Modifiers [256]byte
	Tables    [][128]rune
	DeadKeys  []KCHRDeadKey
}

func macRoman(r rune) byte {
	if r == 0 {
		return 0
	}
	b, ok := charmap.Macintosh.EncodeRune(r)
	if !ok {
		panic("layouttest: rune not in Mac OS Roman")
	}
	return b
}

// Bytes encodes the layout big-endian.
func (k *KCHR) Bytes() []byte {
	be := binary.BigEndian
	out := be.AppendUint16(nil, 2)
	out = append(out, k.Modifiers[:]...)
	out = be.AppendUint16(out, uint16(len(k.Tables)))
	for _, table := range k.Tables {
		for _, r := range table {
			out = append(out, macRoman(r))
		}
	}
	out = be.AppendUint16(out, uint16(len(k.DeadKeys)))
	for _, dk := range k.DeadKeys {
		out = append(out, dk.Table, dk.Keycode)
		out = be.AppendUint16(out, uint16(len(dk.Completors)))
		for from, to := range dk.Completors {
			out = append(out, macRoman(from), macRoman(to))
		}
		out = append(out, 0, macRoman(dk.NoMatch))
	}
	return out
}

// UchrTerminal is a terminal state entry: in state State, emit Out.
type UchrTerminal struct {
	State uint16
	Out   uint16
}

// UchrRange is a range state entry.
type UchrRange struct {
	Start uint16
	Span  uint8
	Mult  uint8
	Out   uint16
	Next  uint16
}

// UchrState is one state record. Only one of Terminal or Range is used.
type UchrState struct {
	ZeroOut  uint16
	ZeroNext uint16
	Terminal []UchrTerminal
	Range    []UchrRange
}

// Uchr is a rule-based layout under construction.
type Uchr struct {
	Modifiers    []byte
	DefaultTable uint16
	Tables       [][]uint16
	States       []UchrState
	Terminators  []uint16
	Sequences    [][]uint16
}

// Output value helpers for Uchr tables.
func StateOutput(i int) uint16    { return 0x4000 | uint16(i) }
func SequenceOutput(i int) uint16 { return 0x8000 | uint16(i) }

const uchrHeaderSize = 12 + 28

// Bytes encodes the layout little-endian with a single keyboard type.
func (u *Uchr) Bytes() []byte {
	le := binary.LittleEndian
	buf := make([]byte, uchrHeaderSize)
	le.PutUint16(buf[0:], 0x1002)
	le.PutUint32(buf[8:], 1)
	var offsets [5]uint32

	align := func() {
		for len(buf)%4 != 0 {
			buf = append(buf, 0)
		}
	}

	offsets[0] = uint32(len(buf))
	buf = le.AppendUint16(buf, 0x2001)
	buf = le.AppendUint16(buf, u.DefaultTable)
	buf = le.AppendUint32(buf, uint32(len(u.Modifiers)))
	buf = append(buf, u.Modifiers...)
	align()

	offsets[1] = uint32(len(buf))
	size := 0
	for _, t := range u.Tables {
		size = max(size, len(t))
	}
	buf = le.AppendUint16(buf, 0x3001)
	buf = le.AppendUint16(buf, uint16(size))
	buf = le.AppendUint32(buf, uint32(len(u.Tables)))
	patch := len(buf)
	buf = append(buf, make([]byte, 4*len(u.Tables))...)
	for i, t := range u.Tables {
		le.PutUint32(buf[patch+i*4:], uint32(len(buf)))
		for k := 0; k < size; k++ {
			v := uint16(0xFFFF)
			if k < len(t) {
				v = t[k]
			}
			buf = le.AppendUint16(buf, v)
		}
	}
	align()

	if len(u.States) > 0 {
		offsets[2] = uint32(len(buf))
		buf = le.AppendUint16(buf, 0x4001)
		buf = le.AppendUint16(buf, uint16(len(u.States)))
		patch := len(buf)
		buf = append(buf, make([]byte, 4*len(u.States))...)
		for i, s := range u.States {
			le.PutUint32(buf[patch+i*4:], uint32(len(buf)))
			buf = le.AppendUint16(buf, s.ZeroOut)
			buf = le.AppendUint16(buf, s.ZeroNext)
			if len(s.Range) > 0 {
				buf = le.AppendUint16(buf, uint16(len(s.Range)))
				buf = le.AppendUint16(buf, 2)
				for _, e := range s.Range {
					buf = le.AppendUint16(buf, e.Start)
					buf = append(buf, e.Span, e.Mult)
					buf = le.AppendUint16(buf, e.Out)
					buf = le.AppendUint16(buf, e.Next)
				}
				continue
			}
			buf = le.AppendUint16(buf, uint16(len(s.Terminal)))
			buf = le.AppendUint16(buf, 1)
			for _, e := range s.Terminal {
				buf = le.AppendUint16(buf, e.State)
				buf = le.AppendUint16(buf, e.Out)
			}
		}
		align()
	}

	if len(u.Terminators) > 0 {
		offsets[3] = uint32(len(buf))
		buf = le.AppendUint16(buf, 0x5001)
		buf = le.AppendUint16(buf, uint16(len(u.Terminators)))
		for _, v := range u.Terminators {
			buf = le.AppendUint16(buf, v)
		}
		align()
	}

	if len(u.Sequences) > 0 {
		offsets[4] = uint32(len(buf))
		buf = le.AppendUint16(buf, 0x6001)
		buf = le.AppendUint16(buf, uint16(len(u.Sequences)))
		rel := 4 + 2*(len(u.Sequences)+1)
		for _, s := range u.Sequences {
			buf = le.AppendUint16(buf, uint16(rel))
			rel += 2 * len(s)
		}
		buf = le.AppendUint16(buf, uint16(rel))
		for _, s := range u.Sequences {
			for _, c := range s {
				buf = le.AppendUint16(buf, c)
			}
		}
		align()
	}

	for i, off := range offsets {
		le.PutUint32(buf[12+8+i*4:], off)
	}
	return buf
}
