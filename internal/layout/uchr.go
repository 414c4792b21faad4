package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// Section signatures of a uchr blob. All integers are little-endian and all
// offsets are relative to the start of the blob unless noted.
const (
	uchrHeaderFormat       = 0x1002
	uchrModifiersFormat    = 0x2001
	uchrCharTableFormat    = 0x3001
	uchrStateRecordsFormat = 0x4001
	uchrTerminatorsFormat  = 0x5001
	uchrSequenceFormat     = 0x6001
)

// Output values in character tables and state records.
const (
	outputKindMask  = 0xC000
	outputStateKind = 0x4000
	outputSeqKind   = 0x8000
	outputIndexMask = 0x3FFF
	outputInvalid   = 0xFFFE
	outputNone      = 0xFFFF
)

const (
	stateEntryTerminal = 1
	stateEntryRange    = 2
)

type stateEntry struct {
	start uint16 // current state, or first state of a range
	span  uint8
	mult  uint8
	out   uint16
	next  uint16
}

type stateRecord struct {
	zeroOut  uint16
	zeroNext uint16
	format   uint16
	entries  []stateEntry
}

type uchrTable struct {
	defaultTable uint16
	modifiers    []byte
	charTables   [][]uint16
	states       []stateRecord
	terminators  []uint16
	sequences    [][]keys.Char
}

func parseUchr(data []byte) (*uchrTable, error) {
	r := reader{data: data, order: binary.LittleEndian}
	format, ok := r.u16(0)
	if !ok || format != uchrHeaderFormat {
		return nil, fmt.Errorf("header: %w", ErrDataFormat)
	}
	typeCount, ok := r.u32(8)
	if !ok || typeCount == 0 {
		return nil, fmt.Errorf("keyboard type count: %w", ErrDataFormat)
	}
	// first keyboard type header: first, last, then five section offsets
	hdr, ok := r.bytes(12, 28)
	if !ok {
		return nil, fmt.Errorf("keyboard type header: %w", ErrDataFormat)
	}
	var off [5]int
	for i := range off {
		off[i] = int(r.order.Uint32(hdr[8+i*4:]))
	}
	t := &uchrTable{}
	if err := t.parseModifiers(r, off[0]); err != nil {
		return nil, err
	}
	if err := t.parseCharTables(r, off[1]); err != nil {
		return nil, err
	}
	if off[2] != 0 {
		if err := t.parseStateRecords(r, off[2]); err != nil {
			return nil, err
		}
	}
	if off[3] != 0 {
		if err := t.parseTerminators(r, off[3]); err != nil {
			return nil, err
		}
	}
	if off[4] != 0 {
		if err := t.parseSequences(r, off[4]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *uchrTable) parseModifiers(r reader, off int) error {
	format, ok := r.u16(off)
	if !ok || format != uchrModifiersFormat {
		return fmt.Errorf("modifier section: %w", ErrDataFormat)
	}
	def, _ := r.u16(off + 2)
	count, ok := r.u32(off + 4)
	if !ok {
		return fmt.Errorf("modifier section: %w", ErrDataFormat)
	}
	mods, ok := r.bytes(off+8, int(count))
	if !ok {
		return fmt.Errorf("modifier table: %w", ErrDataFormat)
	}
	t.defaultTable = def
	t.modifiers = mods
	return nil
}

func (t *uchrTable) parseCharTables(r reader, off int) error {
	format, ok := r.u16(off)
	if !ok || format != uchrCharTableFormat {
		return fmt.Errorf("character table section: %w", ErrDataFormat)
	}
	size, _ := r.u16(off + 2)
	count, ok := r.u32(off + 4)
	if !ok || count == 0 {
		return fmt.Errorf("character table section: %w", ErrDataFormat)
	}
	t.charTables = make([][]uint16, count)
	for i := range t.charTables {
		tableOff, ok := r.u32(off + 8 + i*4)
		if !ok {
			return fmt.Errorf("character table %d offset: %w", i, ErrDataFormat)
		}
		b, ok := r.bytes(int(tableOff), int(size)*2)
		if !ok {
			return fmt.Errorf("character table %d: %w", i, ErrDataFormat)
		}
		table := make([]uint16, size)
		for k := range table {
			table[k] = r.order.Uint16(b[k*2:])
		}
		t.charTables[i] = table
	}
	return nil
}

func (t *uchrTable) parseStateRecords(r reader, off int) error {
	format, ok := r.u16(off)
	if !ok || format != uchrStateRecordsFormat {
		return fmt.Errorf("state record section: %w", ErrDataFormat)
	}
	count, ok := r.u16(off + 2)
	if !ok {
		return fmt.Errorf("state record section: %w", ErrDataFormat)
	}
	t.states = make([]stateRecord, count)
	for i := range t.states {
		recOff, ok := r.u32(off + 4 + i*4)
		if !ok {
			return fmt.Errorf("state record %d offset: %w", i, ErrDataFormat)
		}
		b, ok := r.bytes(int(recOff), 8)
		if !ok {
			return fmt.Errorf("state record %d: %w", i, ErrDataFormat)
		}
		rec := stateRecord{
			zeroOut:  r.order.Uint16(b[0:]),
			zeroNext: r.order.Uint16(b[2:]),
			format:   r.order.Uint16(b[6:]),
		}
		n := int(r.order.Uint16(b[4:]))
		entryOff := int(recOff) + 8
		switch {
		case n == 0:
		case rec.format == stateEntryTerminal:
			eb, ok := r.bytes(entryOff, n*4)
			if !ok {
				return fmt.Errorf("state record %d entries: %w", i, ErrDataFormat)
			}
			for j := 0; j < n; j++ {
				rec.entries = append(rec.entries, stateEntry{
					start: r.order.Uint16(eb[j*4:]),
					out:   r.order.Uint16(eb[j*4+2:]),
				})
			}
		case rec.format == stateEntryRange:
			eb, ok := r.bytes(entryOff, n*8)
			if !ok {
				return fmt.Errorf("state record %d entries: %w", i, ErrDataFormat)
			}
			for j := 0; j < n; j++ {
				e := eb[j*8:]
				rec.entries = append(rec.entries, stateEntry{
					start: r.order.Uint16(e[0:]),
					span:  e[2],
					mult:  e[3],
					out:   r.order.Uint16(e[4:]),
					next:  r.order.Uint16(e[6:]),
				})
			}
		default:
			return fmt.Errorf("state record %d entry format %d: %w", i, rec.format, ErrDataFormat)
		}
		t.states[i] = rec
	}
	return nil
}

func (t *uchrTable) parseTerminators(r reader, off int) error {
	format, ok := r.u16(off)
	if !ok || format != uchrTerminatorsFormat {
		return fmt.Errorf("terminator section: %w", ErrDataFormat)
	}
	count, _ := r.u16(off + 2)
	b, ok := r.bytes(off+4, int(count)*2)
	if !ok {
		return fmt.Errorf("terminators: %w", ErrDataFormat)
	}
	t.terminators = make([]uint16, count)
	for i := range t.terminators {
		t.terminators[i] = r.order.Uint16(b[i*2:])
	}
	return nil
}

func (t *uchrTable) parseSequences(r reader, off int) error {
	format, ok := r.u16(off)
	if !ok || format != uchrSequenceFormat {
		return fmt.Errorf("sequence section: %w", ErrDataFormat)
	}
	count, _ := r.u16(off + 2)
	// count+1 offsets relative to the section start
	ob, ok := r.bytes(off+4, (int(count)+1)*2)
	if !ok {
		return fmt.Errorf("sequence offsets: %w", ErrDataFormat)
	}
	t.sequences = make([][]keys.Char, count)
	for i := range t.sequences {
		start := int(r.order.Uint16(ob[i*2:]))
		end := int(r.order.Uint16(ob[i*2+2:]))
		if end < start || (end-start)%2 != 0 {
			return fmt.Errorf("sequence %d bounds: %w", i, ErrDataFormat)
		}
		b, ok := r.bytes(off+start, end-start)
		if !ok {
			return fmt.Errorf("sequence %d: %w", i, ErrDataFormat)
		}
		seq := make([]keys.Char, len(b)/2)
		for j := range seq {
			seq[j] = keys.Char(r.order.Uint16(b[j*2:]))
		}
		t.sequences[i] = seq
	}
	return nil
}

func (t *uchrTable) tableFor(carbon uint32) int {
	idx := tableIndex(carbon)
	if idx < len(t.modifiers) {
		return int(t.modifiers[idx])
	}
	return int(t.defaultTable)
}

// chars decodes a character-sequence value: a literal, a sequence index, or
// nothing.
func (t *uchrTable) chars(v uint16) []keys.Char {
	switch {
	case v == outputInvalid || v == outputNone:
		return nil
	case v&outputKindMask == outputSeqKind:
		i := int(v & outputIndexMask)
		if i >= len(t.sequences) {
			return nil
		}
		return t.sequences[i]
	default:
		return []keys.Char{keys.Char(v)}
	}
}

func (t *uchrTable) translate(k keys.Keycode, carbon uint32, state uint32) ([]keys.Char, uint32) {
	table := t.tableFor(carbon)
	if table >= len(t.charTables) || int(k) >= len(t.charTables[table]) {
		return t.terminator(state), 0
	}
	out := t.charTables[table][k]
	if out == outputInvalid || out == outputNone || out&outputKindMask != outputStateKind {
		if state != 0 {
			return append(append([]keys.Char(nil), t.terminator(state)...), t.chars(out)...), 0
		}
		return t.chars(out), 0
	}
	i := int(out & outputIndexMask)
	if i >= len(t.states) {
		return t.terminator(state), 0
	}
	rec := &t.states[i]
	if state != 0 {
		if chars, next, ok := rec.lookup(t, state); ok {
			return chars, next
		}
		// no transition: flush the pending dead key and start over
		pending := append([]keys.Char(nil), t.terminator(state)...)
		if rec.zeroNext != 0 {
			return pending, uint32(rec.zeroNext)
		}
		return append(pending, t.chars(rec.zeroOut)...), 0
	}
	if rec.zeroNext != 0 {
		return nil, uint32(rec.zeroNext)
	}
	return t.chars(rec.zeroOut), 0
}

func (rec *stateRecord) lookup(t *uchrTable, state uint32) ([]keys.Char, uint32, bool) {
	for _, e := range rec.entries {
		switch rec.format {
		case stateEntryTerminal:
			if uint32(e.start) == state {
				return t.chars(e.out), 0, true
			}
		case stateEntryRange:
			if state < uint32(e.start) || state > uint32(e.start)+uint32(e.span) {
				continue
			}
			delta := (state - uint32(e.start)) * uint32(e.mult)
			if e.next != 0 {
				return nil, uint32(e.next) + delta, true
			}
			if e.out == outputInvalid || e.out == outputNone || e.out&outputKindMask != 0 {
				return t.chars(e.out), 0, true
			}
			return []keys.Char{keys.Char(uint32(e.out) + delta)}, 0, true
		}
	}
	return nil, 0, false
}

func (t *uchrTable) terminator(state uint32) []keys.Char {
	if state == 0 || int(state) > len(t.terminators) {
		return nil
	}
	return t.chars(t.terminators[state-1])
}
