package layout

import "encoding/binary"

// reader does bounds-checked fixed-width reads at absolute offsets.
type reader struct {
	data  []byte
	order binary.ByteOrder
}

func (r reader) bytes(off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > len(r.data) {
		return nil, false
	}
	return r.data[off : off+n], true
}

func (r reader) u16(off int) (uint16, bool) {
	b, ok := r.bytes(off, 2)
	if !ok {
		return 0, false
	}
	return r.order.Uint16(b), true
}

func (r reader) u32(off int) (uint32, bool) {
	b, ok := r.bytes(off, 4)
	if !ok {
		return 0, false
	}
	return r.order.Uint32(b), true
}
