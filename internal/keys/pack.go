package keys

// Packed layout: keycode in bits 0-15, character in bits 16-31, modifier in
// bits 32-63.
const (
	packCharShift     = 16
	packModifierShift = 32
)

// Pack encodes a keystroke and its character into a single value suitable
// for persistence. It performs no validation.
func Pack(k Keycode, m Modifier, c Char) uint64 {
	return uint64(k) | uint64(c)<<packCharShift | uint64(m)<<packModifierShift
}

// Unpack is the inverse of Pack. Every input decodes.
func Unpack(raw uint64) (Keycode, Modifier, Char) {
	k := Keycode(raw & 0xFFFF)
	c := Char(raw >> packCharShift & 0xFFFF)
	m := Modifier(raw >> packModifierShift)
	return k, m, c
}
