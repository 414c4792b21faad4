package layouttest

// ANSI keycodes used by the US fixtures.
const (
	KeyA         = 0x00
	KeyS         = 0x01
	KeyC         = 0x08
	KeyE         = 0x0E
	KeyI         = 0x22
	KeyO         = 0x1F
	KeyU         = 0x20
	KeyX         = 0x07
	KeyQ         = 0x0C
	KeyG         = 0x05
	Key6         = 0x16
	KeyBacktick  = 0x32
	KeySemicolon = 0x29
)

// usKeys lists (keycode, unshifted, shifted) for every
// printable key of an ANSI keyboard.
var usKeys = []struct {
	code          byte
	base, shifted rune
}{
	{0x00, 'a', 'A'}, {0x01, 's', 'S'}, {0x02, 'd', 'D'}, {0x03, 'f', 'F'},
	{0x04, 'h', 'H'}, {0x05, 'g', 'G'}, {0x06, 'z', 'Z'}, {0x07, 'x', 'X'},
	{0x08, 'c', 'C'}, {0x09, 'v', 'V'}, {0x0B, 'b', 'B'}, {0x0C, 'q', 'Q'},
	{0x0D, 'w', 'W'}, {0x0E, 'e', 'E'}, {0x0F, 'r', 'R'}, {0x10, 'y', 'Y'},
	{0x11, 't', 'T'}, {0x12, '1', '!'}, {0x13, '2', '@'}, {0x14, '3', '#'},
	{0x15, '4', '$'}, {0x16, '6', '^'}, {0x17, '5', '%'}, {0x18, '=', '+'},
	{0x19, '9', '('}, {0x1A, '7', '&'}, {0x1B, '-', '_'}, {0x1C, '8', '*'},
	{0x1D, '0', ')'}, {0x1E, ']', '}'}, {0x1F, 'o', 'O'}, {0x20, 'u', 'U'},
	{0x21, '[', '{'}, {0x22, 'i', 'I'}, {0x23, 'p', 'P'}, {0x25, 'l', 'L'},
	{0x26, 'j', 'J'}, {0x27, '\'', '"'}, {0x28, 'k', 'K'}, {0x29, ';', ':'},
	{0x2A, '\\', '|'}, {0x2B, ',', '<'}, {0x2C, '/', '?'}, {0x2D, 'n', 'N'},
	{0x2E, 'm', 'M'}, {0x2F, '.', '>'}, {0x32, '`', '~'},
}

// option layer: plain output keys
var usOption = map[byte]rune{
	KeyC: 'ç',
	KeyS: 'ß',
	KeyG: '©',
}

// Modifier table indexes: bit 0 command, bit 1 shift, bit 2 caps lock,
// bit 3 option, bit 4 control.
func usModifierTable(n int) []byte {
	mods := make([]byte, n)
	for i := range mods {
		shift := i&0x2 != 0 || i&0x4 != 0
		option := i&0x8 != 0
		switch {
		case option && shift:
			mods[i] = 3
		case option:
			mods[i] = 2
		case shift:
			mods[i] = 1
		}
	}
	return mods
}

// USLegacy returns a KCHR blob for a US layout with four tables (plain,
// shift, option, shift-option) and three option dead keys: E (acute, with a
// no-match character), U (diaeresis, with a no-match character) and I
// (circumflex, without one).
func USLegacy() []byte {
	return usKCHR().Bytes()
}

// SwappedLegacy returns USLegacy with the characters of keys a and b
// exchanged, as on a French layout where A and Q trade places.
func SwappedLegacy(a, b byte) []byte {
	k := usKCHR()
	for i := range k.Tables {
		k.Tables[i][a], k.Tables[i][b] = k.Tables[i][b], k.Tables[i][a]
	}
	return k.Bytes()
}

func usKCHR() *KCHR {
	k := &KCHR{Tables: make([][128]rune, 4)}
	copy(k.Modifiers[:], usModifierTable(256))
	for _, key := range usKeys {
		k.Tables[0][key.code] = key.base
		k.Tables[1][key.code] = key.shifted
	}
	for code, r := range usOption {
		k.Tables[2][code] = r
	}
	k.DeadKeys = []KCHRDeadKey{
		{Table: 2, Keycode: KeyE, Completors: map[rune]rune{'e': 'é', 'a': 'á'}, NoMatch: '´'},
		{Table: 2, Keycode: KeyU, Completors: map[rune]rune{'u': 'ü', 'o': 'ö'}, NoMatch: '¨'},
		{Table: 2, Keycode: KeyI, Completors: map[rune]rune{'e': 'ê', 'a': 'â'}},
	}
	return k
}

// USRules returns a uchr blob for the same US layout. Option-E is a dead
// key for acute accents with a terminator; option-I enters a state with no
// terminator. Option-X emits '≈' through a sequence and option-Q emits the
// two-character sequence "oe".
func USRules() []byte {
	const size = 128
	u := &Uchr{
		Modifiers: usModifierTable(16),
		Tables:    make([][]uint16, 4),
	}
	for i := range u.Tables {
		u.Tables[i] = make([]uint16, size)
		for k := range u.Tables[i] {
			u.Tables[i][k] = 0xFFFF
		}
	}
	for _, key := range usKeys {
		u.Tables[0][key.code] = uint16(key.base)
		u.Tables[1][key.code] = uint16(key.shifted)
	}
	for code, r := range usOption {
		u.Tables[2][code] = uint16(r)
	}
	// state records
	const (
		recAcute = iota
		recE
		recA
		recCircumflex
		recU
	)
	u.States = []UchrState{
		recAcute:      {ZeroNext: 1},
		recE:          {ZeroOut: 'e', Terminal: []UchrTerminal{{State: 1, Out: 'é'}, {State: 2, Out: 'ê'}}},
		recA:          {ZeroOut: 'a', Terminal: []UchrTerminal{{State: 1, Out: 'á'}, {State: 2, Out: 'â'}}},
		recCircumflex: {ZeroNext: 2},
		recU:          {ZeroOut: 'u', Range: []UchrRange{{Start: 1, Span: 0, Out: 'ú'}}},
	}
	u.Tables[2][KeyE] = StateOutput(recAcute)
	u.Tables[2][KeyI] = StateOutput(recCircumflex)
	u.Tables[0][KeyE] = StateOutput(recE)
	u.Tables[0][KeyA] = StateOutput(recA)
	u.Tables[0][KeyU] = StateOutput(recU)
	u.Terminators = []uint16{'´'}
	u.Sequences = [][]uint16{{'≈'}, {'o', 'e'}}
	u.Tables[2][KeyX] = SequenceOutput(0)
	u.Tables[2][KeyQ] = SequenceOutput(1)
	return u.Bytes()
}
