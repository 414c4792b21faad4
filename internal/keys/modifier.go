package keys

// Modifier is a modifier mask in native (event flags) format unless stated
// otherwise.
type Modifier uint32

// Native modifier bits.
const (
	ModCapsLock   Modifier = 1 << 16
	ModShift      Modifier = 1 << 17
	ModControl    Modifier = 1 << 18
	ModOption     Modifier = 1 << 19
	ModCommand    Modifier = 1 << 20
	ModNumericPad Modifier = 1 << 21
	ModHelp       Modifier = 1 << 22
	ModFunction   Modifier = 1 << 23
)

// ModMask covers every native modifier bit a hotkey may carry.
const ModMask = ModCapsLock | ModShift | ModControl | ModOption | ModCommand |
	ModNumericPad | ModHelp | ModFunction

// Format selects one of the modifier bit layouts in use on the platform.
type Format int

const (
	FormatNative Format = iota // event flags
	FormatCarbon               // legacy event modifiers
	FormatCocoa                // UI framework event modifiers
)

func (f Format) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatCarbon:
		return "carbon"
	case FormatCocoa:
		return "cocoa"
	default:
		return "unknown"
	}
}

// Carbon modifier bits.
const (
	CarbonCommand      uint32 = 1 << 8
	CarbonShift        uint32 = 1 << 9
	CarbonCapsLock     uint32 = 1 << 10
	CarbonOption       uint32 = 1 << 11
	CarbonControl      uint32 = 1 << 12
	CarbonRightShift   uint32 = 1 << 13
	CarbonRightOption  uint32 = 1 << 14
	CarbonRightControl uint32 = 1 << 15
	CarbonNumLock      uint32 = 1 << 16
	CarbonFunction     uint32 = 1 << 17
)

// Cocoa modifier bits.
const (
	CocoaCapsLock   uint32 = 1 << 16
	CocoaShift      uint32 = 1 << 17
	CocoaControl    uint32 = 1 << 18
	CocoaOption     uint32 = 1 << 19
	CocoaCommand    uint32 = 1 << 20
	CocoaNumericPad uint32 = 1 << 21
	CocoaHelp       uint32 = 1 << 22
	CocoaFunction   uint32 = 1 << 23

	// cocoaDeviceIndependent masks out device specific low bits.
	cocoaDeviceIndependent uint32 = 0xFFFF0000
)

// logical modifier slots shared by all formats
const (
	slotCapsLock = iota
	slotShift
	slotControl
	slotOption
	slotCommand
	slotNumericPad
	slotHelp
	slotFunction
	slotCount
)

// bitTables maps each logical slot to its bit in a given format. A zero
// entry means the format has no representation for that slot.
var bitTables = [...][slotCount]uint32{
	FormatNative: {
		slotCapsLock:   uint32(ModCapsLock),
		slotShift:      uint32(ModShift),
		slotControl:    uint32(ModControl),
		slotOption:     uint32(ModOption),
		slotCommand:    uint32(ModCommand),
		slotNumericPad: uint32(ModNumericPad),
		slotHelp:       uint32(ModHelp),
		slotFunction:   uint32(ModFunction),
	},
	FormatCarbon: {
		slotCapsLock: CarbonCapsLock,
		slotShift:    CarbonShift,
		slotControl:  CarbonControl,
		slotOption:   CarbonOption,
		slotCommand:  CarbonCommand,
		slotFunction: CarbonFunction,
	},
	FormatCocoa: {
		slotCapsLock:   CocoaCapsLock,
		slotShift:      CocoaShift,
		slotControl:    CocoaControl,
		slotOption:     CocoaOption,
		slotCommand:    CocoaCommand,
		slotNumericPad: CocoaNumericPad,
		slotHelp:       CocoaHelp,
		slotFunction:   CocoaFunction,
	},
}

// Convert remaps a modifier mask from one format to another. Bits with no
// counterpart in the output format are dropped. Carbon right-hand variants
// fold into their left-hand logical modifier.
func Convert(value uint32, from, to Format) uint32 {
	if from == to {
		return value
	}
	if !from.valid() || !to.valid() {
		return 0
	}
	if from == FormatCarbon {
		if value&CarbonRightShift != 0 {
			value |= CarbonShift
		}
		if value&CarbonRightOption != 0 {
			value |= CarbonOption
		}
		if value&CarbonRightControl != 0 {
			value |= CarbonControl
		}
	}
	if from == FormatCocoa {
		value &= cocoaDeviceIndependent
	}
	in, out := &bitTables[from], &bitTables[to]
	var result uint32
	for slot := 0; slot < slotCount; slot++ {
		if in[slot] != 0 && value&in[slot] != 0 {
			result |= out[slot]
		}
	}
	return result
}

// ToCarbon converts a native mask to Carbon format.
func (m Modifier) ToCarbon() uint32 {
	return Convert(uint32(m), FormatNative, FormatCarbon)
}

// FromCarbon converts a Carbon mask to native format.
func FromCarbon(carbon uint32) Modifier {
	return Modifier(Convert(carbon, FormatCarbon, FormatNative))
}

// Has reports whether all bits of other are set in m.
func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

func (f Format) valid() bool {
	return f >= FormatNative && f <= FormatCocoa
}
