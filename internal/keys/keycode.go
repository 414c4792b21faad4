// Package keys defines virtual keycodes, characters, modifier masks and the
// packed form used to persist a hotkey.
package keys

// Keycode is a hardware-position key identifier, independent of layout.
type Keycode uint16

// Char is a UTF-16 code unit produced by a key. Special keys without a glyph
// use code points from the private use area (see F1Char and friends).
type Char uint16

// InvalidKeycode marks a keycode that could not be resolved.
const InvalidKeycode Keycode = 0xFFFF

// NilChar marks a character that could not be resolved.
const NilChar Char = 0xFFFF

// Virtual keycodes for keys that do not depend on the layout.
const (
	// modifier keys
	KeyCommand  Keycode = 0x37
	KeyShift    Keycode = 0x38
	KeyCapsLock Keycode = 0x39
	KeyOption   Keycode = 0x3A
	KeyControl  Keycode = 0x3B

	// function keys
	KeyF1  Keycode = 0x7A
	KeyF2  Keycode = 0x78
	KeyF3  Keycode = 0x63
	KeyF4  Keycode = 0x76
	KeyF5  Keycode = 0x60
	KeyF6  Keycode = 0x61
	KeyF7  Keycode = 0x62
	KeyF8  Keycode = 0x64
	KeyF9  Keycode = 0x65
	KeyF10 Keycode = 0x6D
	KeyF11 Keycode = 0x67
	KeyF12 Keycode = 0x6F
	KeyF13 Keycode = 0x69
	KeyF14 Keycode = 0x6B
	KeyF15 Keycode = 0x71
	KeyF16 Keycode = 0x6A
	KeyF17 Keycode = 0x40
	KeyF18 Keycode = 0x4F
	KeyF19 Keycode = 0x50

	// editing
	KeyHelp          Keycode = 0x72
	KeyDelete        Keycode = 0x33
	KeyTab           Keycode = 0x30
	KeyEnter         Keycode = 0x4C
	KeyReturn        Keycode = 0x24
	KeyEscape        Keycode = 0x35
	KeyForwardDelete Keycode = 0x75

	// navigation
	KeyHome       Keycode = 0x73
	KeyEnd        Keycode = 0x77
	KeyPageUp     Keycode = 0x74
	KeyPageDown   Keycode = 0x79
	KeyLeftArrow  Keycode = 0x7B
	KeyRightArrow Keycode = 0x7C
	KeyUpArrow    Keycode = 0x7E
	KeyDownArrow  Keycode = 0x7D

	KeyClearLine Keycode = 0x47
	KeySpace     Keycode = 0x31
)

// Characters used for keys that have no printable output.
const (
	UpArrowChar    Char = 0xF700
	DownArrowChar  Char = 0xF701
	LeftArrowChar  Char = 0xF702
	RightArrowChar Char = 0xF703

	F1Char  Char = 0xF704
	F2Char  Char = 0xF705
	F3Char  Char = 0xF706
	F4Char  Char = 0xF707
	F5Char  Char = 0xF708
	F6Char  Char = 0xF709
	F7Char  Char = 0xF70A
	F8Char  Char = 0xF70B
	F9Char  Char = 0xF70C
	F10Char Char = 0xF70D
	F11Char Char = 0xF70E
	F12Char Char = 0xF70F
	F13Char Char = 0xF710
	F14Char Char = 0xF711
	F15Char Char = 0xF712
	F16Char Char = 0xF713
	F17Char Char = 0xF714
	F18Char Char = 0xF715
	F19Char Char = 0xF716
	F35Char Char = 0xF726

	InsertChar        Char = 0xF727
	ForwardDeleteChar Char = 0xF728
	HomeChar          Char = 0xF729
	BeginChar         Char = 0xF72A
	EndChar           Char = 0xF72B
	PageUpChar        Char = 0xF72C
	PageDownChar      Char = 0xF72D
	ClearLineChar     Char = 0xF739
	HelpChar          Char = 0xF746

	EnterChar        Char = 0x0003
	TabChar          Char = 0x0009
	ReturnChar       Char = 0x000D
	EscapeChar       Char = 0x001B
	SpaceChar        Char = 0x0020
	DeleteChar       Char = 0x007F
	NoBreakSpaceChar Char = 0x00A0
)

// Keystroke is one key press: a keycode and the modifiers held with it.
type Keystroke struct {
	Keycode  Keycode
	Modifier Modifier
}

// specialKeys maps keys whose character does not come from the layout.
var specialKeys = map[Keycode]Char{
	KeyF1:            F1Char,
	KeyF2:            F2Char,
	KeyF3:            F3Char,
	KeyF4:            F4Char,
	KeyF5:            F5Char,
	KeyF6:            F6Char,
	KeyF7:            F7Char,
	KeyF8:            F8Char,
	KeyF9:            F9Char,
	KeyF10:           F10Char,
	KeyF11:           F11Char,
	KeyF12:           F12Char,
	KeyF13:           F13Char,
	KeyF14:           F14Char,
	KeyF15:           F15Char,
	KeyF16:           F16Char,
	KeyF17:           F17Char,
	KeyF18:           F18Char,
	KeyF19:           F19Char,
	KeyHelp:          HelpChar,
	KeyForwardDelete: ForwardDeleteChar,
	KeyHome:          HomeChar,
	KeyEnd:           EndChar,
	KeyPageUp:        PageUpChar,
	KeyPageDown:      PageDownChar,
	KeyLeftArrow:     LeftArrowChar,
	KeyRightArrow:    RightArrowChar,
	KeyUpArrow:       UpArrowChar,
	KeyDownArrow:     DownArrowChar,
	KeyClearLine:     ClearLineChar,
	KeyDelete:        DeleteChar,
	KeyTab:           TabChar,
	KeyEnter:         EnterChar,
	KeyReturn:        ReturnChar,
	KeyEscape:        EscapeChar,
	KeySpace:         SpaceChar,
}

var specialChars = func() map[Char]Keycode {
	m := make(map[Char]Keycode, len(specialKeys))
	for k, c := range specialKeys {
		m[c] = k
	}
	return m
}()

// SpecialCharacter returns the fixed character of a key that has no
// layout-dependent output, such as a function or navigation key.
func SpecialCharacter(k Keycode) (Char, bool) {
	c, ok := specialKeys[k]
	return c, ok
}

// SpecialKeycode is the reverse of SpecialCharacter.
func SpecialKeycode(c Char) (Keycode, bool) {
	k, ok := specialChars[c]
	return k, ok
}

// IsFunctionKey reports whether k is one of F1 through F19.
func IsFunctionKey(k Keycode) bool {
	c, ok := specialKeys[k]
	return ok && IsFunctionKeyCharacter(c)
}

// IsFunctionKeyCharacter reports whether c is one of the F1 through F35
// private use characters.
func IsFunctionKeyCharacter(c Char) bool {
	return c >= F1Char && c <= F35Char
}
