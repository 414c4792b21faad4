package keymap

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/HopIT-Hub/hotkeykit/internal/i18n"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// modifierOrder is the canonical display order.
var modifierOrder = []struct {
	mod   keys.Modifier
	glyph string
	word  string
}{
	{keys.ModControl, "⌃", "key_control"},
	{keys.ModOption, "⌥", "key_option"},
	{keys.ModShift, "⇧", "key_shift"},
	{keys.ModCommand, "⌘", "key_command"},
}

var glyphs = map[keys.Char]string{
	keys.LeftArrowChar:     "←",
	keys.RightArrowChar:    "→",
	keys.UpArrowChar:       "↑",
	keys.DownArrowChar:     "↓",
	keys.ReturnChar:        "↩",
	keys.EnterChar:         "⌅",
	keys.TabChar:           "⇥",
	keys.EscapeChar:        "⎋",
	keys.DeleteChar:        "⌫",
	keys.ForwardDeleteChar: "⌦",
	keys.HomeChar:          "↖",
	keys.EndChar:           "↘",
	keys.PageUpChar:        "⇞",
	keys.PageDownChar:      "⇟",
	keys.ClearLineChar:     "⌧",
	keys.HelpChar:          "?⃝",
	keys.SpaceChar:         "Space",
	keys.NoBreakSpaceChar:  "⍽",
}

var words = map[keys.Char]string{
	keys.LeftArrowChar:     "key_left_arrow",
	keys.RightArrowChar:    "key_right_arrow",
	keys.UpArrowChar:       "key_up_arrow",
	keys.DownArrowChar:     "key_down_arrow",
	keys.ReturnChar:        "key_return",
	keys.EnterChar:         "key_enter",
	keys.TabChar:           "key_tab",
	keys.EscapeChar:        "key_escape",
	keys.DeleteChar:        "key_delete",
	keys.ForwardDeleteChar: "key_forward_delete",
	keys.HomeChar:          "key_home",
	keys.EndChar:           "key_end",
	keys.PageUpChar:        "key_page_up",
	keys.PageDownChar:      "key_page_down",
	keys.ClearLineChar:     "key_clear",
	keys.HelpChar:          "key_help",
	keys.SpaceChar:         "key_space",
	keys.NoBreakSpaceChar:  "key_no_break_space",
}

func printable(c keys.Char) string {
	return strings.ToUpper(string(rune(c)))
}

func functionKeyNumber(c keys.Char) int {
	return int(c-keys.F1Char) + 1
}

// StringRepresentation returns the shortcut as glyphs, for example "⌃⌥←"
// or "⌘Space". It returns "" for NilChar.
func StringRepresentation(c keys.Char, m keys.Modifier) string {
	if c == keys.NilChar {
		return ""
	}
	var b strings.Builder
	for _, mod := range modifierOrder {
		if m.Has(mod.mod) {
			b.WriteString(mod.glyph)
		}
	}
	switch {
	case keys.IsFunctionKeyCharacter(c):
		fmt.Fprintf(&b, "F%d", functionKeyNumber(c))
	case glyphs[c] != "":
		b.WriteString(glyphs[c])
	case unicode.IsPrint(rune(c)):
		b.WriteString(printable(c))
	default:
		fmt.Fprintf(&b, "U+%04X", uint16(c))
	}
	return b.String()
}

// SpeakableStringRepresentation returns the shortcut in words in the current
// UI language, for example "Control + Option + Left Arrow".
func SpeakableStringRepresentation(c keys.Char, m keys.Modifier) string {
	if c == keys.NilChar {
		return ""
	}
	var parts []string
	for _, mod := range modifierOrder {
		if m.Has(mod.mod) {
			parts = append(parts, i18n.T(mod.word))
		}
	}
	switch {
	case keys.IsFunctionKeyCharacter(c):
		parts = append(parts, fmt.Sprintf(i18n.T("key_function_n"), functionKeyNumber(c)))
	case words[c] != "":
		parts = append(parts, i18n.T(words[c]))
	case unicode.IsPrint(rune(c)):
		parts = append(parts, printable(c))
	default:
		parts = append(parts, fmt.Sprintf("U+%04X", uint16(c)))
	}
	return strings.Join(parts, i18n.T("key_joiner"))
}
