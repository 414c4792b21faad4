package layout_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/layout"
	"github.com/HopIT-Hub/hotkeykit/internal/layout/layouttest"
)

var fixtures = []struct {
	name   string
	format layout.Format
	data   func() []byte
}{
	{"legacy", layout.FormatLegacy, layouttest.USLegacy},
	{"rules", layout.FormatRules, layouttest.USRules},
}

func mustNew(t *testing.T, format layout.Format, data []byte, reverse bool) *layout.Context {
	t.Helper()
	c, err := layout.New(format, data, reverse)
	if err != nil {
		t.Fatalf("New(%s): %v", format, err)
	}
	return c
}

func stroke(k keys.Keycode, m keys.Modifier) keys.Keystroke {
	return keys.Keystroke{Keycode: k, Modifier: m}
}

func TestCharacterForKeycode(t *testing.T) {
	tests := []struct {
		name string
		k    keys.Keycode
		m    keys.Modifier
		want keys.Char
	}{
		{"plain", layouttest.KeyA, 0, 'a'},
		{"shift", layouttest.KeyA, keys.ModShift, 'A'},
		{"caps lock", layouttest.KeyA, keys.ModCapsLock, 'A'},
		{"command ignored", layouttest.KeyA, keys.ModCommand, 'a'},
		{"shifted digit", layouttest.Key6, keys.ModShift, '^'},
		{"option", layouttest.KeyC, keys.ModOption, 'ç'},
		{"dead key resolves to terminator", layouttest.KeyE, keys.ModOption, '´'},
		{"dead key without terminator", layouttest.KeyI, keys.ModOption, keys.NilChar},
		{"unmapped", 0x7F, 0, keys.NilChar},
	}
	for _, fx := range fixtures {
		c := mustNew(t, fx.format, fx.data(), false)
		for _, tt := range tests {
			t.Run(fx.name+"/"+tt.name, func(t *testing.T) {
				if got := c.CharacterForKeycode(tt.k, tt.m); got != tt.want {
					t.Errorf("CharacterForKeycode(%#x, %#x) = %q, want %q", tt.k, tt.m, rune(got), rune(tt.want))
				}
			})
		}
	}
}

func TestRulesOnlyOutputs(t *testing.T) {
	c := mustNew(t, layout.FormatRules, layouttest.USRules(), true)
	if got := c.CharacterForKeycode(layouttest.KeyX, keys.ModOption); got != '≈' {
		t.Errorf("sequence output = %q, want '≈'", rune(got))
	}
	if got := c.CharacterForKeycode(layouttest.KeyQ, keys.ModOption); got != keys.NilChar {
		t.Errorf("two character output = %q, want NilChar", rune(got))
	}
	if got := c.BaseCharacterForKeycode(layouttest.KeyU); got != 'u' {
		t.Errorf("state record zero output = %q, want 'u'", rune(got))
	}
	want := []keys.Keystroke{stroke(layouttest.KeyE, keys.ModOption), stroke(layouttest.KeyU, 0)}
	if got := c.KeycodesForCharacter('ú', 2); !slices.Equal(got, want) {
		t.Errorf("range entry reverse = %v, want %v", got, want)
	}
}

func TestDeadKeySequences(t *testing.T) {
	optE := stroke(layouttest.KeyE, keys.ModOption)
	optI := stroke(layouttest.KeyI, keys.ModOption)
	tests := []struct {
		c    keys.Char
		want []keys.Keystroke
	}{
		{'é', []keys.Keystroke{optE, stroke(layouttest.KeyE, 0)}},
		{'á', []keys.Keystroke{optE, stroke(layouttest.KeyA, 0)}},
		{'ê', []keys.Keystroke{optI, stroke(layouttest.KeyE, 0)}},
		{'´', []keys.Keystroke{optE}},
	}
	for _, fx := range fixtures {
		c := mustNew(t, fx.format, fx.data(), true)
		for _, tt := range tests {
			t.Run(fx.name+"/"+string(rune(tt.c)), func(t *testing.T) {
				if got := c.KeycodesForCharacter(tt.c, 2); !slices.Equal(got, tt.want) {
					t.Errorf("KeycodesForCharacter(%q) = %v, want %v", rune(tt.c), got, tt.want)
				}
				if len(tt.want) > 1 {
					if got := c.KeycodesForCharacter(tt.c, 1); got != nil {
						t.Errorf("KeycodesForCharacter(%q, 1) = %v, want nil", rune(tt.c), got)
					}
				}
			})
		}
	}
}

func TestForwardReverseInverse(t *testing.T) {
	common := []keys.Modifier{0, keys.ModShift, keys.ModOption, keys.ModShift | keys.ModOption}
	var all []keys.Modifier
	for mask := 0; mask < 16; mask++ {
		var m keys.Modifier
		for i, b := range []keys.Modifier{keys.ModShift, keys.ModOption, keys.ModControl, keys.ModCommand} {
			if mask&(1<<i) != 0 {
				m |= b
			}
		}
		all = append(all, m)
	}
	for _, fx := range fixtures {
		for _, indexed := range []bool{true, false} {
			mods := common
			if indexed {
				mods = all
			}
			t.Run(fmt.Sprintf("%s/indexed=%v", fx.name, indexed), func(t *testing.T) {
				c := mustNew(t, fx.format, fx.data(), indexed)
				for k := keys.Keycode(0); k < layout.MaxKeycode; k++ {
					for _, m := range mods {
						ch := c.CharacterForKeycode(k, m)
						if ch == keys.NilChar {
							continue
						}
						stroke := keys.Keystroke{Keycode: k, Modifier: m}
						alts := c.KeystrokesForCharacter(ch)
						if !slices.Contains(alts, stroke) {
							t.Fatalf("KeystrokesForCharacter(%q) = %v, missing %v", rune(ch), alts, stroke)
						}
						seq := c.KeycodesForCharacter(ch, 1)
						if len(seq) != 1 || seq[0] != alts[0] {
							t.Fatalf("KeycodesForCharacter(%q) = %v, want the preferred %v", rune(ch), seq, alts[0])
						}
						if got := c.CharacterForKeycode(seq[0].Keycode, seq[0].Modifier); got != ch {
							t.Fatalf("forward(reverse(%q)) = %q", rune(ch), rune(got))
						}
					}
				}
			})
		}
	}
}

func TestReverseIncludesUniqueProducer(t *testing.T) {
	for _, fx := range fixtures {
		c := mustNew(t, fx.format, fx.data(), true)
		want := []keys.Keystroke{stroke(layouttest.KeyA, keys.ModShift)}
		if got := c.KeycodesForCharacter('A', 1); !slices.Equal(got, want) {
			t.Errorf("%s: KeycodesForCharacter('A') = %v, want %v", fx.name, got, want)
		}
	}
}

func TestScanWithoutIndex(t *testing.T) {
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			scan := mustNew(t, fx.format, fx.data(), false)
			indexed := mustNew(t, fx.format, fx.data(), true)
			for _, ch := range []keys.Char{'a', 'A', '^', 'ç', '´', ';'} {
				got := scan.KeycodesForCharacter(ch, 1)
				want := indexed.KeycodesForCharacter(ch, 1)
				if !slices.Equal(got, want) {
					t.Errorf("scan(%q) = %v, index = %v", rune(ch), got, want)
				}
			}
			if got := scan.KeycodesForCharacter('é', 2); got != nil {
				t.Errorf("scan found dead key sequence %v", got)
			}
			if got := scan.KeycodesForCharacter('€', 2); got != nil {
				t.Errorf("scan(€) = %v, want nil", got)
			}
		})
	}
}

func TestMalformed(t *testing.T) {
	rules := layouttest.USRules()
	badSig := slices.Clone(rules)
	badSig[0] = 0

	legacy := layouttest.USLegacy()
	badTable := slices.Clone(legacy)
	badTable[2] = 9 // modifier index 0 selects a table that does not exist
	badVersion := slices.Clone(legacy)
	badVersion[0], badVersion[1] = 0x10, 0x02

	tests := []struct {
		name   string
		format layout.Format
		data   []byte
	}{
		{"empty legacy", layout.FormatLegacy, nil},
		{"truncated legacy", layout.FormatLegacy, legacy[:200]},
		{"legacy table out of range", layout.FormatLegacy, badTable},
		{"legacy version", layout.FormatLegacy, badVersion},
		{"rules data as legacy", layout.FormatLegacy, rules},
		{"empty rules", layout.FormatRules, nil},
		{"rules signature", layout.FormatRules, badSig},
		{"truncated rules", layout.FormatRules, rules[:60]},
		{"unknown format", layout.Format(7), rules},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := layout.New(tt.format, tt.data, true)
			if !errors.Is(err, layout.ErrDataFormat) {
				t.Fatalf("New() error = %v, want ErrDataFormat", err)
			}
		})
	}
}

func TestNilContext(t *testing.T) {
	var c *layout.Context
	if got := c.CharacterForKeycode(0, 0); got != keys.NilChar {
		t.Errorf("nil context forward = %#x", got)
	}
	if got := c.KeycodesForCharacter('a', 1); got != nil {
		t.Errorf("nil context reverse = %v", got)
	}
}
