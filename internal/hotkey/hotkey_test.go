package hotkey

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/layout/layouttest"
)

func TestRawkeyRoundTrip(t *testing.T) {
	h := New(keys.KeyReturn, keys.ReturnChar, keys.ModCommand|keys.ModShift)
	raw := h.Rawkey()
	got := NewFromRawkey(raw)
	if got.Keycode() != h.Keycode() || got.Character() != h.Character() || got.Modifier() != h.Modifier() {
		t.Fatalf("NewFromRawkey(%#x) = %v", raw, got)
	}
	if got.Shortcut() != "⇧⌘↩" {
		t.Fatalf("Shortcut() = %q", got.Shortcut())
	}
}

func TestNewWithCharacter(t *testing.T) {
	km := usKeyMap(t)
	tests := []struct {
		c     keys.Char
		wantK keys.Keycode
		valid bool
	}{
		{'a', layouttest.KeyA, true},
		{keys.F5Char, keys.KeyF5, true},
		{'é', keys.InvalidKeycode, false},
	}
	for _, tt := range tests {
		h := NewWithCharacter(km, tt.c, keys.ModControl)
		if h.Keycode() != tt.wantK || h.IsValid() != tt.valid {
			t.Errorf("NewWithCharacter(%q) = keycode %#x valid %v", rune(tt.c), h.Keycode(), h.IsValid())
		}
	}
}

func TestNewWithKeycodeWithoutKeymap(t *testing.T) {
	if h := NewWithKeycode(nil, keys.KeyF3, 0); !h.IsValid() {
		t.Error("special key should resolve without a keymap")
	}
	if h := NewWithKeycode(nil, layouttest.KeyA, 0); h.IsValid() {
		t.Error("layout key resolved without a keymap")
	}
}

func TestSetKeycodeAndCharacter(t *testing.T) {
	h := New(keys.InvalidKeycode, keys.NilChar, 0)
	if h.IsValid() {
		t.Fatal("sentinel hotkey is valid")
	}
	h.SetKeycodeAndCharacter(layouttest.KeyA, 'a')
	h.SetModifier(keys.ModOption)
	if !h.IsValid() || h.Shortcut() != "⌥A" {
		t.Fatalf("after set: valid=%v shortcut=%q", h.IsValid(), h.Shortcut())
	}
}

func TestParseModifiers(t *testing.T) {
	m, err := ParseModifiers([]string{"Ctrl", "alt", "cmd"})
	if err != nil {
		t.Fatal(err)
	}
	if m != keys.ModControl|keys.ModOption|keys.ModCommand {
		t.Fatalf("ParseModifiers = %#x", m)
	}
	if _, err := ParseModifiers([]string{"hyper"}); err == nil {
		t.Fatal("unknown modifier accepted")
	}
}

func TestKeycodeForCode(t *testing.T) {
	tests := []struct {
		code string
		want keys.Keycode
	}{
		{"KeyA", layouttest.KeyA},
		{"KeyE", layouttest.KeyE},
		{"Space", keys.KeySpace},
		{"F12", keys.KeyF12},
		{"ArrowLeft", keys.KeyLeftArrow},
	}
	for _, tt := range tests {
		got, err := KeycodeForCode(tt.code)
		if err != nil || got != tt.want {
			t.Errorf("KeycodeForCode(%q) = %#x, %v", tt.code, got, err)
		}
	}
	if _, err := KeycodeForCode("MediaPlay"); err == nil {
		t.Error("unsupported code accepted")
	}
}

func TestCharacterForCode(t *testing.T) {
	tests := []struct {
		code string
		want keys.Char
	}{
		{"KeyH", 'h'},
		{"Digit7", '7'},
		{"Quote", '\''},
		{"Space", keys.SpaceChar},
		{"F5", keys.F5Char},
		{"MediaPlay", keys.NilChar},
	}
	for _, tt := range tests {
		if got := CharacterForCode(tt.code); got != tt.want {
			t.Errorf("CharacterForCode(%q) = %#x, want %#x", tt.code, got, tt.want)
		}
	}
}

// The registry must load without a display: the OS shortcut library
// initializes X11 when imported, so only the system subpackage may use it.
func TestRegistryDoesNotImportShortcutLibrary(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	for _, name := range files {
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatal(err)
		}
		for _, imp := range f.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			if strings.HasPrefix(path, "golang.design/x/hotkey") {
				t.Errorf("%s imports %s", name, path)
			}
		}
	}
}
