package keystroke

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/layout/layouttest"
)

type post struct {
	ks      keys.Keystroke
	target  Target
	latency time.Duration
}

type recordingPoster struct {
	posts []post
	err   error
}

func (p *recordingPoster) Post(_ context.Context, ks keys.Keystroke, target Target, latency time.Duration) error {
	if p.err != nil {
		return p.err
	}
	p.posts = append(p.posts, post{ks, target, latency})
	return nil
}

func usKeyMap(t *testing.T) *keymap.KeyMap {
	t.Helper()
	km, err := keymap.New(keymap.Source{ID: "us", Rules: layouttest.USRules()})
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func TestPostCharacter(t *testing.T) {
	km := usKeyMap(t)
	target := Target{Kind: Bundle, Bundle: "org.example.editor"}
	tests := []struct {
		c    keys.Char
		want []keys.Keystroke
	}{
		{'a', []keys.Keystroke{{Keycode: layouttest.KeyA}}},
		{'A', []keys.Keystroke{{Keycode: layouttest.KeyA, Modifier: keys.ModShift}}},
		{'ç', []keys.Keystroke{{Keycode: layouttest.KeyC, Modifier: keys.ModOption}}},
		{'é', []keys.Keystroke{{Keycode: layouttest.KeyE, Modifier: keys.ModOption}, {Keycode: layouttest.KeyE}}},
		{keys.F5Char, []keys.Keystroke{{Keycode: keys.KeyF5}}},
	}
	for _, tt := range tests {
		var p recordingPoster
		if err := PostCharacter(context.Background(), &p, km, tt.c, target, DefaultLatency); err != nil {
			t.Errorf("PostCharacter(%q): %v", rune(tt.c), err)
			continue
		}
		if len(p.posts) != len(tt.want) {
			t.Errorf("PostCharacter(%q) posted %d keystrokes, want %d", rune(tt.c), len(p.posts), len(tt.want))
			continue
		}
		for i, got := range p.posts {
			if got.ks != tt.want[i] || got.target != target || got.latency != DefaultLatency {
				t.Errorf("PostCharacter(%q)[%d] = %+v, want %+v", rune(tt.c), i, got, tt.want[i])
			}
		}
	}
}

func TestPostCharacterErrors(t *testing.T) {
	km := usKeyMap(t)
	var p recordingPoster
	if err := PostCharacter(context.Background(), &p, km, '€', Target{}, 0); !errors.Is(err, ErrNoKeystroke) {
		t.Fatalf("unreachable character: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := PostCharacter(ctx, &p, km, 'a', Target{}, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled context: %v", err)
	}

	p.err = ErrTargetNotFound
	if err := PostCharacter(context.Background(), &p, km, 'a', Target{}, 0); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("poster error not wrapped: %v", err)
	}
}

func TestRouter(t *testing.T) {
	var sys, acc recordingPoster
	r := &Router{System: &sys, Accessory: &acc}
	ks := keys.Keystroke{Keycode: keys.KeySpace}

	for _, kind := range []Kind{System, Bundle, Process} {
		if err := r.Post(context.Background(), ks, Target{Kind: kind}, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Post(context.Background(), ks, Target{Kind: Accessory}, 0); err != nil {
		t.Fatal(err)
	}
	if len(sys.posts) != 3 || len(acc.posts) != 1 {
		t.Fatalf("system = %d, accessory = %d", len(sys.posts), len(acc.posts))
	}

	bare := &Router{System: &sys}
	if err := bare.Post(context.Background(), ks, Target{Kind: Accessory}, 0); !errors.Is(err, ErrUnsupportedTarget) {
		t.Fatalf("missing accessory poster: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for k := System; k <= Accessory; k++ {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if k, err := ParseKind(""); err != nil || k != System {
		t.Errorf("ParseKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseKind("window"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestKeyNames(t *testing.T) {
	tests := []struct {
		k    keys.Keycode
		want KeyName
	}{
		{layouttest.KeyA, KeyName{VK: 'A', Keysym: "a", Usage: 0x04}},
		{0x06, KeyName{VK: 'Z', Keysym: "z", Usage: 0x1D}},
		{0x12, KeyName{VK: '1', Keysym: "1", Usage: 0x1E}},
		{0x1D, KeyName{VK: '0', Keysym: "0", Usage: 0x27}},
		{keys.KeyF1, KeyName{VK: 0x70, Keysym: "F1", Usage: 0x3A}},
		{keys.KeyF12, KeyName{VK: 0x7B, Keysym: "F12", Usage: 0x45}},
		{keys.KeyF13, KeyName{VK: 0x7C, Keysym: "F13", Usage: 0x68}},
		{keys.KeyLeftArrow, KeyName{VK: 0x25, Keysym: "Left", Usage: 0x50}},
	}
	for _, tt := range tests {
		got, ok := LookupKey(tt.k)
		if !ok || got != tt.want {
			t.Errorf("LookupKey(%#x) = %+v, %v", tt.k, got, ok)
		}
	}
	if _, ok := LookupKey(keys.KeyCommand); ok {
		t.Error("modifier key has a name")
	}
}

func TestCombos(t *testing.T) {
	ks := keys.Keystroke{Keycode: layouttest.KeyA, Modifier: keys.ModCommand | keys.ModShift | keys.ModControl}
	combo, err := xdotoolCombo(ks)
	if err != nil || combo != "ctrl+shift+super+a" {
		t.Errorf("xdotoolCombo = %q, %v", combo, err)
	}
	vks, err := windowsVKs(ks)
	if err != nil || len(vks) != 4 || vks[3] != 'A' || vks[0] != 0x11 {
		t.Errorf("windowsVKs = %#x, %v", vks, err)
	}
	if got := HIDModifiers(ks.Modifier); got != 0x0B {
		t.Errorf("HIDModifiers = %#x", got)
	}
	if _, err := xdotoolCombo(keys.Keystroke{Keycode: 0x7F}); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("unnamed keycode: %v", err)
	}
}
