package action

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/keystroke"
	"github.com/HopIT-Hub/hotkeykit/internal/layout/layouttest"
)

type post struct {
	ks     keys.Keystroke
	target keystroke.Target
}

type recordingPoster struct {
	mu    sync.Mutex
	posts []post
}

func (p *recordingPoster) Post(_ context.Context, ks keys.Keystroke, target keystroke.Target, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, post{ks, target})
	return nil
}

type errorLog struct {
	errs []error
}

func (l *errorLog) record(_ *hotkey.HotKey, err error) { l.errs = append(l.errs, err) }

func newEnv(t *testing.T) (*Env, *recordingPoster, *errorLog) {
	t.Helper()
	svc := keymap.NewService(keymap.NewStaticProvider(keymap.Source{ID: "us", Legacy: layouttest.USLegacy()}))
	t.Cleanup(svc.Close)
	var p recordingPoster
	var errs errorLog
	return &Env{Poster: &p, Keymaps: svc, OnError: errs.record}, &p, &errs
}

func fire(t *testing.T, a hotkey.Action, h *hotkey.HotKey) {
	t.Helper()
	a(h, hotkey.Invocation{EventTime: time.Now()})
}

func TestKeystrokeAction(t *testing.T) {
	h := hotkey.New(layouttest.KeyA, 'a', keys.ModControl)
	tests := []struct {
		name string
		cfg  config.ActionConfig
		want []post
	}{
		{
			"packed keystroke",
			config.ActionConfig{Type: TypeKeystroke, Rawkey: keys.Pack(keys.KeyReturn, keys.ModCommand, keys.ReturnChar)},
			[]post{{keys.Keystroke{Keycode: keys.KeyReturn, Modifier: keys.ModCommand}, keystroke.Target{}}},
		},
		{
			"character only",
			config.ActionConfig{Type: TypeKeystroke, Rawkey: keys.Pack(keys.InvalidKeycode, keys.ModControl, 'A'), Target: "process", PID: 42},
			[]post{{keys.Keystroke{Keycode: layouttest.KeyA, Modifier: keys.ModShift | keys.ModControl}, keystroke.Target{Kind: keystroke.Process, PID: 42}}},
		},
		{
			"text through dead key",
			config.ActionConfig{Type: TypeKeystroke, Text: "aé", Target: "accessory"},
			[]post{
				{keys.Keystroke{Keycode: layouttest.KeyA}, keystroke.Target{Kind: keystroke.Accessory}},
				{keys.Keystroke{Keycode: layouttest.KeyE, Modifier: keys.ModOption}, keystroke.Target{Kind: keystroke.Accessory}},
				{keys.Keystroke{Keycode: layouttest.KeyE}, keystroke.Target{Kind: keystroke.Accessory}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, p, errs := newEnv(t)
			a, err := New(tt.cfg, env)
			if err != nil {
				t.Fatal(err)
			}
			fire(t, a, h)
			if len(errs.errs) != 0 {
				t.Fatalf("errors: %v", errs.errs)
			}
			if len(p.posts) != len(tt.want) {
				t.Fatalf("posts = %+v, want %+v", p.posts, tt.want)
			}
			for i := range tt.want {
				if p.posts[i] != tt.want[i] {
					t.Errorf("post %d = %+v, want %+v", i, p.posts[i], tt.want[i])
				}
			}
		})
	}
}

func TestKeystrokeActionReportsUnreachableCharacter(t *testing.T) {
	env, p, errs := newEnv(t)
	a, err := New(config.ActionConfig{Type: TypeKeystroke, Text: "€"}, env)
	if err != nil {
		t.Fatal(err)
	}
	fire(t, a, hotkey.New(0, 'a', 0))
	if len(p.posts) != 0 || len(errs.errs) != 1 || !errors.Is(errs.errs[0], keystroke.ErrNoKeystroke) {
		t.Fatalf("posts = %v, errors = %v", p.posts, errs.errs)
	}
}

func TestNewErrors(t *testing.T) {
	env, _, _ := newEnv(t)
	tests := []struct {
		name string
		cfg  config.ActionConfig
		env  *Env
	}{
		{"unknown type", config.ActionConfig{Type: "shell"}, env},
		{"keystroke without poster", config.ActionConfig{Type: TypeKeystroke, Text: "a"}, &Env{}},
		{"keystroke without key", config.ActionConfig{Type: TypeKeystroke}, env},
		{"bundle without id", config.ActionConfig{Type: TypeKeystroke, Text: "a", Target: "bundle"}, env},
		{"bad pid", config.ActionConfig{Type: TypeKeystroke, Text: "a", Target: "process"}, env},
		{"astral text", config.ActionConfig{Type: TypeKeystroke, Text: "😀"}, env},
		{"empty script", config.ActionConfig{Type: TypeLua}, env},
		{"syntax error", config.ActionConfig{Type: TypeLua, Script: "hk.log("}, env},
	}
	for _, tt := range tests {
		if _, err := New(tt.cfg, tt.env); err == nil {
			t.Errorf("%s: no error", tt.name)
		}
	}
	if _, err := New(config.ActionConfig{Type: "shell"}, env); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget(config.ActionConfig{Target: "signature", Signature: "TEXT"})
	if err != nil || got.Kind != keystroke.Signature || got.Signature != 0x54455854 {
		t.Fatalf("four character code: %+v, %v", got, err)
	}
	got, err = ParseTarget(config.ActionConfig{Target: "signature", Signature: "0x4D414353"})
	if err != nil || got.Signature != 0x4D414353 {
		t.Fatalf("numeric signature: %+v, %v", got, err)
	}
	got, err = ParseTarget(config.ActionConfig{})
	if err != nil || got.Kind != keystroke.System {
		t.Fatalf("default target: %+v, %v", got, err)
	}
}

func TestLuaAction(t *testing.T) {
	env, p, errs := newEnv(t)
	src := `
count = (count or 0) + 1
hk.log("fired", hotkey.name, hotkey.shortcut, count)
if count == 2 then
	hk.post(hotkey.keycode, hotkey.modifier)
	hk.type("A")
end
`
	a, err := New(config.ActionConfig{Type: TypeLua, Script: src}, env)
	if err != nil {
		t.Fatal(err)
	}
	h := hotkey.New(layouttest.KeyS, 's', keys.ModCommand)
	h.Name = "script"

	fire(t, a, h)
	if len(p.posts) != 0 {
		t.Fatalf("first run posted %v", p.posts)
	}
	fire(t, a, h)
	if len(errs.errs) != 0 {
		t.Fatalf("errors: %v", errs.errs)
	}
	want := []keys.Keystroke{
		{Keycode: layouttest.KeyS, Modifier: keys.ModCommand},
		{Keycode: layouttest.KeyA, Modifier: keys.ModShift},
	}
	if len(p.posts) != len(want) || p.posts[0].ks != want[0] || p.posts[1].ks != want[1] {
		t.Fatalf("posts = %+v", p.posts)
	}
}

func TestLuaTypeRejectsAstralCharacters(t *testing.T) {
	env, p, errs := newEnv(t)
	a, err := New(config.ActionConfig{Type: TypeLua, Script: `hk.type("😀")`}, env)
	if err != nil {
		t.Fatal(err)
	}
	fire(t, a, hotkey.New(0, 'a', 0))
	if len(p.posts) != 0 {
		t.Fatalf("posted %v", p.posts)
	}
	if len(errs.errs) != 1 || !strings.Contains(errs.errs[0].Error(), "basic plane") {
		t.Fatalf("errors = %v", errs.errs)
	}
}

func TestLuaSandbox(t *testing.T) {
	for _, src := range []string{
		`os.exit(1)`,
		`io.open("/etc/passwd")`,
		`dofile("/tmp/x.lua")`,
		`require("os")`,
		`error("boom")`,
	} {
		env, _, errs := newEnv(t)
		a, err := New(config.ActionConfig{Type: TypeLua, Script: src}, env)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		fire(t, a, hotkey.New(0, 'a', 0))
		if len(errs.errs) != 1 {
			t.Errorf("%s: errors = %v", src, errs.errs)
		}
	}
}

func TestLuaTimeout(t *testing.T) {
	defer func(d time.Duration) { scriptTimeout = d }(scriptTimeout)
	scriptTimeout = 50 * time.Millisecond

	env, _, errs := newEnv(t)
	a, err := New(config.ActionConfig{Type: TypeLua, Script: `hk.sleep(60000)`}, env)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		a(hotkey.New(0, 'a', 0), hotkey.Invocation{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(scriptTimeout + 2*time.Second):
		t.Fatal("script not stopped")
	}
	if len(errs.errs) != 1 || !strings.Contains(errs.errs[0].Error(), "deadline") {
		t.Fatalf("errors = %v", errs.errs)
	}
}
