package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HopIT-Hub/hotkeykit/internal/app"
	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/layout/layouttest"
)

type fakeController struct {
	cfg      *config.Config
	km       *keymap.KeyMap
	bindings []app.Binding
	added    []config.HotkeyConfig
	reloads  int
}

func (c *fakeController) Bindings() []app.Binding { return c.bindings }

func (c *fakeController) Add(_ context.Context, hc config.HotkeyConfig) (app.Binding, error) {
	for _, b := range c.bindings {
		if b.Name == hc.Name {
			return app.Binding{}, app.ErrDuplicateName
		}
	}
	h, err := app.Resolve(c.km, hc)
	if err != nil {
		return app.Binding{}, err
	}
	c.added = append(c.added, hc)
	b := app.Binding{Name: hc.Name, Shortcut: h.Shortcut(), Rawkey: h.Rawkey(), Registered: true}
	c.bindings = append(c.bindings, b)
	return b, nil
}

func (c *fakeController) Remove(name string) error {
	for i, b := range c.bindings {
		if b.Name == name {
			c.bindings = append(c.bindings[:i], c.bindings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", app.ErrUnknownName, name)
}

func (c *fakeController) Reload(context.Context) error {
	c.reloads++
	return nil
}

func (c *fakeController) KeyMap(context.Context) (*keymap.KeyMap, error) {
	if c.km == nil {
		return nil, keymap.ErrNoLayout
	}
	return c.km, nil
}

func (c *fakeController) Config() *config.Config { return c.cfg }

func newTestServer(t *testing.T) (*Server, *fakeController) {
	t.Helper()
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	km, err := keymap.New(keymap.Source{ID: "us", LocalizedName: "U.S.", Legacy: layouttest.USLegacy()})
	if err != nil {
		t.Fatal(err)
	}
	ctrl := &fakeController{
		cfg: cfg,
		km:  km,
		bindings: []app.Binding{
			{Name: "hello", Shortcut: "⌃⌥H", Action: "log", Registered: true},
			{Name: "taken", Shortcut: "⌘Space", Action: "log", Error: "hotkey already bound"},
		},
	}
	return New(ctrl, func() string { return "connected" }, "1.2.0"), ctrl
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), "GET", "/status", "")
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	got := decode[statusResponse](t, rec)
	if got.Version != "1.2.0" || got.Hotkeys != 1 || got.Failed != 1 || got.Layout != "U.S." || got.Accessory != "connected" {
		t.Fatalf("status = %+v", got)
	}

	if rec := do(t, s.Handler(), "POST", "/status", ""); rec.Code != 405 {
		t.Errorf("POST /status = %d", rec.Code)
	}
}

func TestHotkeys(t *testing.T) {
	s, ctrl := newTestServer(t)
	h := s.Handler()

	list := decode[[]app.Binding](t, do(t, h, "GET", "/hotkeys", ""))
	if len(list) != 2 || list[1].Registered {
		t.Fatalf("list = %+v", list)
	}

	rec := do(t, h, "POST", "/hotkeys", `{"name":"paste","modifiers":["ctrl","shift"],"js_code":"KeyV","action":{"type":"keystroke","text":"é"}}`)
	if rec.Code != 200 {
		t.Fatalf("add: %d %s", rec.Code, rec.Body)
	}
	got := decode[hotkeyResponse](t, rec)
	if got.Hotkey == nil || got.Hotkey.Shortcut != "⌃⇧V" {
		t.Fatalf("add = %+v", got)
	}
	if len(ctrl.added) != 1 || ctrl.added[0].Key != "KeyV" || ctrl.added[0].Action.Text != "é" {
		t.Fatalf("added = %+v", ctrl.added)
	}

	if rec := do(t, h, "DELETE", "/hotkeys?name=paste", ""); rec.Code != 200 {
		t.Errorf("delete: %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, "DELETE", "/hotkeys?name=paste", ""); rec.Code != 404 {
		t.Errorf("second delete: %d", rec.Code)
	}
}

func TestAddHotkeyErrors(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		body string
		code int
	}{
		{`{`, 400},
		{`{"modifiers":["ctrl"],"js_code":"KeyA"}`, 400},
		{`{"name":"x","js_code":"KeyA"}`, 400},
		{`{"name":"x","modifiers":["ctrl"],"js_code":"Pause"}`, 400},
		{`{"name":"hello","modifiers":["ctrl"],"js_code":"KeyA"}`, 409},
		{`{"name":"x","modifiers":["hyper"],"js_code":"KeyA"}`, 422},
	}
	for _, tt := range tests {
		rec := do(t, s.Handler(), "POST", "/hotkeys", tt.body)
		if rec.Code != tt.code {
			t.Errorf("%s: code %d, want %d (%s)", tt.body, rec.Code, tt.code, rec.Body)
		}
		if decode[hotkeyResponse](t, rec).Error == "" {
			t.Errorf("%s: no error message", tt.body)
		}
	}
}

func TestReload(t *testing.T) {
	s, ctrl := newTestServer(t)
	if rec := do(t, s.Handler(), "POST", "/reload", ""); rec.Code != 200 || ctrl.reloads != 1 {
		t.Fatalf("reload: %d, reloads=%d", rec.Code, ctrl.reloads)
	}
}

func TestAutoStart(t *testing.T) {
	s, ctrl := newTestServer(t)
	var calls []bool
	s.autoStart = func(enabled bool) error {
		calls = append(calls, enabled)
		return nil
	}
	rec := do(t, s.Handler(), "POST", "/autostart", `{"enabled":true}`)
	if rec.Code != 200 || !decode[autoStartResponse](t, rec).AutoStart {
		t.Fatalf("autostart: %d %s", rec.Code, rec.Body)
	}
	if len(calls) != 1 || !calls[0] || !ctrl.cfg.GetAutoStart() {
		t.Fatalf("calls = %v, saved = %v", calls, ctrl.cfg.GetAutoStart())
	}

	s.autoStart = func(bool) error { return errors.New("read-only home") }
	rec = do(t, s.Handler(), "POST", "/autostart", `{"enabled":false}`)
	if rec.Code != 500 || !ctrl.cfg.GetAutoStart() {
		t.Fatalf("failed autostart: %d, saved = %v", rec.Code, ctrl.cfg.GetAutoStart())
	}
}

func TestKeymapQueries(t *testing.T) {
	s, ctrl := newTestServer(t)
	h := s.Handler()

	if got := decode[keymapResponse](t, do(t, h, "GET", "/keymap", "")); got.ID != "us" || got.Name != "U.S." {
		t.Errorf("keymap = %+v", got)
	}

	target := fmt.Sprintf("/keymap/character?keycode=%d&modifier=%d", layouttest.KeyC, keys.ModOption)
	if got := decode[characterResponse](t, do(t, h, "GET", target, "")); got.Character != "ç" || got.Shortcut != "⌥C" {
		t.Errorf("character = %+v", got)
	}

	strokes := decode[[]keystrokeResponse](t, do(t, h, "GET", "/keymap/keystrokes?char=%C3%A9", ""))
	want := []keystrokeResponse{
		{Keycode: layouttest.KeyE, Modifier: uint32(keys.ModOption), Shortcut: "⌥E"},
		{Keycode: layouttest.KeyE, Shortcut: "E"},
	}
	if len(strokes) != len(want) || strokes[0] != want[0] || strokes[1] != want[1] {
		t.Errorf("keystrokes = %+v", strokes)
	}

	alts := decode[[]keystrokeResponse](t, do(t, h, "GET", "/keymap/keystrokes?char=a&all=1", ""))
	if len(alts) < 2 || alts[0] != (keystrokeResponse{Keycode: layouttest.KeyA, Shortcut: "A"}) {
		t.Errorf("all keystrokes = %+v", alts)
	}

	for target, code := range map[string]int{
		"/keymap/character?keycode=zz":      400,
		"/keymap/keystrokes?char=ab":        400,
		"/keymap/keystrokes?char=%E2%82%AC": 404,
	} {
		if rec := do(t, h, "GET", target, ""); rec.Code != code {
			t.Errorf("%s: %d, want %d", target, rec.Code, code)
		}
	}

	ctrl.km = nil
	if rec := do(t, h, "GET", "/keymap", ""); rec.Code != 503 {
		t.Errorf("no layout: %d", rec.Code)
	}
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), "GET", "/", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "⌃⌥H") || !strings.Contains(rec.Body.String(), "hotkey already bound") {
		t.Fatalf("index: %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, s.Handler(), "GET", "/missing", ""); rec.Code != 404 {
		t.Errorf("unknown path: %d", rec.Code)
	}
}

func TestStartStop(t *testing.T) {
	s, _ := newTestServer(t)
	url, err := s.Start("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	resp, err := http.Get(url + "/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
