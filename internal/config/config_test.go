package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFileCreatesDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if len(cfg.GetHotkeys()) != 1 || !cfg.GetNotifications() {
		t.Fatalf("unexpected defaults: %+v", cfg.GetHotkeys())
	}
	if cfg.File() != p {
		t.Fatalf("File() = %q", cfg.File())
	}
}

func TestSaveAndReload(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "config"+ext)
			cfg, err := LoadFile(p)
			if err != nil {
				t.Fatal(err)
			}
			hks := []HotkeyConfig{
				{
					Name:             "type-e-acute",
					Rawkey:           0x0010_0000_00E9_0000,
					RepeatIntervalMS: 100,
					InitialRepeatMS:  -1,
					Action:           ActionConfig{Type: "keystroke", Text: "é", Target: "bundle", Bundle: "org.example.editor", LatencyMS: 5},
				},
				{
					Name:          "script",
					Modifiers:     []string{"ctrl", "shift"},
					Key:           "F5",
					InvokeOnKeyUp: true,
					Action:        ActionConfig{Type: "lua", Script: "hk.log(hotkey.name)"},
				},
			}
			if err := cfg.SetHotkeys(hks); err != nil {
				t.Fatal(err)
			}
			if err := cfg.SetAutoStart(true); err != nil {
				t.Fatal(err)
			}

			got, err := LoadFile(p)
			if err != nil {
				t.Fatal(err)
			}
			if !got.GetAutoStart() || got.GetListenAddr() != "127.0.0.1:0" {
				t.Errorf("scalar settings lost: auto_start=%v listen=%q", got.GetAutoStart(), got.GetListenAddr())
			}
			loaded := got.GetHotkeys()
			if len(loaded) != 2 {
				t.Fatalf("loaded %d hotkeys", len(loaded))
			}
			if loaded[0].Rawkey != hks[0].Rawkey || loaded[0].Action.Text != "é" || loaded[0].InitialRepeatMS != -1 {
				t.Errorf("hotkey 0 = %+v", loaded[0])
			}
			if loaded[1].String() != "Ctrl+Shift+F5" || !loaded[1].InvokeOnKeyUp || loaded[1].Action.Script != hks[1].Action.Script {
				t.Errorf("hotkey 1 = %+v", loaded[1])
			}
			if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
				t.Error("temp file left behind")
			}
		})
	}
}

func TestEmptyHotkeyListIsKept(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("hotkeys: []\nauto_start: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.GetHotkeys()) != 0 {
		t.Fatalf("hotkeys = %+v", cfg.GetHotkeys())
	}
	if !cfg.GetNotifications() {
		t.Fatal("defaults not applied under file values")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "config.ini")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("ini: %v", err)
	}
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("hotkeys = [[["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatal("malformed toml accepted")
	}
}

func TestGetHotkeysCopies(t *testing.T) {
	cfg := DefaultConfig()
	hks := cfg.GetHotkeys()
	hks[0].Modifiers[0] = "shift"
	if cfg.GetHotkeys()[0].Modifiers[0] != "ctrl" {
		t.Fatal("GetHotkeys shares modifier slices")
	}
}

func TestSetNotificationsPersists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetNotifications(false); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.GetNotifications() {
		t.Fatal("notifications re-enabled after reload")
	}
}
