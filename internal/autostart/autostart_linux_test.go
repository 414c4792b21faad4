//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableDisable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	defer func(f func() (string, error)) { appPath = f }(appPath)
	appPath = func() (string, error) { return "/opt/hotkey kit/hotkeyd", nil }

	if IsEnabled() {
		t.Fatal("enabled before Enable")
	}
	if err := Set(true, "-config", "/tmp/hk.toml"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "autostart", "hotkeyd.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\nExec=\"/opt/hotkey kit/hotkeyd\" -config /tmp/hk.toml\n") || !strings.Contains(string(data), "\nName=HotKeyKit\n") {
		t.Fatalf("desktop entry:\n%s", data)
	}
	if !IsEnabled() {
		t.Fatal("not enabled after Enable")
	}
	if err := Set(false); err != nil {
		t.Fatal(err)
	}
	if IsEnabled() {
		t.Fatal("still enabled after Disable")
	}
	if err := Disable(); err != nil {
		t.Fatalf("second Disable: %v", err)
	}
}
