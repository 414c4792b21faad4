//go:build darwin || linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeEntry writes a login item file atomically.
func writeEntry(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write login item: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename login item: %w", err)
	}
	return nil
}

func removeEntry(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func entryExists(path string, err error) bool {
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
