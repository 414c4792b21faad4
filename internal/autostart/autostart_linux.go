//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// desktopEntry renders an XDG autostart entry.
func desktopEntry(argv []string) []byte {
	return fmt.Appendf(nil, `[Desktop Entry]
Type=Application
Name=%s
Comment=Global keyboard shortcuts
Exec=%s
Icon=hotkeyd
Categories=Utility;
Terminal=false
X-GNOME-Autostart-enabled=true
`, appName, commandLine(argv))
}

func desktopFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "autostart", "hotkeyd.desktop"), nil
}

func install(argv []string) error {
	p, err := desktopFilePath()
	if err != nil {
		return err
	}
	return writeEntry(p, desktopEntry(argv))
}

func uninstall() error {
	p, err := desktopFilePath()
	if err != nil {
		return err
	}
	return removeEntry(p)
}

func installed() bool {
	return entryExists(desktopFilePath())
}
