// Package autostart registers hotkeyd to start on login. Each platform
// provides install, uninstall and installed.
package autostart

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// ErrUnsupported is returned on platforms without a login item facility.
var ErrUnsupported = errors.New("start at login not supported on this platform")

// appName labels the login item.
const appName = "HotKeyKit"

// appPath returns the path to the currently running executable.
var appPath = os.Executable

// Enable registers the running executable to start on login. args are
// passed to it, for example the -config flag of the running instance.
func Enable(args ...string) error {
	exe, err := appPath()
	if err != nil {
		return fmt.Errorf("get executable path: %w", err)
	}
	argv := append([]string{exe}, args...)
	if err := install(argv); err != nil {
		return err
	}
	log.Printf("[autostart] enabled: %s", commandLine(argv))
	return nil
}

// Disable removes the login item. Removing a missing item succeeds.
func Disable() error {
	if err := uninstall(); err != nil {
		return err
	}
	log.Printf("[autostart] disabled")
	return nil
}

// IsEnabled reports whether the login item exists.
func IsEnabled() bool {
	return installed()
}

// Set enables or disables the login item.
func Set(enabled bool, args ...string) error {
	if enabled {
		return Enable(args...)
	}
	return Disable()
}

// commandLine joins argv, quoting arguments with spaces or quotes.
func commandLine(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
