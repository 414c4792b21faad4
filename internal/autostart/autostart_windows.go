//go:build windows

package autostart

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// runKey lists the programs Windows starts at logon for the current user.
const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

func openRunKey(access uint32) (registry.Key, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, access)
	if err != nil {
		return 0, fmt.Errorf("open registry key: %w", err)
	}
	return k, nil
}

func install(argv []string) error {
	k, err := openRunKey(registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	if err := k.SetStringValue(appName, commandLine(argv)); err != nil {
		return fmt.Errorf("set registry value: %w", err)
	}
	return nil
}

func uninstall() error {
	k, err := openRunKey(registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	if err := k.DeleteValue(appName); err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("delete registry value: %w", err)
	}
	return nil
}

func installed() bool {
	k, err := openRunKey(registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	_, _, err = k.GetStringValue(appName)
	return err == nil
}
