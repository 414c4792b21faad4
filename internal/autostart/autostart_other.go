//go:build !darwin && !linux && !windows

package autostart

func install([]string) error { return ErrUnsupported }

func uninstall() error { return nil }

func installed() bool { return false }
