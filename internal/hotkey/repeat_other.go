//go:build !darwin && !windows

package hotkey

import "time"

// X server defaults: 660ms delay, 25 repeats per second.
func systemKeyRepeatInterval() time.Duration {
	return 40 * time.Millisecond
}

func systemInitialKeyRepeatInterval() time.Duration {
	return 660 * time.Millisecond
}
