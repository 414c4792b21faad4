//go:build darwin

package hotkey

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Global defaults are stored in ticks of 15ms.
const repeatTick = 15 * time.Millisecond

func readGlobalDefault(key string) time.Duration {
	out, err := exec.Command("defaults", "read", "-g", key).Output()
	if err != nil {
		return RepeatUnavailable
	}
	ticks, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || ticks < 0 {
		return RepeatUnavailable
	}
	return time.Duration(ticks * float64(repeatTick))
}

func systemKeyRepeatInterval() time.Duration {
	return readGlobalDefault("KeyRepeat")
}

func systemInitialKeyRepeatInterval() time.Duration {
	return readGlobalDefault("InitialKeyRepeat")
}
