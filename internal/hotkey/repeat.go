package hotkey

import "time"

// RepeatUnavailable is returned by the system key repeat getters when the
// setting cannot be read.
const RepeatUnavailable time.Duration = -1

// SystemKeyRepeatInterval returns the user's key repeat interval.
func SystemKeyRepeatInterval() time.Duration {
	return systemKeyRepeatInterval()
}

// SystemInitialKeyRepeatInterval returns the user's delay before key repeat
// starts.
func SystemInitialKeyRepeatInterval() time.Duration {
	return systemInitialKeyRepeatInterval()
}
