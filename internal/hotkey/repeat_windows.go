//go:build windows

package hotkey

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	spiGetKeyboardSpeed = 0x000A
	spiGetKeyboardDelay = 0x0016
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procSystemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

func systemParameter(action uint32) (uint32, bool) {
	var v uint32
	r, _, _ := procSystemParametersInfo.Call(uintptr(action), 0, uintptr(unsafe.Pointer(&v)), 0)
	return v, r != 0
}

// Keyboard speed 0..31 maps to roughly 2.5..30 repeats per second.
func systemKeyRepeatInterval() time.Duration {
	speed, ok := systemParameter(spiGetKeyboardSpeed)
	if !ok || speed > 31 {
		return RepeatUnavailable
	}
	perSecond := 2.5 + float64(speed)*27.5/31
	return time.Duration(float64(time.Second) / perSecond)
}

// Keyboard delay 0..3 maps to 250ms..1s.
func systemInitialKeyRepeatInterval() time.Duration {
	delay, ok := systemParameter(spiGetKeyboardDelay)
	if !ok || delay > 3 {
		return RepeatUnavailable
	}
	return time.Duration(delay+1) * 250 * time.Millisecond
}
