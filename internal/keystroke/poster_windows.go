//go:build windows

package keystroke

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard  = 1
	keyEventFKeyUp = 0x0002
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

// sendInputPoster posts to the foreground window through SendInput.
type sendInputPoster struct{}

// NewSystemPoster returns the platform keystroke poster.
func NewSystemPoster() (Poster, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("SendInput unavailable: %w", err)
	}
	return sendInputPoster{}, nil
}

func (sendInputPoster) Post(ctx context.Context, ks keys.Keystroke, target Target, latency time.Duration) error {
	if target.Kind != System {
		return fmt.Errorf("%v: %w", target, ErrUnsupportedTarget)
	}
	vks, err := windowsVKs(ks)
	if err != nil {
		return err
	}

	down := make([]input, len(vks))
	up := make([]input, len(vks))
	for i, vk := range vks {
		down[i] = input{inputType: inputKeyboard, ki: keyboardInput{wVk: vk}}
		up[len(vks)-1-i] = input{inputType: inputKeyboard, ki: keyboardInput{wVk: vk, dwFlags: keyEventFKeyUp}}
	}
	if err := sendInput(down); err != nil {
		return err
	}
	if err := sleep(ctx, latency); err != nil {
		_ = sendInput(up)
		return err
	}
	return sendInput(up)
}

func sendInput(in []input) error {
	n, _, err := procSendInput.Call(
		uintptr(len(in)),
		uintptr(unsafe.Pointer(&in[0])),
		unsafe.Sizeof(in[0]),
	)
	if int(n) != len(in) {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}
