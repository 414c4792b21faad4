//go:build darwin && cgo

package keystroke

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework AppKit
#import <ApplicationServices/ApplicationServices.h>
#import <AppKit/AppKit.h>
#include <stdbool.h>
#include <stdlib.h>

static int hk_post(CGKeyCode code, CGEventFlags flags, bool down, pid_t pid) {
	CGEventRef ev = CGEventCreateKeyboardEvent(NULL, code, down);
	if (ev == NULL) {
		return -1;
	}
	CGEventSetFlags(ev, flags);
	if (pid > 0) {
		CGEventPostToPid(pid, ev);
	} else {
		CGEventPost(kCGHIDEventTap, ev);
	}
	CFRelease(ev);
	return 0;
}

static pid_t hk_pid_for_bundle(const char *bundle) {
	@autoreleasepool {
		NSString *ident = [NSString stringWithUTF8String:bundle];
		NSArray *apps = [NSRunningApplication runningApplicationsWithBundleIdentifier:ident];
		if ([apps count] == 0) {
			return -1;
		}
		return [[apps objectAtIndex:0] processIdentifier];
	}
}
*/
import "C"

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// quartzPoster posts CGEvents. Native modifiers are event flags, so they
// are passed through unchanged.
type quartzPoster struct{}

// NewSystemPoster returns the platform keystroke poster.
func NewSystemPoster() (Poster, error) {
	return quartzPoster{}, nil
}

func (quartzPoster) Post(ctx context.Context, ks keys.Keystroke, target Target, latency time.Duration) error {
	var pid C.pid_t
	switch target.Kind {
	case System:
	case Process:
		pid = C.pid_t(target.PID)
	case Bundle:
		cs := C.CString(target.Bundle)
		pid = C.hk_pid_for_bundle(cs)
		C.free(unsafe.Pointer(cs))
		if pid <= 0 {
			return fmt.Errorf("%v: %w", target, ErrTargetNotFound)
		}
	default:
		return fmt.Errorf("%v: %w", target, ErrUnsupportedTarget)
	}

	code := C.CGKeyCode(ks.Keycode)
	flags := C.CGEventFlags(ks.Modifier)
	if C.hk_post(code, flags, C.bool(true), pid) != 0 {
		return fmt.Errorf("create key down event for %#x", ks.Keycode)
	}
	if err := sleep(ctx, latency); err != nil {
		C.hk_post(code, flags, C.bool(false), pid)
		return err
	}
	if C.hk_post(code, flags, C.bool(false), pid) != 0 {
		return fmt.Errorf("create key up event for %#x", ks.Keycode)
	}
	return nil
}
