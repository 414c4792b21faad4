// Package keystroke synthesizes key presses and delivers them to the
// system, to a specific application, or to a USB accessory.
package keystroke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// DefaultLatency is the pause between the press and release events of one
// keystroke.
const DefaultLatency = 3 * time.Millisecond

var (
	// ErrUnsupportedTarget is returned by posters that cannot reach the
	// requested kind of target.
	ErrUnsupportedTarget = errors.New("unsupported keystroke target")
	// ErrNoKeystroke is returned when a character cannot be typed on the
	// current layout.
	ErrNoKeystroke = errors.New("no keystroke produces character")
	// ErrTargetNotFound is returned when the target application is not
	// running.
	ErrTargetNotFound = errors.New("keystroke target not found")
	// ErrUnsupportedKey is returned for keycodes a poster has no name for.
	ErrUnsupportedKey = errors.New("keycode has no synthetic equivalent")
)

// Kind selects where a keystroke is delivered.
type Kind int

const (
	System    Kind = iota // frontmost application, through the system event stream
	Bundle                // application with a bundle identifier (window class on X11)
	Process               // process identifier
	Signature             // legacy four character creator code
	Accessory             // USB accessory keyboard
)

func (k Kind) String() string {
	switch k {
	case System:
		return "system"
	case Bundle:
		return "bundle"
	case Process:
		return "process"
	case Signature:
		return "signature"
	case Accessory:
		return "accessory"
	default:
		return "unknown"
	}
}

// ParseKind is the reverse of Kind.String. The empty string is System.
func ParseKind(s string) (Kind, error) {
	for k := System; k <= Accessory; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	if s == "" {
		return System, nil
	}
	return System, fmt.Errorf("unknown keystroke target %q", s)
}

// Target addresses a keystroke. Only the field matching Kind is read.
type Target struct {
	Kind      Kind
	Bundle    string
	PID       int
	Signature uint32
}

func (t Target) String() string {
	switch t.Kind {
	case Bundle:
		return "bundle:" + t.Bundle
	case Process:
		return fmt.Sprintf("process:%d", t.PID)
	case Signature:
		return fmt.Sprintf("signature:%08x", t.Signature)
	default:
		return t.Kind.String()
	}
}

// Poster delivers one keystroke: modifiers down, key down, latency, key up,
// modifiers up.
type Poster interface {
	Post(ctx context.Context, ks keys.Keystroke, target Target, latency time.Duration) error
}

// PostCharacter types c on km's layout. Characters reached through a dead
// key are posted as the full keystroke sequence.
func PostCharacter(ctx context.Context, p Poster, km *keymap.KeyMap, c keys.Char, target Target, latency time.Duration) error {
	seq := km.KeycodesForCharacter(c, 4)
	if len(seq) == 0 {
		return fmt.Errorf("%w: U+%04X", ErrNoKeystroke, uint16(c))
	}
	for _, ks := range seq {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Post(ctx, ks, target, latency); err != nil {
			return fmt.Errorf("post %#x/%#x: %w", ks.Keycode, uint32(ks.Modifier), err)
		}
	}
	return nil
}

// Router sends accessory keystrokes to Accessory and everything else to
// System. A nil poster rejects its targets with ErrUnsupportedTarget.
type Router struct {
	System    Poster
	Accessory Poster
}

func (r *Router) Post(ctx context.Context, ks keys.Keystroke, target Target, latency time.Duration) error {
	p := r.System
	if target.Kind == Accessory {
		p = r.Accessory
	}
	if p == nil {
		return fmt.Errorf("%v: %w", target, ErrUnsupportedTarget)
	}
	return p.Post(ctx, ks, target, latency)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
