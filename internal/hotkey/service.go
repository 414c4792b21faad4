package hotkey

import (
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// Token identifies one registration with a Service.
type Token string

// Phase is the key transition reported by a Service.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseUp
)

func (p Phase) String() string {
	if p == PhaseUp {
		return "up"
	}
	return "down"
}

// Sink receives key events for registered tokens.
type Sink func(tok Token, phase Phase, at time.Time)

// Service is the operating system's global shortcut facility. A Register
// error means the combination is already taken.
type Service interface {
	Register(k keys.Keycode, m keys.Modifier) (Token, error)
	Unregister(tok Token) error
	SetSink(s Sink)
}
