// Package hotkey registers global keyboard shortcuts and dispatches their
// press and release events, including autorepeat.
package hotkey

import (
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// Invocation describes the event that triggered a callback.
type Invocation struct {
	IsRepeat  bool
	EventTime time.Time
}

// Action is a hotkey callback.
type Action func(h *HotKey, inv Invocation)

// HotKey is a keycode, modifier and character triple plus the callbacks to
// run when it fires. Its identity is read when it is registered; changing
// the key of a registered HotKey takes effect on the next registration.
type HotKey struct {
	keycode   keys.Keycode
	modifier  keys.Modifier
	character keys.Char

	// Name labels the hotkey in logs and menus.
	Name string

	Action    Action
	OnRelease Action

	// WillInvoke and DidInvoke run around Action even when Action is nil.
	WillInvoke Action
	DidInvoke  Action

	// RepeatInterval > 0 repeats Action while the key is held.
	RepeatInterval time.Duration
	// InitialRepeatInterval is the delay before the first repeat: 0 uses
	// the system key repeat delay, a negative value uses RepeatInterval.
	InitialRepeatInterval time.Duration

	// InvokeOnKeyUp runs Action on release instead of press. Such hotkeys
	// do not repeat.
	InvokeOnKeyUp bool
}

// New returns a hotkey with an explicit keycode and character.
func New(k keys.Keycode, c keys.Char, m keys.Modifier) *HotKey {
	return &HotKey{keycode: k, character: c, modifier: m}
}

// NewWithKeycode derives the character from km. The result is invalid when
// the key produces nothing on the layout.
func NewWithKeycode(km *keymap.KeyMap, k keys.Keycode, m keys.Modifier) *HotKey {
	return New(k, km.BaseCharacterForKeycode(k), m)
}

// NewWithCharacter derives the keycode from km. The result is invalid when
// c cannot be typed with a single keystroke.
func NewWithCharacter(km *keymap.KeyMap, c keys.Char, m keys.Modifier) *HotKey {
	k, _ := km.KeycodeForCharacter(c)
	return New(k, c, m)
}

// NewFromRawkey unpacks a persisted hotkey.
func NewFromRawkey(raw uint64) *HotKey {
	h := &HotKey{}
	h.SetRawkey(raw)
	return h
}

func (h *HotKey) Keycode() keys.Keycode   { return h.keycode }
func (h *HotKey) Character() keys.Char    { return h.character }
func (h *HotKey) Modifier() keys.Modifier { return h.modifier }

// SetModifier replaces the modifier mask.
func (h *HotKey) SetModifier(m keys.Modifier) {
	h.modifier = m
}

// SetKeycodeAndCharacter sets both halves without consulting a keymap.
func (h *HotKey) SetKeycodeAndCharacter(k keys.Keycode, c keys.Char) {
	h.keycode = k
	h.character = c
}

// IsValid reports whether both the keycode and the character resolved.
func (h *HotKey) IsValid() bool {
	return h != nil && h.character != keys.NilChar && h.keycode != keys.InvalidKeycode
}

// Rawkey returns the packed identity.
func (h *HotKey) Rawkey() uint64 {
	return keys.Pack(h.keycode, h.modifier, h.character)
}

// SetRawkey replaces the identity with a packed value.
func (h *HotKey) SetRawkey(raw uint64) {
	h.keycode, h.modifier, h.character = keys.Unpack(raw)
}

// Shortcut returns the glyph form, for example "⌘Space".
func (h *HotKey) Shortcut() string {
	if !h.IsValid() {
		return ""
	}
	return keymap.StringRepresentation(h.character, h.modifier)
}

func (h *HotKey) String() string {
	if h.Name != "" {
		return h.Name + " (" + h.Shortcut() + ")"
	}
	return h.Shortcut()
}

type combo struct {
	keycode  keys.Keycode
	modifier keys.Modifier
}

func (h *HotKey) combo() combo {
	return combo{keycode: h.keycode, modifier: h.modifier}
}
