// Package action builds hotkey callbacks from their configuration.
package action

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/keystroke"
)

// ErrUnknownType is returned for action types other than log, keystroke
// and lua.
var ErrUnknownType = errors.New("unknown action type")

// Types of actions.
const (
	TypeLog       = "log"
	TypeKeystroke = "keystroke"
	TypeLua       = "lua"
)

// postTimeout bounds the keystrokes of one invocation.
const postTimeout = 2 * time.Second

// Env is what actions may use at run time.
type Env struct {
	Poster  keystroke.Poster
	Keymaps *keymap.Service
	// OnError reports failures of running actions. Nil logs them.
	OnError func(h *hotkey.HotKey, err error)
}

func (e *Env) report(h *hotkey.HotKey, err error) {
	if e != nil && e.OnError != nil {
		e.OnError(h, err)
		return
	}
	log.Printf("[action] %v: %v", h, err)
}

// keyMap returns the current keymap, or nil without a keymap service.
// Special keys resolve on a nil keymap.
func (e *Env) keyMap(ctx context.Context) (*keymap.KeyMap, error) {
	if e == nil || e.Keymaps == nil {
		return nil, nil
	}
	return e.Keymaps.Current(ctx)
}

// New returns the callback for cfg. Scripts are compiled here so syntax
// errors surface at load time.
func New(cfg config.ActionConfig, env *Env) (hotkey.Action, error) {
	switch cfg.Type {
	case "", TypeLog:
		return logAction, nil
	case TypeKeystroke:
		ks, err := newKeystroke(cfg, env)
		if err != nil {
			return nil, err
		}
		return ks.run, nil
	case TypeLua:
		s, err := newScript(cfg.Script, env)
		if err != nil {
			return nil, err
		}
		return s.run, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

func logAction(h *hotkey.HotKey, inv hotkey.Invocation) {
	log.Printf("[action] %v fired (repeat=%v)", h, inv.IsRepeat)
}

// ParseTarget converts the target fields of cfg.
func ParseTarget(cfg config.ActionConfig) (keystroke.Target, error) {
	kind, err := keystroke.ParseKind(cfg.Target)
	if err != nil {
		return keystroke.Target{}, err
	}
	t := keystroke.Target{Kind: kind, Bundle: cfg.Bundle, PID: cfg.PID}
	switch kind {
	case keystroke.Bundle:
		if cfg.Bundle == "" {
			return t, errors.New("bundle target without bundle")
		}
	case keystroke.Process:
		if cfg.PID <= 0 {
			return t, fmt.Errorf("invalid pid %d", cfg.PID)
		}
	case keystroke.Signature:
		sig, err := parseSignature(cfg.Signature)
		if err != nil {
			return t, err
		}
		t.Signature = sig
	}
	return t, nil
}

// parseSignature accepts a four character code ("TEXT") or a number.
func parseSignature(s string) (uint32, error) {
	if len(s) == 4 {
		return uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3]), nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid signature %q", s)
	}
	return uint32(v), nil
}

// keystrokeAction posts a packed keystroke or types text.
type keystrokeAction struct {
	env     *Env
	target  keystroke.Target
	latency time.Duration
	stroke  keys.Keystroke
	char    keys.Char
	text    []keys.Char
}

func newKeystroke(cfg config.ActionConfig, env *Env) (*keystrokeAction, error) {
	if env == nil || env.Poster == nil {
		return nil, errors.New("keystroke action without poster")
	}
	target, err := ParseTarget(cfg)
	if err != nil {
		return nil, err
	}
	a := &keystrokeAction{env: env, target: target, latency: keystroke.DefaultLatency}
	if cfg.LatencyMS > 0 {
		a.latency = time.Duration(cfg.LatencyMS) * time.Millisecond
	}

	switch {
	case cfg.Text != "":
		for _, r := range cfg.Text {
			if r > 0xFFFF {
				return nil, fmt.Errorf("character %q outside the basic plane", r)
			}
			a.text = append(a.text, keys.Char(r))
		}
	case cfg.Rawkey != 0:
		k, m, c := keys.Unpack(cfg.Rawkey)
		a.stroke = keys.Keystroke{Keycode: k, Modifier: m}
		a.char = c
		if k == keys.InvalidKeycode && c == keys.NilChar {
			return nil, errors.New("keystroke without keycode or character")
		}
	default:
		return nil, errors.New("keystroke action needs rawkey or text")
	}
	return a, nil
}

func (a *keystrokeAction) run(h *hotkey.HotKey, _ hotkey.Invocation) {
	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()
	if err := a.post(ctx); err != nil {
		a.env.report(h, err)
	}
}

func (a *keystrokeAction) post(ctx context.Context) error {
	if a.text == nil && a.stroke.Keycode != keys.InvalidKeycode {
		return a.env.Poster.Post(ctx, a.stroke, a.target, a.latency)
	}

	km, err := a.env.keyMap(ctx)
	if err != nil {
		return err
	}
	if a.text == nil {
		// character only: the keycode comes from the current layout
		return a.postChar(ctx, km, a.char, a.stroke.Modifier)
	}
	for _, c := range a.text {
		if err := keystroke.PostCharacter(ctx, a.env.Poster, km, c, a.target, a.latency); err != nil {
			return err
		}
	}
	return nil
}

func (a *keystrokeAction) postChar(ctx context.Context, km *keymap.KeyMap, c keys.Char, m keys.Modifier) error {
	k, base := km.KeycodeForCharacter(c)
	if k == keys.InvalidKeycode {
		return fmt.Errorf("%w: U+%04X", keystroke.ErrNoKeystroke, uint16(c))
	}
	return a.env.Poster.Post(ctx, keys.Keystroke{Keycode: k, Modifier: base | m}, a.target, a.latency)
}
