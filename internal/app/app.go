// Package app binds the configured hotkeys to the registry and keeps them
// in step with the configuration file and the keyboard layout.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/action"
	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/keystroke"
)

var (
	// ErrDuplicateName is returned when adding a hotkey whose name is taken.
	ErrDuplicateName = errors.New("hotkey name already used")
	// ErrUnknownName is returned when removing a hotkey that does not exist.
	ErrUnknownName = errors.New("no hotkey with that name")
)

// layoutTimeout bounds reading the current layout.
const layoutTimeout = 5 * time.Second

// Notifier receives user-facing events.
type Notifier interface {
	RegisterFailed(shortcut string)
	ActionFailed(name string, err error)
	LayoutChanged(name string)
}

// Binding is the state of one configured hotkey.
type Binding struct {
	Name       string `json:"name"`
	Shortcut   string `json:"shortcut"`
	Rawkey     uint64 `json:"rawkey"`
	Action     string `json:"action"`
	Registered bool   `json:"registered"`
	Error      string `json:"error,omitempty"`
}

type binding struct {
	cfg config.HotkeyConfig
	hk  *hotkey.HotKey // nil when the key did not resolve
	err error
}

func (b *binding) state(reg *hotkey.Registry) Binding {
	out := Binding{Name: b.cfg.Name, Action: b.cfg.Action.Type, Shortcut: b.cfg.String()}
	if out.Action == "" {
		out.Action = action.TypeLog
	}
	if b.hk != nil {
		out.Shortcut = b.hk.Shortcut()
		out.Rawkey = b.hk.Rawkey()
		out.Registered = b.err == nil && reg.IsRegistered(b.hk)
	}
	if b.err != nil {
		out.Error = b.err.Error()
	}
	return out
}

// Options wires an App.
type Options struct {
	Config   *config.Config
	Registry *hotkey.Registry
	Keymaps  *keymap.Service
	// Provider, when set, triggers a rebind on every layout change.
	Provider keymap.Provider
	Poster   keystroke.Poster
	Notifier Notifier
	// OnChange runs after the set of bindings changed.
	OnChange func()
}

// App owns the bindings between configuration and registry.
type App struct {
	reg      *hotkey.Registry
	keymaps  *keymap.Service
	env      *action.Env
	notifier Notifier
	onChange func()

	mu       sync.Mutex
	cfg      *config.Config
	bindings []*binding
	keyMap   *keymap.KeyMap // layout the bindings were resolved on
	unsub    func()
}

// New creates an App. Call Load to register the configured hotkeys.
func New(opts Options) *App {
	a := &App{
		reg:      opts.Registry,
		keymaps:  opts.Keymaps,
		notifier: opts.Notifier,
		onChange: opts.OnChange,
		cfg:      opts.Config,
	}
	a.env = &action.Env{Poster: opts.Poster, Keymaps: opts.Keymaps, OnError: a.actionFailed}
	if opts.Provider != nil {
		a.unsub = opts.Provider.Subscribe(a.layoutChanged)
	}
	return a
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// KeyMap returns the keymap of the current layout.
func (a *App) KeyMap(ctx context.Context) (*keymap.KeyMap, error) {
	return a.keymaps.Current(ctx)
}

// Load registers every configured hotkey, replacing what was registered
// before. Hotkeys that fail are kept with their error; see Bindings.
func (a *App) Load(ctx context.Context) {
	a.mu.Lock()
	a.loadLocked(ctx)
	a.mu.Unlock()
	a.changed()
}

func (a *App) loadLocked(ctx context.Context) {
	km := a.currentKeyMap(ctx)
	if km != nil {
		a.keyMap = km
	}

	a.reg.UnregisterAll()
	a.bindings = a.bindings[:0]
	ok := 0
	for _, hc := range a.cfg.GetHotkeys() {
		b := a.bind(km, hc)
		a.bindings = append(a.bindings, b)
		if b.err == nil {
			ok++
		}
	}
	log.Printf("[app] %d of %d hotkeys registered", ok, len(a.bindings))
}

// currentKeyMap returns nil when the layout cannot be read; special keys
// still resolve then.
func (a *App) currentKeyMap(ctx context.Context) *keymap.KeyMap {
	if a.keymaps == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, layoutTimeout)
	defer cancel()
	km, err := a.keymaps.Current(ctx)
	if err != nil {
		log.Printf("[app] keyboard layout: %v", err)
		return nil
	}
	return km
}

func (a *App) bind(km *keymap.KeyMap, hc config.HotkeyConfig) *binding {
	b := &binding{cfg: hc}
	h, err := Resolve(km, hc)
	if err != nil {
		b.err = err
		log.Printf("[app] hotkey %q: %v", hc.Name, err)
		return b
	}
	b.hk = h
	if a.reg.IsRegistered(h) {
		// Register would succeed without installing this binding's action.
		b.err = fmt.Errorf("%w: %s is used by another hotkey", hotkey.ErrAlreadyBound, h.Shortcut())
		log.Printf("[app] hotkey %q: %v", hc.Name, b.err)
		return b
	}
	if h.Action, err = action.New(hc.Action, a.env); err != nil {
		b.err = fmt.Errorf("action: %w", err)
		log.Printf("[app] hotkey %q: %v", hc.Name, b.err)
		return b
	}
	if err := a.reg.Try(h); err != nil {
		b.err = err
		log.Printf("[app] register %v: %v", h, err)
		if errors.Is(err, hotkey.ErrAlreadyBound) && a.notifier != nil {
			a.notifier.RegisterFailed(h.Shortcut())
		}
		return b
	}
	return b
}

// Resolve builds the hotkey for hc on km. A packed rawkey with a keycode
// takes its character from km, so shortcuts show the glyph of the active
// layout; one without a keycode is found by character.
func Resolve(km *keymap.KeyMap, hc config.HotkeyConfig) (*hotkey.HotKey, error) {
	var h *hotkey.HotKey
	switch {
	case hc.Rawkey != 0:
		k, m, c := keys.Unpack(hc.Rawkey)
		if k != keys.InvalidKeycode {
			h = hotkey.NewWithKeycode(km, k, m)
			if !h.IsValid() && c != keys.NilChar {
				h = hotkey.New(k, c, m)
			}
		} else {
			h = hotkey.NewWithCharacter(km, c, m)
		}
	case hc.Key != "":
		k, err := hotkey.KeycodeForCode(hc.Key)
		if err != nil {
			return nil, err
		}
		m, err := hotkey.ParseModifiers(hc.Modifiers)
		if err != nil {
			return nil, err
		}
		h = hotkey.NewWithKeycode(km, k, m)
		if !h.IsValid() {
			h = hotkey.New(k, hotkey.CharacterForCode(hc.Key), m)
		}
	default:
		return nil, errors.New("hotkey needs rawkey or key")
	}
	if !h.IsValid() {
		return nil, fmt.Errorf("%w: %s not available on this layout", hotkey.ErrInvalidHotKey, hc)
	}

	h.Name = hc.Name
	h.RepeatInterval = time.Duration(hc.RepeatIntervalMS) * time.Millisecond
	h.InitialRepeatInterval = time.Duration(hc.InitialRepeatMS) * time.Millisecond
	h.InvokeOnKeyUp = hc.InvokeOnKeyUp
	return h, nil
}

// Bindings returns the state of every configured hotkey in file order.
func (a *App) Bindings() []Binding {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Binding, len(a.bindings))
	for i, b := range a.bindings {
		out[i] = b.state(a.reg)
	}
	return out
}

// Add registers hc and saves it to the configuration. Nothing is saved
// when the hotkey cannot be registered.
func (a *App) Add(ctx context.Context, hc config.HotkeyConfig) (Binding, error) {
	a.mu.Lock()
	for _, b := range a.bindings {
		if b.cfg.Name == hc.Name {
			a.mu.Unlock()
			return Binding{}, fmt.Errorf("%w: %q", ErrDuplicateName, hc.Name)
		}
	}
	b := a.bind(a.currentKeyMap(ctx), hc)
	if b.err != nil {
		a.mu.Unlock()
		return b.state(a.reg), b.err
	}
	a.bindings = append(a.bindings, b)
	err := a.cfg.SetHotkeys(append(a.cfg.GetHotkeys(), hc))
	state := b.state(a.reg)
	a.mu.Unlock()

	if err != nil {
		return state, fmt.Errorf("registered but not saved: %w", err)
	}
	a.changed()
	return state, nil
}

// Remove unregisters the hotkey named name and deletes it from the
// configuration.
func (a *App) Remove(name string) error {
	a.mu.Lock()
	idx := -1
	for i, b := range a.bindings {
		if b.cfg.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	// a failed binding may share its key with one that is registered
	if b := a.bindings[idx]; b.hk != nil && b.err == nil {
		a.reg.Unregister(b.hk)
	}
	a.bindings = append(a.bindings[:idx], a.bindings[idx+1:]...)

	var kept []config.HotkeyConfig
	for _, hc := range a.cfg.GetHotkeys() {
		if hc.Name != name {
			kept = append(kept, hc)
		}
	}
	err := a.cfg.SetHotkeys(kept)
	a.mu.Unlock()

	a.changed()
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Reload re-reads the configuration file and registers its hotkeys.
func (a *App) Reload(ctx context.Context) error {
	a.mu.Lock()
	cfg, err := config.LoadFile(a.cfg.File())
	if err != nil {
		a.mu.Unlock()
		return err
	}
	a.cfg = cfg
	a.loadLocked(ctx)
	a.mu.Unlock()

	a.changed()
	return nil
}

// layoutChanged rebinds when the input source or its layout data changed.
func (a *App) layoutChanged() {
	if a.keymaps == nil {
		return
	}
	// The service drops its cache from its own subscription; callbacks
	// run in no fixed order.
	a.keymaps.Invalidate()

	a.mu.Lock()
	prev := a.keyMap
	km := a.currentKeyMap(context.Background())
	if km == nil || km.SameLayout(prev) {
		a.mu.Unlock()
		return
	}
	log.Printf("[app] layout changed from %q to %q", prev.ID(), km.ID())
	a.loadLocked(context.Background())
	a.mu.Unlock()

	if a.notifier != nil {
		a.notifier.LayoutChanged(km.LocalizedName())
	}
	a.changed()
}

func (a *App) actionFailed(h *hotkey.HotKey, err error) {
	log.Printf("[app] %v: %v", h, err)
	if a.notifier != nil {
		a.notifier.ActionFailed(h.Name, err)
	}
}

func (a *App) changed() {
	if a.onChange != nil {
		a.onChange()
	}
}

// Close unregisters every hotkey and stops following layout changes.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	a.reg.UnregisterAll()
	a.bindings = nil
}
