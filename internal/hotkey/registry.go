package hotkey

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

var (
	// ErrInvalidHotKey is returned for hotkeys whose keycode or character
	// did not resolve, or that the filter rejects.
	ErrInvalidHotKey = errors.New("invalid hotkey")
	// ErrAlreadyBound is returned when the combination is taken, either in
	// this process or system wide.
	ErrAlreadyBound = errors.New("hotkey already bound")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("hotkey registry closed")
)

// Filter vetoes key combinations, for example ones reserved by the system.
type Filter func(k keys.Keycode, m keys.Modifier) bool

// Option configures a Registry.
type Option func(*Registry)

// WithFilter installs a validity filter.
func WithFilter(f Filter) Option {
	return func(r *Registry) { r.filter = f }
}

// WithClock replaces the clock used for repeat timers.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithRepeatDefaults replaces the source of the system key repeat timing
// used when a hotkey's InitialRepeatInterval is 0.
func WithRepeatDefaults(f func() (initial, interval time.Duration)) Option {
	return func(r *Registry) { r.repeatDefaults = f }
}

// WithTrace logs every dispatched key event.
func WithTrace(on bool) Option {
	return func(r *Registry) { r.trace = on }
}

type record struct {
	hotkey  *HotKey
	key     uint64
	combo   combo
	token   Token
	repeat  time.Duration
	initial time.Duration

	timer Timer
	gen   uint64 // bumped whenever the repeat timer is cancelled
}

// Registry owns the registered hotkeys of a process. Hotkeys are
// identified by value: two HotKeys with the same keycode, modifier and
// character are the same registration. State changes are serialized by mu;
// callbacks run outside mu, one at a time, so they may call back into the
// registry.
type Registry struct {
	mu       sync.Mutex
	invokeMu sync.Mutex
	invoker  atomic.Uint64 // goroutine running a callback, 0 when idle

	svc            Service
	filter         Filter
	clock          Clock
	repeatDefaults func() (initial, interval time.Duration)
	trace          bool

	byKey   map[uint64]*record // by Rawkey
	byCombo map[combo]*record
	byToken map[Token]*record
	closed  bool
}

// NewRegistry returns a registry dispatching events from svc. The registry
// installs itself as the service's sink.
func NewRegistry(svc Service, opts ...Option) *Registry {
	r := &Registry{
		svc:            svc,
		clock:          realClock{},
		repeatDefaults: systemRepeatDefaults,
		byKey:          make(map[uint64]*record),
		byCombo:        make(map[combo]*record),
		byToken:        make(map[Token]*record),
	}
	for _, opt := range opts {
		opt(r)
	}
	svc.SetSink(r.dispatch)
	return r
}

// IsValidHotKey reports whether k and m could be registered: the
// combination is not already registered here and the filter accepts it.
func (r *Registry) IsValidHotKey(k keys.Keycode, m keys.Modifier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkLocked(combo{keycode: k, modifier: m}) == nil
}

func (r *Registry) checkLocked(c combo) error {
	if c.keycode == keys.InvalidKeycode {
		return ErrInvalidHotKey
	}
	if _, ok := r.byCombo[c]; ok {
		return ErrAlreadyBound
	}
	if r.filter != nil && !r.filter(c.keycode, c.modifier) {
		return fmt.Errorf("%w: rejected by filter", ErrInvalidHotKey)
	}
	return nil
}

// Register registers h and reports success. Registering a hotkey equal to
// one already registered succeeds without effect.
func (r *Registry) Register(h *HotKey) bool {
	if err := r.Try(h); err != nil {
		log.Printf("[hotkey] register %v: %v", h, err)
		return false
	}
	return true
}

// Try is Register with the reason for a failure.
func (r *Registry) Try(h *HotKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if !h.IsValid() {
		return ErrInvalidHotKey
	}
	if _, ok := r.byKey[h.Rawkey()]; ok {
		return nil
	}
	c := h.combo()
	if err := r.checkLocked(c); err != nil {
		return err
	}
	tok, err := r.svc.Register(c.keycode, c.modifier)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAlreadyBound, err)
	}
	rec := &record{
		hotkey:  h,
		key:     h.Rawkey(),
		combo:   c,
		token:   tok,
		repeat:  h.RepeatInterval,
		initial: h.InitialRepeatInterval,
	}
	r.byKey[h.Rawkey()] = rec
	r.byCombo[c] = rec
	r.byToken[tok] = rec
	log.Printf("[hotkey] registered %v", h)
	return nil
}

// Unregister removes the registration equal to h, cancelling any pending
// repeat. A repeat already running on another goroutine completes before
// Unregister returns. Unregistering a hotkey that is not registered
// succeeds without effect.
func (r *Registry) Unregister(h *HotKey) bool {
	r.mu.Lock()
	rec, ok := r.byKey[h.Rawkey()]
	if !ok {
		r.mu.Unlock()
		return true
	}
	r.removeLocked(rec)
	r.mu.Unlock()
	r.waitCallback()

	if err := r.svc.Unregister(rec.token); err != nil {
		log.Printf("[hotkey] unregister %v: %v", h, err)
		return false
	}
	log.Printf("[hotkey] unregistered %v", h)
	return true
}

func (r *Registry) removeLocked(rec *record) {
	r.stopTimerLocked(rec)
	delete(r.byKey, rec.key)
	delete(r.byCombo, rec.combo)
	delete(r.byToken, rec.token)
}

// UnregisterAll removes every hotkey.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	recs := make([]*record, 0, len(r.byToken))
	for _, rec := range r.byToken {
		recs = append(recs, rec)
		r.removeLocked(rec)
	}
	r.mu.Unlock()
	r.waitCallback()

	for _, rec := range recs {
		if err := r.svc.Unregister(rec.token); err != nil {
			log.Printf("[hotkey] unregister %v: %v", rec.hotkey, err)
		}
	}
}

// Close unregisters everything and detaches from the service. Further
// registrations fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.UnregisterAll()
	r.svc.SetSink(nil)
}

// IsRegistered reports whether a hotkey equal to h is registered.
func (r *Registry) IsRegistered(h *HotKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byKey[h.Rawkey()]
	return ok
}

// HotKeys returns the registered hotkeys ordered by packed value.
func (r *Registry) HotKeys() []*HotKey {
	r.mu.Lock()
	out := make([]*HotKey, 0, len(r.byKey))
	for _, rec := range r.byKey {
		out = append(out, rec.hotkey)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Rawkey() < out[j].Rawkey() })
	return out
}

// Len returns the number of registered hotkeys.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

// dispatch is the service sink.
func (r *Registry) dispatch(tok Token, phase Phase, at time.Time) {
	r.mu.Lock()
	rec, ok := r.byToken[tok]
	if r.trace {
		log.Printf("[hotkey] event %s token=%s known=%v", phase, tok, ok)
	}
	if !ok {
		r.mu.Unlock()
		return
	}
	h := rec.hotkey
	r.stopTimerLocked(rec)
	gen := rec.gen

	switch phase {
	case PhaseDown:
		if h.InvokeOnKeyUp {
			r.mu.Unlock()
			return
		}
		if rec.repeat > 0 {
			r.armLocked(rec, r.initialDelay(rec))
		}
		r.mu.Unlock()
		r.invoke(rec, gen, Invocation{EventTime: at}, h.invokeAction)

	case PhaseUp:
		r.mu.Unlock()
		if h.InvokeOnKeyUp {
			r.invoke(rec, gen, Invocation{EventTime: at}, h.invokeAction)
		}
		r.invoke(rec, gen, Invocation{EventTime: at}, h.invokeRelease)
	}
}

func (r *Registry) initialDelay(rec *record) time.Duration {
	switch {
	case rec.initial > 0:
		return rec.initial
	case rec.initial < 0:
		return rec.repeat
	}
	initial, _ := r.repeatDefaults()
	if initial <= 0 {
		return rec.repeat
	}
	return initial
}

func (r *Registry) armLocked(rec *record, d time.Duration) {
	gen := rec.gen
	rec.timer = r.clock.AfterFunc(d, func() { r.fire(rec, gen) })
}

func (r *Registry) stopTimerLocked(rec *record) {
	if rec.timer != nil {
		rec.timer.Stop()
		rec.timer = nil
	}
	rec.gen++
}

// fire runs one repeat and re-arms the timer.
func (r *Registry) fire(rec *record, gen uint64) {
	r.mu.Lock()
	if !r.liveLocked(rec, gen) {
		r.mu.Unlock()
		return
	}
	r.armLocked(rec, rec.repeat)
	now := r.clock.Now()
	r.mu.Unlock()

	r.invoke(rec, gen, Invocation{IsRepeat: true, EventTime: now}, rec.hotkey.invokeAction)
}

func (r *Registry) liveLocked(rec *record, gen uint64) bool {
	return rec.gen == gen && r.byToken[rec.token] == rec
}

// invoke runs fn for rec unless the record was released or removed since
// gen was taken. Callbacks are serialized.
func (r *Registry) invoke(rec *record, gen uint64, inv Invocation, fn func(Invocation)) {
	r.invokeMu.Lock()
	defer r.invokeMu.Unlock()

	if inv.IsRepeat {
		r.mu.Lock()
		live := r.liveLocked(rec, gen)
		r.mu.Unlock()
		if !live {
			return
		}
	}

	r.invoker.Store(goid())
	defer r.invoker.Store(0)
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[hotkey] %v: callback panic: %v", rec.hotkey, p)
		}
	}()
	fn(inv)
}

// waitCallback blocks until a callback running on another goroutine has
// returned. Called from inside a callback it returns at once.
func (r *Registry) waitCallback() {
	if r.invoker.Load() == goid() {
		return
	}
	r.invokeMu.Lock()
	r.invokeMu.Unlock()
}

// goid returns the id of the calling goroutine from its stack header,
// "goroutine N [...".
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

func (h *HotKey) invokeAction(inv Invocation) {
	if h.WillInvoke != nil {
		h.WillInvoke(h, inv)
	}
	if h.Action != nil {
		h.Action(h, inv)
	}
	if h.DidInvoke != nil {
		h.DidInvoke(h, inv)
	}
}

func (h *HotKey) invokeRelease(inv Invocation) {
	if h.OnRelease != nil {
		h.OnRelease(h, inv)
	}
}

func systemRepeatDefaults() (time.Duration, time.Duration) {
	return SystemInitialKeyRepeatInterval(), SystemKeyRepeatInterval()
}
