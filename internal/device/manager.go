// Package device manages the USB connection to an accessory host that
// receives keystrokes as a HID keyboard. It detects the device when it is
// plugged in, reconnects on disconnect, and posts keystrokes to it.
package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HopIT-Hub/hotkeykit/aoa"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/keystroke"
)

// ErrNotConnected is returned by Post while no device is attached.
var ErrNotConnected = errors.New("no accessory connected")

// State represents the current connection state.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

const pollInterval = 2 * time.Second

// accessory is the part of *aoa.Device the manager drives.
type accessory interface {
	RegisterKeyboard() (uint16, error)
	SendReport(hidID uint16, report []byte) error
	Ping() error
	Close()
}

// Manager handles the accessory lifecycle and implements
// keystroke.Poster for keystroke.Accessory targets.
type Manager struct {
	mu       sync.Mutex
	dev      accessory
	kbdID    uint16
	state    State
	onChange func(State)
	match    aoa.Match

	open func(aoa.Match) (accessory, error)
}

// NewManager creates a new device manager.
// onChange is called whenever the device state changes.
func NewManager(match aoa.Match, onChange func(State)) *Manager {
	return &Manager{
		state:    Disconnected,
		onChange: onChange,
		match:    match,
		open: func(m aoa.Match) (accessory, error) {
			return aoa.Open(m)
		},
	}
}

// State returns the current device state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run starts the auto-detection loop. It polls for the device every
// pollInterval and checks its health while connected.
// Blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	m.tryConnect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.State() == Disconnected {
				m.tryConnect()
			} else {
				m.healthCheck()
			}
		}
	}
}

// tryConnect attempts to open the device and register the keyboard.
func (m *Manager) tryConnect() {
	dev, err := m.open(m.match)
	if err != nil {
		return // not plugged in, will retry
	}

	id, err := dev.RegisterKeyboard()
	if err != nil {
		log.Printf("[device] keyboard HID register failed: %v", err)
		dev.Close()
		return
	}

	m.mu.Lock()
	m.dev = dev
	m.kbdID = id
	m.state = Connected
	m.mu.Unlock()

	log.Println("[device] accessory connected")
	m.notify(Connected)
}

// healthCheck verifies the device is still connected.
func (m *Manager) healthCheck() {
	m.mu.Lock()
	if m.dev == nil {
		m.mu.Unlock()
		return
	}
	err := m.dev.Ping()
	if err != nil {
		log.Printf("[device] accessory disconnected: %v", err)
		m.dropLocked()
	}
	m.mu.Unlock()

	if err != nil {
		m.notify(Disconnected)
	}
}

// Post sends one keystroke as a keyboard report pair. The target must be
// keystroke.Accessory.
func (m *Manager) Post(ctx context.Context, ks keys.Keystroke, target keystroke.Target, latency time.Duration) error {
	if target.Kind != keystroke.Accessory {
		return fmt.Errorf("%v: %w", target, keystroke.ErrUnsupportedTarget)
	}
	name, ok := keystroke.LookupKey(ks.Keycode)
	if !ok {
		return fmt.Errorf("keycode %#x: %w", ks.Keycode, keystroke.ErrUnsupportedKey)
	}
	down := aoa.KeyboardReport(keystroke.HIDModifiers(ks.Modifier), name.Usage)
	up := aoa.KeyboardReport(0)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev == nil {
		return ErrNotConnected
	}
	if err := m.dev.SendReport(m.kbdID, down); err != nil {
		m.failLocked(err)
		return fmt.Errorf("key down: %w", err)
	}

	var waitErr error
	if latency > 0 {
		t := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			waitErr = ctx.Err()
		case <-t.C:
		}
		t.Stop()
	}

	// always release, even when cancelled
	if err := m.dev.SendReport(m.kbdID, up); err != nil {
		m.failLocked(err)
		return fmt.Errorf("key up: %w", err)
	}
	return waitErr
}

// failLocked marks the device as disconnected on USB errors.
// Must be called with m.mu held.
func (m *Manager) failLocked(err error) {
	log.Printf("[device] USB error: %v, will reconnect", err)
	m.dropLocked()
	if m.onChange != nil {
		go m.onChange(Disconnected)
	}
}

func (m *Manager) dropLocked() {
	if m.dev != nil {
		m.dev.Close()
		m.dev = nil
	}
	m.state = Disconnected
}

func (m *Manager) notify(s State) {
	if m.onChange != nil {
		m.onChange(s)
	}
}

// Close shuts down the device connection cleanly.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev != nil {
		_ = m.dev.SendReport(m.kbdID, aoa.KeyboardReport(0))
	}
	m.dropLocked()
}
