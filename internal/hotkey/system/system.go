// Package system registers global shortcuts with the operating system
// through golang.design/x/hotkey.
package system

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.design/x/hotkey"

	hk "github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// ErrUnsupportedKey is returned for keys or modifiers the OS shortcut
// facility cannot register.
var ErrUnsupportedKey = errors.New("key not supported by the system shortcut service")

// keyupDebounce absorbs the release/press pairs X11 autorepeat generates.
const keyupDebounce = 50 * time.Millisecond

type registration struct {
	key    *hotkey.Hotkey
	cancel context.CancelFunc
}

// Service implements hotkey.Service. On macOS it must be used after
// mainthread.Init.
type Service struct {
	mu   sync.Mutex
	sink hk.Sink
	regs map[hk.Token]*registration
}

var _ hk.Service = (*Service)(nil)

func NewService() *Service {
	return &Service{regs: make(map[hk.Token]*registration)}
}

func (s *Service) SetSink(sink hk.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *Service) Register(k keys.Keycode, m keys.Modifier) (hk.Token, error) {
	key, err := osKey(k)
	if err != nil {
		return "", err
	}
	mods, err := osModifiers(m)
	if err != nil {
		return "", err
	}

	h := hotkey.New(mods, key)
	if err := h.Register(); err != nil {
		return "", fmt.Errorf("register hotkey: %w", err)
	}

	tok := hk.Token(uuid.NewString())
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.regs[tok] = &registration{key: h, cancel: cancel}
	s.mu.Unlock()

	go s.listen(ctx, tok, h)
	return tok, nil
}

func (s *Service) Unregister(tok hk.Token) error {
	s.mu.Lock()
	reg, ok := s.regs[tok]
	delete(s.regs, tok)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	reg.cancel()
	if err := reg.key.Unregister(); err != nil {
		return fmt.Errorf("unregister hotkey: %w", err)
	}
	return nil
}

func (s *Service) emit(tok hk.Token, phase hk.Phase) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		sink(tok, phase, time.Now())
	}
}

// listen forwards keydown/keyup events to the sink.
func (s *Service) listen(ctx context.Context, tok hk.Token, h *hotkey.Hotkey) {
	// On X11 a held key produces keyup/keydown pairs. A keyup is only
	// forwarded if no keydown follows within keyupDebounce.
	isLinux := runtime.GOOS == "linux"
	var (
		debounceMu    sync.Mutex
		debounceTimer *time.Timer
		debounceGen   int
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.Keydown():
			if isLinux {
				debounceMu.Lock()
				pending := debounceTimer != nil && debounceTimer.Stop()
				debounceTimer = nil
				debounceGen++
				debounceMu.Unlock()
				if pending {
					continue
				}
			}
			s.emit(tok, hk.PhaseDown)
		case <-h.Keyup():
			if !isLinux {
				s.emit(tok, hk.PhaseUp)
				continue
			}
			debounceMu.Lock()
			debounceGen++
			gen := debounceGen
			debounceTimer = time.AfterFunc(keyupDebounce, func() {
				debounceMu.Lock()
				stale := gen != debounceGen
				if !stale {
					debounceTimer = nil
				}
				debounceMu.Unlock()
				if !stale && ctx.Err() == nil {
					s.emit(tok, hk.PhaseUp)
				}
			})
			debounceMu.Unlock()
		}
	}
}
