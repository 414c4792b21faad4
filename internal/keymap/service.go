package keymap

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Service caches the keymap of the current layout. The cache is dropped by
// Invalidate, which the provider subscription calls on every input source
// change, and rebuilt lazily on the next Current call.
type Service struct {
	provider Provider
	group    singleflight.Group
	current  atomic.Pointer[KeyMap]
	gen      atomic.Uint64

	mu     sync.Mutex
	cancel func()
}

// NewService returns a service reading layouts from p.
func NewService(p Provider) *Service {
	s := &Service{provider: p}
	s.cancel = p.Subscribe(s.Invalidate)
	return s
}

// Current returns the cached keymap, building it when the cache is empty.
// Concurrent callers share a single rebuild.
func (s *Service) Current(ctx context.Context) (*KeyMap, error) {
	if km := s.current.Load(); km != nil {
		return km, nil
	}
	v, err, _ := s.group.Do("current", func() (any, error) {
		if km := s.current.Load(); km != nil {
			return km, nil
		}
		gen := s.gen.Load()
		src, err := s.provider.CurrentLayout(ctx)
		if err != nil {
			return nil, fmt.Errorf("read current layout: %w", err)
		}
		km, err := New(src)
		if err != nil {
			return nil, fmt.Errorf("build keymap %q: %w", src.ID, err)
		}
		// An invalidation during the build leaves the cache empty so the
		// next caller sees the newer layout.
		if s.gen.Load() == gen {
			s.current.CompareAndSwap(nil, km)
		}
		log.Printf("[keymap] loaded %q (%s)", km.LocalizedName(), km.ctx.Format())
		return km, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeyMap), nil
}

// Invalidate drops the cached keymap.
func (s *Service) Invalidate() {
	s.gen.Add(1)
	if old := s.current.Swap(nil); old != nil {
		log.Printf("[keymap] input source changed, dropping %q", old.ID())
	}
}

// Close removes the provider subscription.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
