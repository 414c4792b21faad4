package keymap

import (
	"context"
	"errors"
	"sync"
)

// ErrNoLayout is returned by a provider that has no layout data to offer.
var ErrNoLayout = errors.New("no keyboard layout available")

// Source is one keyboard layout as published by a provider. A provider may
// fill either or both data fields; the legacy table is preferred when both
// are present.
type Source struct {
	ID            string
	LocalizedName string
	Legacy        []byte // KCHR
	Rules         []byte // uchr
}

// Provider supplies the active keyboard layout and reports when it changes.
type Provider interface {
	CurrentLayout(ctx context.Context) (Source, error)
	// Subscribe registers fn to run after every input source change and
	// returns a function that removes it.
	Subscribe(fn func()) (cancel func())
}

// subscribers is a set of change callbacks shared by the providers.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (s *subscribers) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func())
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// StaticProvider serves an in-memory source. Set replaces it and notifies
// subscribers.
type StaticProvider struct {
	mu   sync.RWMutex
	src  Source
	set  bool
	subs subscribers
}

// NewStaticProvider returns a provider serving src.
func NewStaticProvider(src Source) *StaticProvider {
	return &StaticProvider{src: src, set: true}
}

func (p *StaticProvider) CurrentLayout(ctx context.Context) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.set {
		return Source{}, ErrNoLayout
	}
	return p.src, nil
}

func (p *StaticProvider) Subscribe(fn func()) func() {
	return p.subs.add(fn)
}

// Set publishes a new source.
func (p *StaticProvider) Set(src Source) {
	p.mu.Lock()
	p.src = src
	p.set = true
	p.mu.Unlock()
	p.subs.notify()
}
