//go:build !darwin || !cgo

package keymap

import (
	"context"
	"errors"
)

// ErrNoSystemLayout is returned where the platform does not publish layout
// tables; configure a layout file instead.
var ErrNoSystemLayout = errors.New("system keyboard layout not available on this platform")

// SystemProvider is unavailable on this platform.
type SystemProvider struct{}

func NewSystemProvider() (*SystemProvider, error) {
	return nil, ErrNoSystemLayout
}

func (p *SystemProvider) CurrentLayout(context.Context) (Source, error) {
	return Source{}, ErrNoSystemLayout
}

func (p *SystemProvider) Subscribe(func()) func() { return func() {} }

func (p *SystemProvider) Close() error { return nil }
