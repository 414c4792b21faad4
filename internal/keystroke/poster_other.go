//go:build !(darwin && cgo) && !linux && !windows

package keystroke

import "fmt"

// NewSystemPoster returns the platform keystroke poster.
func NewSystemPoster() (Poster, error) {
	return nil, fmt.Errorf("system keystrokes: %w", ErrUnsupportedTarget)
}
