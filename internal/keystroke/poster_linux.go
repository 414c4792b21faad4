//go:build linux

package keystroke

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

// xdotoolPoster drives xdotool. Bundle targets are matched against the X11
// window class.
type xdotoolPoster struct {
	run func(ctx context.Context, args ...string) (string, error)
}

// NewSystemPoster returns the platform keystroke poster.
func NewSystemPoster() (Poster, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return nil, fmt.Errorf("xdotool not found: %w", err)
	}
	return &xdotoolPoster{run: runXdotool}, nil
}

func runXdotool(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "xdotool", args...).Output()
	return string(out), err
}

func (p *xdotoolPoster) Post(ctx context.Context, ks keys.Keystroke, target Target, latency time.Duration) error {
	combo, err := xdotoolCombo(ks)
	if err != nil {
		return err
	}
	window, err := p.window(ctx, target)
	if err != nil {
		return err
	}

	down := []string{"keydown", "--clearmodifiers"}
	up := []string{"keyup"}
	if window != "" {
		down = append(down, "--window", window)
		up = append(up, "--window", window)
	}
	if _, err := p.run(ctx, append(down, combo)...); err != nil {
		return fmt.Errorf("xdotool keydown %s: %w", combo, err)
	}
	if err := sleep(ctx, latency); err != nil {
		return err
	}
	if _, err := p.run(ctx, append(up, combo)...); err != nil {
		return fmt.Errorf("xdotool keyup %s: %w", combo, err)
	}
	return nil
}

// window resolves target to an X11 window id, or "" for the focused window.
func (p *xdotoolPoster) window(ctx context.Context, target Target) (string, error) {
	var args []string
	switch target.Kind {
	case System:
		return "", nil
	case Bundle:
		args = []string{"search", "--limit", "1", "--class", target.Bundle}
	case Process:
		args = []string{"search", "--limit", "1", "--pid", strconv.Itoa(target.PID)}
	default:
		return "", fmt.Errorf("%v: %w", target, ErrUnsupportedTarget)
	}
	out, err := p.run(ctx, args...)
	id := strings.TrimSpace(out)
	if err != nil || id == "" {
		return "", fmt.Errorf("%v: %w", target, ErrTargetNotFound)
	}
	return id, nil
}
