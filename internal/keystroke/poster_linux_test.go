//go:build linux

package keystroke

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

func TestXdotoolPoster(t *testing.T) {
	var calls []string
	p := &xdotoolPoster{run: func(_ context.Context, args ...string) (string, error) {
		calls = append(calls, strings.Join(args, " "))
		if args[0] == "search" {
			if args[len(args)-1] == "missing" {
				return "", errors.New("exit status 1")
			}
			return "4194311\n", nil
		}
		return "", nil
	}}
	ks := keys.Keystroke{Keycode: keys.KeyReturn, Modifier: keys.ModOption}

	if err := p.Post(context.Background(), ks, Target{Kind: System}, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Post(context.Background(), ks, Target{Kind: Bundle, Bundle: "firefox"}, 0); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"keydown --clearmodifiers alt+Return",
		"keyup alt+Return",
		"search --limit 1 --class firefox",
		"keydown --clearmodifiers --window 4194311 alt+Return",
		"keyup --window 4194311 alt+Return",
	}
	if strings.Join(calls, "\n") != strings.Join(want, "\n") {
		t.Fatalf("calls:\n%s\nwant:\n%s", strings.Join(calls, "\n"), strings.Join(want, "\n"))
	}

	if err := p.Post(context.Background(), ks, Target{Kind: Bundle, Bundle: "missing"}, 0); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("missing window: %v", err)
	}
	if err := p.Post(context.Background(), ks, Target{Kind: Signature, Signature: 0x54455854}, 0); !errors.Is(err, ErrUnsupportedTarget) {
		t.Fatalf("signature target: %v", err)
	}
}
