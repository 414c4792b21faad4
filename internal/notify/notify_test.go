package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/HopIT-Hub/hotkeykit/internal/i18n"
)

type sent struct{ title, message string }

func recording(enabled bool) (*Notifier, *[]sent) {
	var out []sent
	n := New(enabled)
	n.send = func(title, message string) error {
		out = append(out, sent{title, message})
		return errors.New("no notification daemon")
	}
	return n, &out
}

func TestNotify(t *testing.T) {
	i18n.SetLanguage(i18n.EN)
	n, out := recording(true)
	n.RegisterFailed("⌘Space")
	n.ActionFailed("paste", errors.New("boom"))
	n.LayoutChanged("French")

	want := []sent{
		{"HotKeyKit: Shortcut already in use", "⌘Space"},
		{"HotKeyKit: Shortcut action failed", "paste: boom"},
		{"HotKeyKit: Keyboard layout changed", "French"},
	}
	if len(*out) != len(want) {
		t.Fatalf("sent %+v", *out)
	}
	for i := range want {
		if (*out)[i] != want[i] {
			t.Errorf("notification %d = %+v, want %+v", i, (*out)[i], want[i])
		}
	}
}

func TestDisabled(t *testing.T) {
	n, out := recording(false)
	n.RegisterFailed("⌘Space")
	if len(*out) != 0 {
		t.Fatalf("disabled notifier sent %+v", *out)
	}
	n.SetEnabled(true)
	n.RegisterFailed("⌘Space")
	if len(*out) != 1 {
		t.Fatalf("enabled notifier sent %+v", *out)
	}

	var nilNotifier *Notifier
	nilNotifier.LayoutChanged("US")
}

func TestLongMessageTruncated(t *testing.T) {
	n, out := recording(true)
	n.ActionFailed("x", errors.New(strings.Repeat("é", 300)))
	if got := []rune((*out)[0].message); len(got) != maxMessage+3 {
		t.Fatalf("message length %d", len(got))
	}
}
