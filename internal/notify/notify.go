// Package notify shows desktop notifications.
package notify

import (
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"github.com/HopIT-Hub/hotkeykit/internal/i18n"
)

const appName = "HotKeyKit"

// maxMessage caps notification bodies.
const maxMessage = 100

// Notifier sends desktop notifications.
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message string) error
}

// New creates a Notifier.
func New(enabled bool) *Notifier {
	n := &Notifier{send: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// RegisterFailed reports a shortcut the system refused.
func (n *Notifier) RegisterFailed(shortcut string) {
	n.notify(i18n.T("notify_register_failed"), shortcut)
}

// ActionFailed reports an action that returned an error.
func (n *Notifier) ActionFailed(name string, err error) {
	n.notify(i18n.T("notify_action_failed"), name+": "+err.Error())
}

// LayoutChanged reports the new keyboard layout.
func (n *Notifier) LayoutChanged(name string) {
	n.notify(i18n.T("notify_layout_changed"), name)
}

func (n *Notifier) notify(title, message string) {
	if n == nil || !n.enabled.Load() {
		return
	}
	if r := []rune(message); len(r) > maxMessage {
		message = string(r[:maxMessage]) + "..."
	}
	// notification failures are not fatal
	_ = n.send(appName+": "+title, message)
}
