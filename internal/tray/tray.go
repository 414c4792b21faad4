// Package tray manages the system tray icon and menu.
package tray

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/systray"

	"github.com/HopIT-Hub/hotkeykit/internal/app"
	"github.com/HopIT-Hub/hotkeykit/internal/i18n"
)

// maxShown is the number of shortcuts listed in the menu.
const maxShown = 20

// RunOpts configures the system tray.
type RunOpts struct {
	Version              string // app version string (e.g., "1.0.0")
	AutoStartEnabled     bool   // initial state of "Start at login"
	NotificationsEnabled bool
	OnReady              func()
	OnOpen               func()
	OnReload             func()
	OnAutoStart          func(enabled bool)
	OnNotifications      func(enabled bool)
	OnQuit               func()
}

// menu holds the items updated after start up. Updates that arrive before
// the tray is ready are applied once it is.
var menu struct {
	mu        sync.Mutex
	ready     bool
	hotkeys   *systray.MenuItem
	items     []*systray.MenuItem
	none      *systray.MenuItem
	layout    *systray.MenuItem
	accessory *systray.MenuItem

	bindings       []app.Binding
	layoutName     string
	accessoryState string
}

// Run starts the system tray. It blocks on the main thread.
func Run(opts RunOpts) {
	systray.Run(func() {
		systray.SetIcon(IconIdle)
		systray.SetTitle("")
		systray.SetTooltip(i18n.T("tray_tooltip"))

		versionLabel := i18n.T("tray_title")
		if opts.Version != "" && opts.Version != "dev" {
			versionLabel += " v" + strings.TrimPrefix(opts.Version, "v")
		}
		mVersion := systray.AddMenuItem(versionLabel, "")
		mVersion.Disable()

		systray.AddSeparator()

		mHotkeys := systray.AddMenuItem(i18n.T("tray_hotkeys"), "")
		items := make([]*systray.MenuItem, maxShown)
		for i := range items {
			items[i] = mHotkeys.AddSubMenuItem("", "")
			items[i].Disable()
			items[i].Hide()
		}
		mNone := mHotkeys.AddSubMenuItem(i18n.T("tray_none"), "")
		mNone.Disable()
		mOpen := systray.AddMenuItem(i18n.T("tray_open"), "")
		mReload := systray.AddMenuItem(i18n.T("tray_reload"), "")

		systray.AddSeparator()

		mLayout := systray.AddMenuItem("", "")
		mLayout.Disable()
		mLayout.Hide()
		mAccessory := systray.AddMenuItem("", "")
		mAccessory.Disable()
		mAccessory.Hide()

		systray.AddSeparator()

		mAutoStart := systray.AddMenuItemCheckbox(i18n.T("tray_autostart"), "", opts.AutoStartEnabled)
		mNotify := systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), "", opts.NotificationsEnabled)

		systray.AddSeparator()

		mQuit := systray.AddMenuItem(i18n.T("tray_quit"), "")

		menu.mu.Lock()
		menu.ready = true
		menu.hotkeys, menu.items, menu.none = mHotkeys, items, mNone
		menu.layout, menu.accessory = mLayout, mAccessory
		applyLocked()
		menu.mu.Unlock()

		if opts.OnReady != nil {
			opts.OnReady()
		}

		go func() {
			for {
				select {
				case <-mOpen.ClickedCh:
					if opts.OnOpen != nil {
						opts.OnOpen()
					}
				case <-mReload.ClickedCh:
					if opts.OnReload != nil {
						opts.OnReload()
					}
				case <-mAutoStart.ClickedCh:
					toggle(mAutoStart, opts.OnAutoStart)
				case <-mNotify.ClickedCh:
					toggle(mNotify, opts.OnNotifications)
				case <-mQuit.ClickedCh:
					if opts.OnQuit != nil {
						opts.OnQuit()
					}
					systray.Quit()
				}
			}
		}()
	}, func() {
		// cleanup on systray exit
	})
}

func toggle(item *systray.MenuItem, fn func(bool)) {
	enabled := !item.Checked()
	if enabled {
		item.Check()
	} else {
		item.Uncheck()
	}
	if fn != nil {
		fn(enabled)
	}
}

// SetBindings lists the configured shortcuts in the menu.
func SetBindings(bs []app.Binding) {
	menu.mu.Lock()
	defer menu.mu.Unlock()
	menu.bindings = append([]app.Binding(nil), bs...)
	applyLocked()
}

// SetLayout shows the active keyboard layout.
func SetLayout(name string) {
	menu.mu.Lock()
	defer menu.mu.Unlock()
	menu.layoutName = name
	applyLocked()
}

// SetAccessory shows the accessory state and switches the icon; "" hides
// the accessory line.
func SetAccessory(state string) {
	menu.mu.Lock()
	defer menu.mu.Unlock()
	menu.accessoryState = state
	applyLocked()
}

func applyLocked() {
	if !menu.ready {
		return
	}
	labels := bindingLabels(menu.bindings)
	for i, item := range menu.items {
		if i < len(labels) {
			item.SetTitle(labels[i])
			item.Show()
		} else {
			item.Hide()
		}
	}
	if len(labels) == 0 {
		menu.none.Show()
	} else {
		menu.none.Hide()
	}

	showLine(menu.layout, "tray_layout", menu.layoutName)
	showLine(menu.accessory, "tray_accessory", menu.accessoryState)
	if menu.accessoryState == "connected" {
		systray.SetIcon(IconConnected)
	} else {
		systray.SetIcon(IconIdle)
	}
}

func showLine(item *systray.MenuItem, key, value string) {
	if value == "" {
		item.Hide()
		return
	}
	item.SetTitle(fmt.Sprintf(i18n.T(key), value))
	item.Show()
}

// bindingLabels formats at most maxShown menu lines; failed bindings are
// marked with a cross.
func bindingLabels(bs []app.Binding) []string {
	if len(bs) > maxShown {
		bs = bs[:maxShown]
	}
	out := make([]string, len(bs))
	for i, b := range bs {
		label := b.Shortcut + "  " + b.Name
		if b.Shortcut == "" {
			label = b.Name
		}
		if !b.Registered {
			label = "✗ " + label
		}
		out[i] = label
	}
	return out
}

// Quit stops the system tray.
func Quit() {
	systray.Quit()
}
