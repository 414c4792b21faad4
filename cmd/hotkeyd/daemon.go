package main

import (
	"context"
	"log"

	"github.com/google/gousb"

	"github.com/HopIT-Hub/hotkeykit/aoa"
	"github.com/HopIT-Hub/hotkeykit/internal/app"
	"github.com/HopIT-Hub/hotkeykit/internal/autostart"
	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/device"
	"github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/hotkey/system"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keystroke"
	"github.com/HopIT-Hub/hotkeykit/internal/notify"
	"github.com/HopIT-Hub/hotkeykit/internal/server"
	"github.com/HopIT-Hub/hotkeykit/internal/tray"
)

// daemon holds the long-lived services of hotkeyd.
type daemon struct {
	provider      keymap.Provider
	closeProvider func() error
	keymaps       *keymap.Service
	reg           *hotkey.Registry
	app           *app.App
	dev           *device.Manager // nil without an accessory
	srv           *server.Server
	notifier      *notify.Notifier
	cancel        context.CancelFunc
}

func newDaemon(cfg *config.Config) (*daemon, error) {
	d := &daemon{notifier: notify.New(cfg.GetNotifications())}
	d.provider, d.closeProvider = layoutProvider(cfg.GetLayoutFile())
	d.keymaps = keymap.NewService(d.provider)

	router := &keystroke.Router{}
	if p, err := keystroke.NewSystemPoster(); err != nil {
		log.Printf("[hotkeyd] system keystrokes unavailable: %v", err)
	} else {
		router.System = p
	}

	// Accessory keystrokes go out as HID reports over USB
	if acc := cfg.GetAccessory(); acc.Enabled {
		d.dev = device.NewManager(aoa.Match{
			Vendor:  gousb.ID(acc.VendorID),
			Product: gousb.ID(acc.ProductID),
			Serial:  acc.Serial,
		}, func(state device.State) {
			tray.SetAccessory(state.String())
			log.Printf("[hotkeyd] accessory: %s", state)
		})
		router.Accessory = d.dev
	}

	d.reg = hotkey.NewRegistry(system.NewService(), hotkey.WithTrace(cfg.GetTraceEvents()))
	d.app = app.New(app.Options{
		Config:   cfg,
		Registry: d.reg,
		Keymaps:  d.keymaps,
		Provider: d.provider,
		Poster:   router,
		Notifier: d.notifier,
		OnChange: d.refresh,
	})

	var deviceState func() string
	if d.dev != nil {
		deviceState = func() string { return d.dev.State().String() }
	}
	d.srv = server.New(d.app, deviceState, version)
	return d, nil
}

// layoutProvider picks the layout file when configured, then the system
// layout. Without either only special keys resolve.
func layoutProvider(path string) (keymap.Provider, func() error) {
	if path != "" {
		fp, err := keymap.NewFileProvider(path)
		if err == nil {
			log.Printf("[hotkeyd] keyboard layout from %s", path)
			return fp, fp.Close
		}
		log.Printf("[hotkeyd] layout file: %v", err)
	}
	sp, err := keymap.NewSystemProvider()
	if err == nil {
		return sp, sp.Close
	}
	log.Printf("[hotkeyd] %v", err)
	return &keymap.StaticProvider{}, func() error { return nil }
}

func (d *daemon) start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	// Device manager: connects the accessory, reconnects on unplug
	if d.dev != nil {
		tray.SetAccessory(d.dev.State().String())
		go d.dev.Run(ctx)
	}

	d.app.Load(ctx)

	cfg := d.app.Config()
	if cfg.GetAutoStart() != autostart.IsEnabled() {
		if err := autostart.Set(cfg.GetAutoStart(), "-config", cfg.File()); err != nil {
			log.Printf("[hotkeyd] sync autostart: %v", err)
		}
	}

	if _, err := d.srv.Start(cfg.GetListenAddr()); err != nil {
		log.Printf("[hotkeyd] API server: %v", err)
	}
}

// refresh shows the bindings and the layout in the tray.
func (d *daemon) refresh() {
	tray.SetBindings(d.app.Bindings())
	if km, err := d.keymaps.Current(context.Background()); err == nil {
		tray.SetLayout(km.LocalizedName())
	}
}

func (d *daemon) reload() {
	if err := d.app.Reload(context.Background()); err != nil {
		log.Printf("[hotkeyd] reload: %v", err)
		return
	}
	d.notifier.SetEnabled(d.app.Config().GetNotifications())
	log.Println("[hotkeyd] configuration reloaded")
}

func (d *daemon) setAutoStart(enabled bool) {
	cfg := d.app.Config()
	if err := autostart.Set(enabled, "-config", cfg.File()); err != nil {
		log.Printf("[hotkeyd] autostart: %v", err)
		return
	}
	if err := cfg.SetAutoStart(enabled); err != nil {
		log.Printf("[hotkeyd] save autostart config: %v", err)
	}
	log.Printf("[hotkeyd] auto-start: %v", enabled)
}

func (d *daemon) setNotifications(enabled bool) {
	d.notifier.SetEnabled(enabled)
	if err := d.app.Config().SetNotifications(enabled); err != nil {
		log.Printf("[hotkeyd] save notification config: %v", err)
	}
}

func (d *daemon) stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.srv.Stop()
	d.app.Close()
	d.reg.Close()
	if d.dev != nil {
		d.dev.Close()
	}
	d.keymaps.Close()
	if err := d.closeProvider(); err != nil {
		log.Printf("[hotkeyd] close layout provider: %v", err)
	}
}
