// hotkeyd registers global keyboard shortcuts from a configuration file
// and runs their actions: logging, typing keystrokes or text on the
// current keyboard layout, or Lua scripts.
//
// Keystrokes go to the system, to one application (by bundle, process or
// signature), or to a USB accessory that presents itself as a keyboard.
//
// A system tray menu lists the shortcuts; a local HTTP API manages them.
// Run with -no-tray on headless sessions.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"golang.design/x/hotkey/mainthread"

	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/i18n"
	"github.com/HopIT-Hub/hotkeykit/internal/tray"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "config file, .json, .yaml or .toml (default: user config dir)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	// Load or create config
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("[hotkeyd] config: %v", err)
	}

	lang := cfg.GetLanguage()
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	i18n.SetLanguage(i18n.Match(lang))

	d, err := newDaemon(cfg)
	if err != nil {
		log.Fatalf("[hotkeyd] %v", err)
	}

	if *noTray {
		// Shortcut registration needs the main thread's event loop on
		// macOS; mainthread runs it while the daemon runs here.
		mainthread.Init(func() { runHeadless(d) })
		return
	}

	// The tray blocks on the main thread
	tray.Run(tray.RunOpts{
		Version:              version,
		AutoStartEnabled:     cfg.GetAutoStart(),
		NotificationsEnabled: cfg.GetNotifications(),

		// start background services after the tray is initialized
		OnReady: func() {
			d.start(context.Background())
			log.Printf("[hotkeyd] ready (version %s)", version)
		},

		OnOpen: func() {
			url := d.srv.URL()
			if url == "" {
				log.Println("[hotkeyd] API server not running")
				return
			}
			openBrowser(url)
		},

		OnReload: d.reload,

		OnAutoStart: d.setAutoStart,

		OnNotifications: d.setNotifications,

		OnQuit: d.stop,
	})
}

func runHeadless(d *daemon) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.start(ctx)
	log.Printf("[hotkeyd] ready (version %s, no tray)", version)
	<-ctx.Done()
	d.stop()
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default: // linux, bsd
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Printf("[hotkeyd] open browser: %v", err)
	}
}
