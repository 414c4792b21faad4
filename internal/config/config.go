// Package config handles loading and saving the hotkeyd configuration.
// The file format follows the extension: .json (default), .yaml/.yml or
// .toml.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Config holds the application configuration.
type Config struct {
	mu   sync.RWMutex
	path string

	Hotkeys       []HotkeyConfig  `json:"hotkeys" yaml:"hotkeys" toml:"hotkeys"`
	LayoutFile    string          `json:"layout_file,omitempty" yaml:"layout_file,omitempty" toml:"layout_file,omitempty"`
	TraceEvents   bool            `json:"trace_events" yaml:"trace_events" toml:"trace_events"`
	Language      string          `json:"language,omitempty" yaml:"language,omitempty" toml:"language,omitempty"`
	Notifications bool            `json:"notifications" yaml:"notifications" toml:"notifications"`
	AutoStart     bool            `json:"auto_start" yaml:"auto_start" toml:"auto_start"`
	ListenAddr    string          `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
	Accessory     AccessoryConfig `json:"accessory" yaml:"accessory" toml:"accessory"`
}

// HotkeyConfig defines a global hotkey binding. The key is either Rawkey,
// the packed keycode/modifier/character value, or Key and Modifiers.
type HotkeyConfig struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	Rawkey    uint64   `json:"rawkey,omitempty" yaml:"rawkey,omitempty" toml:"rawkey,omitempty"`
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty" toml:"modifiers,omitempty"` // "ctrl", "shift", "alt", "cmd"
	Key       string   `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`                   // KeyboardEvent.code: "KeyR", "Space", "F5"

	RepeatIntervalMS int  `json:"repeat_interval_ms,omitempty" yaml:"repeat_interval_ms,omitempty" toml:"repeat_interval_ms,omitempty"`
	InitialRepeatMS  int  `json:"initial_repeat_ms,omitempty" yaml:"initial_repeat_ms,omitempty" toml:"initial_repeat_ms,omitempty"`
	InvokeOnKeyUp    bool `json:"invoke_on_key_up,omitempty" yaml:"invoke_on_key_up,omitempty" toml:"invoke_on_key_up,omitempty"`

	Action ActionConfig `json:"action" yaml:"action" toml:"action"`
}

// ActionConfig describes what a hotkey does.
type ActionConfig struct {
	Type      string `json:"type" yaml:"type" toml:"type"` // "log", "keystroke", "lua"
	Rawkey    uint64 `json:"rawkey,omitempty" yaml:"rawkey,omitempty" toml:"rawkey,omitempty"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"` // "system", "bundle", "process", "signature", "accessory"
	Bundle    string `json:"bundle,omitempty" yaml:"bundle,omitempty" toml:"bundle,omitempty"`
	PID       int    `json:"pid,omitempty" yaml:"pid,omitempty" toml:"pid,omitempty"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`
	LatencyMS int    `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty" toml:"latency_ms,omitempty"`
	Script    string `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty"`
}

// AccessoryConfig selects the USB accessory keystroke target.
type AccessoryConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	VendorID  uint16 `json:"vendor_id,omitempty" yaml:"vendor_id,omitempty" toml:"vendor_id,omitempty"`
	ProductID uint16 `json:"product_id,omitempty" yaml:"product_id,omitempty" toml:"product_id,omitempty"`
	Serial    string `json:"serial,omitempty" yaml:"serial,omitempty" toml:"serial,omitempty"`
}

// String returns a human-readable representation like "Ctrl+Alt+KeyR" for
// Key bindings and the name otherwise.
func (h HotkeyConfig) String() string {
	if h.Key == "" {
		return h.Name
	}
	s := ""
	for _, m := range h.Modifiers {
		switch strings.ToLower(m) {
		case "ctrl", "control":
			s += "Ctrl+"
		case "shift":
			s += "Shift+"
		case "alt", "opt", "option":
			s += "Alt+"
		case "cmd", "command", "super", "win", "meta":
			s += "Cmd+"
		}
	}
	return s + h.Key
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Hotkeys: []HotkeyConfig{{
			Name:      "hello",
			Modifiers: []string{"ctrl", "alt"},
			Key:       "KeyH",
			Action:    ActionConfig{Type: "log"},
		}},
		Notifications: true,
		ListenAddr:    "127.0.0.1:0",
	}
}

// Dir returns the OS-appropriate config directory for hotkeyd.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, "hotkeykit"), nil
}

// Path returns the full path to the default config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path. If the file doesn't exist,
// it creates a default config and saves it.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(p)
}

// LoadFile reads the config at path, creating a default one if missing.
func LoadFile(path string) (*Config, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = path
		if saveErr := cfg.Save(); saveErr != nil {
			return nil, fmt.Errorf("create default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig() // start with defaults so new fields get populated
	cfg.Hotkeys = nil      // an empty list in the file means no hotkeys
	if err := c.unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	cfg.path = path
	return cfg, nil
}

// File returns the path the config was loaded from.
func (c *Config) File() string {
	return c.path
}

// Save writes the config to disk atomically (write temp, rename).
func (c *Config) Save() error {
	cd, err := codecFor(c.path)
	if err != nil {
		return err
	}
	c.mu.RLock()
	data, err := cd.marshal(c)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// codec reads and writes one file format.
type codec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var codecs = map[string]codec{
	".json": {
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
		unmarshal: json.Unmarshal,
	},
	".yaml": {marshal: yaml.Marshal, unmarshal: yaml.Unmarshal},
	".yml":  {marshal: yaml.Marshal, unmarshal: yaml.Unmarshal},
	".toml": {
		marshal: func(v any) ([]byte, error) {
			var buf bytes.Buffer
			enc := toml.NewEncoder(&buf)
			enc.SetIndentTables(true)
			if err := enc.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		unmarshal: toml.Unmarshal,
	},
}

func codecFor(path string) (codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return codecs[".json"], nil
	}
	c, ok := codecs[ext]
	if !ok {
		return codec{}, fmt.Errorf("unsupported config format %q", ext)
	}
	return c, nil
}

// GetHotkeys returns a copy of the configured hotkeys.
func (c *Config) GetHotkeys() []HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]HotkeyConfig, len(c.Hotkeys))
	for i, h := range c.Hotkeys {
		h.Modifiers = append([]string(nil), h.Modifiers...)
		out[i] = h
	}
	return out
}

// SetHotkeys replaces the hotkey list and saves to disk.
func (c *Config) SetHotkeys(hks []HotkeyConfig) error {
	c.mu.Lock()
	c.Hotkeys = append([]HotkeyConfig(nil), hks...)
	c.mu.Unlock()
	return c.Save()
}

// GetLayoutFile returns the keyboard layout file, or "" for the system
// layout.
func (c *Config) GetLayoutFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LayoutFile
}

// GetTraceEvents reports whether every hotkey event is logged.
func (c *Config) GetTraceEvents() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TraceEvents
}

// GetLanguage returns the configured UI language, "" meaning the OS locale.
func (c *Config) GetLanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Language
}

// SetLanguage updates the UI language and saves to disk.
func (c *Config) SetLanguage(lang string) error {
	c.mu.Lock()
	c.Language = lang
	c.mu.Unlock()
	return c.Save()
}

// GetNotifications reports whether desktop notifications are enabled.
func (c *Config) GetNotifications() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications
}

// SetNotifications updates the notification setting and saves to disk.
func (c *Config) SetNotifications(enabled bool) error {
	c.mu.Lock()
	c.Notifications = enabled
	c.mu.Unlock()
	return c.Save()
}

// GetAutoStart returns the current auto-start setting.
func (c *Config) GetAutoStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AutoStart
}

// SetAutoStart updates the auto-start setting and saves to disk.
func (c *Config) SetAutoStart(enabled bool) error {
	c.mu.Lock()
	c.AutoStart = enabled
	c.mu.Unlock()
	return c.Save()
}

// GetListenAddr returns the local API address.
func (c *Config) GetListenAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ListenAddr
}

// GetAccessory returns the accessory settings.
func (c *Config) GetAccessory() AccessoryConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Accessory
}
