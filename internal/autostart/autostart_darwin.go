//go:build darwin

package autostart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

const launchAgentLabel = "co.hopit.hotkeykit"

// Keyboard events need the login session, hence an agent rather than a
// daemon.
var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{ .Label }}</string>
    <key>ProgramArguments</key>
    <array>
        {{- range .Arguments }}
        <string>{{ . }}</string>
        {{- end }}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>ProcessType</key>
    <string>Interactive</string>
</dict>
</plist>
`))

func plistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("user home dir: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", launchAgentLabel+".plist"), nil
}

func launchAgent(argv []string) ([]byte, error) {
	var buf bytes.Buffer
	err := plistTemplate.Execute(&buf, struct {
		Label     string
		Arguments []string
	}{launchAgentLabel, argv})
	if err != nil {
		return nil, fmt.Errorf("render plist: %w", err)
	}
	return buf.Bytes(), nil
}

func install(argv []string) error {
	p, err := plistPath()
	if err != nil {
		return err
	}
	data, err := launchAgent(argv)
	if err != nil {
		return err
	}
	return writeEntry(p, data)
}

func uninstall() error {
	p, err := plistPath()
	if err != nil {
		return err
	}
	return removeEntry(p)
}

func installed() bool {
	return entryExists(plistPath())
}
