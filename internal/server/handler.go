package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/HopIT-Hub/hotkeykit/internal/app"
	"github.com/HopIT-Hub/hotkeykit/internal/config"
	"github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/i18n"
	"github.com/HopIT-Hub/hotkeykit/internal/keymap"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{ .Title }}</title></head>
<body>
<h1>{{ .Title }}</h1>
<table>
{{- range .Bindings }}
<tr><td>{{ .Name }}</td><td>{{ .Shortcut }}</td><td>{{ .Action }}</td><td>{{ if .Registered }}✓{{ else }}{{ .Error }}{{ end }}</td></tr>
{{- else }}
<tr><td>{{ $.Empty }}</td></tr>
{{- end }}
</table>
</body>
</html>
`))

// handleIndex renders the registered hotkeys.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Title    string
		Empty    string
		Bindings []app.Binding
	}{
		Title:    i18n.T("tray_hotkeys"),
		Empty:    i18n.T("tray_none"),
		Bindings: s.ctrl.Bindings(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("[server] index: %v", err)
	}
}

// statusResponse is the JSON response for GET /status.
type statusResponse struct {
	Version   string `json:"version"`
	Hotkeys   int    `json:"hotkeys"`
	Failed    int    `json:"failed"`
	LayoutID  string `json:"layout_id,omitempty"`
	Layout    string `json:"layout,omitempty"`
	Accessory string `json:"accessory,omitempty"`
	AutoStart bool   `json:"auto_start"`
	Language  string `json:"language"`
	Error     string `json:"error,omitempty"`
}

// handleStatus reports the layout, the hotkeys and the accessory.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "method not allowed", 405)
		return
	}

	resp := statusResponse{
		Version:   s.version,
		AutoStart: s.ctrl.Config().GetAutoStart(),
		Language:  string(i18n.GetLanguage()),
	}
	for _, b := range s.ctrl.Bindings() {
		if b.Registered {
			resp.Hotkeys++
		} else {
			resp.Failed++
		}
	}
	if km, err := s.ctrl.KeyMap(r.Context()); err != nil {
		resp.Error = err.Error()
	} else {
		resp.LayoutID = km.ID()
		resp.Layout = km.LocalizedName()
	}
	if s.deviceState != nil {
		resp.Accessory = s.deviceState()
	}
	writeJSON(w, http.StatusOK, resp)
}

// hotkeyRequest is the JSON body for POST /hotkeys. The key is either
// rawkey or js_code with modifiers.
type hotkeyRequest struct {
	Name             string              `json:"name"`
	Modifiers        []string            `json:"modifiers"`
	JSCode           string              `json:"js_code"`
	Rawkey           uint64              `json:"rawkey"`
	RepeatIntervalMS int                 `json:"repeat_interval_ms"`
	InitialRepeatMS  int                 `json:"initial_repeat_ms"`
	InvokeOnKeyUp    bool                `json:"invoke_on_key_up"`
	Action           config.ActionConfig `json:"action"`
}

// hotkeyResponse is the JSON response for POST and DELETE /hotkeys.
type hotkeyResponse struct {
	Hotkey *app.Binding `json:"hotkey,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// handleHotkeys lists, adds and removes hotkeys.
func (s *Server) handleHotkeys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		writeJSON(w, http.StatusOK, s.ctrl.Bindings())
	case "POST":
		s.addHotkey(w, r)
	case "DELETE":
		name := r.URL.Query().Get("name")
		if err := s.ctrl.Remove(name); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, app.ErrUnknownName) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, hotkeyResponse{Error: err.Error()})
			return
		}
		log.Printf("[server] hotkey %q removed", name)
		writeJSON(w, http.StatusOK, hotkeyResponse{})
	default:
		http.Error(w, "method not allowed", 405)
	}
}

func (s *Server) addHotkey(w http.ResponseWriter, r *http.Request) {
	var req hotkeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, hotkeyResponse{Error: "invalid JSON"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, hotkeyResponse{Error: "name required"})
		return
	}
	if req.Rawkey == 0 && len(req.Modifiers) == 0 {
		writeJSON(w, http.StatusBadRequest, hotkeyResponse{Error: "at least one modifier required"})
		return
	}
	if req.Rawkey == 0 {
		if _, err := hotkey.KeycodeForCode(req.JSCode); err != nil {
			writeJSON(w, http.StatusBadRequest, hotkeyResponse{Error: "unsupported key: " + req.JSCode})
			return
		}
	}

	b, err := s.ctrl.Add(r.Context(), config.HotkeyConfig{
		Name:             req.Name,
		Rawkey:           req.Rawkey,
		Modifiers:        req.Modifiers,
		Key:              req.JSCode,
		RepeatIntervalMS: req.RepeatIntervalMS,
		InitialRepeatMS:  req.InitialRepeatMS,
		InvokeOnKeyUp:    req.InvokeOnKeyUp,
		Action:           req.Action,
	})
	if err != nil {
		log.Printf("[server] hotkey %q: %v", req.Name, err)
		status := http.StatusUnprocessableEntity
		if errors.Is(err, app.ErrDuplicateName) || errors.Is(err, hotkey.ErrAlreadyBound) {
			status = http.StatusConflict
		}
		writeJSON(w, status, hotkeyResponse{Error: "failed to register hotkey: " + err.Error()})
		return
	}
	log.Printf("[server] hotkey %q added: %s", b.Name, b.Shortcut)
	writeJSON(w, http.StatusOK, hotkeyResponse{Hotkey: &b})
}

// handleReload re-reads the configuration file.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := s.ctrl.Reload(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Bindings())
}

// autoStartRequest is the JSON body for POST /autostart.
type autoStartRequest struct {
	Enabled bool `json:"enabled"`
}

// autoStartResponse is the JSON response for POST /autostart.
type autoStartResponse struct {
	AutoStart bool   `json:"auto_start"`
	Error     string `json:"error,omitempty"`
}

// handleAutoStart toggles the start on login setting.
func (s *Server) handleAutoStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}

	var req autoStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, autoStartResponse{Error: "invalid JSON"})
		return
	}

	if err := s.autoStart(req.Enabled); err != nil {
		log.Printf("[server] autostart: %v", err)
		writeJSON(w, http.StatusInternalServerError, autoStartResponse{Error: "failed to change auto-start: " + err.Error()})
		return
	}
	if err := s.ctrl.Config().SetAutoStart(req.Enabled); err != nil {
		log.Printf("[server] save autostart config: %v", err)
		writeJSON(w, http.StatusInternalServerError, autoStartResponse{Error: "setting changed but failed to persist"})
		return
	}

	log.Printf("[server] auto-start: %v", req.Enabled)
	writeJSON(w, http.StatusOK, autoStartResponse{AutoStart: req.Enabled})
}

// keymapResponse is the JSON response for GET /keymap.
type keymapResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleKeymap(w http.ResponseWriter, r *http.Request) {
	km, ok := s.keyMap(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, keymapResponse{ID: km.ID(), Name: km.LocalizedName()})
}

// characterResponse is the JSON response for GET /keymap/character.
type characterResponse struct {
	Character string `json:"character"`
	Shortcut  string `json:"shortcut"`
}

// handleCharacter translates ?keycode=&modifier= on the current layout.
func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	k, err := strconv.ParseUint(q.Get("keycode"), 0, 16)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid keycode"})
		return
	}
	var m uint64
	if v := q.Get("modifier"); v != "" {
		if m, err = strconv.ParseUint(v, 0, 32); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid modifier"})
			return
		}
	}
	km, ok := s.keyMap(w, r)
	if !ok {
		return
	}
	c := km.CharacterForKeycode(keys.Keycode(k), keys.Modifier(m))
	if c == keys.NilChar {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no character"})
		return
	}
	writeJSON(w, http.StatusOK, characterResponse{
		Character: string(rune(c)),
		Shortcut:  keymap.StringRepresentation(km.BaseCharacterForKeycode(keys.Keycode(k)), keys.Modifier(m)),
	})
}

// keystrokeResponse is one element of GET /keymap/keystrokes.
type keystrokeResponse struct {
	Keycode  uint16 `json:"keycode"`
	Modifier uint32 `json:"modifier"`
	Shortcut string `json:"shortcut"`
}

// handleKeystrokes lists the keystrokes typing ?char= on the current
// layout, dead keys first. With ?all=1 it lists every single keystroke
// producing the character instead.
func (s *Server) handleKeystrokes(w http.ResponseWriter, r *http.Request) {
	ch := r.URL.Query().Get("char")
	c, size := utf8.DecodeRuneInString(ch)
	if ch == "" || size != len(ch) || c > 0xFFFF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "char must be one character"})
		return
	}
	km, ok := s.keyMap(w, r)
	if !ok {
		return
	}
	strokes := km.KeycodesForCharacter(keys.Char(c), 4)
	if r.URL.Query().Get("all") == "1" {
		strokes = km.KeystrokesForCharacter(keys.Char(c))
	}
	if len(strokes) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "character not on this layout"})
		return
	}
	out := make([]keystrokeResponse, len(strokes))
	for i, ks := range strokes {
		out[i] = keystrokeResponse{
			Keycode:  uint16(ks.Keycode),
			Modifier: uint32(ks.Modifier),
			Shortcut: keymap.StringRepresentation(km.BaseCharacterForKeycode(ks.Keycode), ks.Modifier),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) keyMap(w http.ResponseWriter, r *http.Request) (*keymap.KeyMap, bool) {
	if r.Method != "GET" {
		http.Error(w, "method not allowed", 405)
		return nil, false
	}
	km, err := s.ctrl.KeyMap(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return nil, false
	}
	return km, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
