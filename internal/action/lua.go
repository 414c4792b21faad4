package action

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/HopIT-Hub/hotkeykit/internal/hotkey"
	"github.com/HopIT-Hub/hotkeykit/internal/keys"
	"github.com/HopIT-Hub/hotkeykit/internal/keystroke"
)

// scriptTimeout bounds one script run. Scripts that loop without calling
// back into Go are stopped when it expires.
var scriptTimeout = 5 * time.Second

// script runs a Lua chunk in a sandboxed state each time its hotkey fires.
// The state persists between runs, so globals may carry data across them.
//
// Scripts see a "hotkey" table describing the invocation and an "hk"
// module with log, post, type and sleep.
type script struct {
	env   *Env
	proto *lua.FunctionProto

	mu  sync.Mutex
	L   *lua.LState
	ctx context.Context // current run
}

func newScript(src string, env *Env) (*script, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("lua action without script")
	}
	chunk, err := parse.Parse(strings.NewReader(src), "action")
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	proto, err := lua.Compile(chunk, "action")
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	s := &script{env: env, proto: proto, L: L}
	L.SetGlobal("hk", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"log":   s.luaLog,
		"post":  s.luaPost,
		"type":  s.luaType,
		"sleep": s.luaSleep,
	}))
	return s, nil
}

// openSafeLibraries opens the libraries without file, process or module
// access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (s *script) run(h *hotkey.HotKey, inv hotkey.Invocation) {
	if err := s.exec(h, inv); err != nil {
		s.env.report(h, err)
	}
}

func (s *script) exec(h *hotkey.HotKey, inv hotkey.Invocation) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	s.ctx = ctx
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	s.L.SetGlobal("hotkey", s.invocationTable(h, inv))

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()
	s.L.Push(s.L.NewFunctionFromProto(s.proto))
	if err := s.L.PCall(0, 0, nil); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func (s *script) invocationTable(h *hotkey.HotKey, inv hotkey.Invocation) *lua.LTable {
	t := s.L.NewTable()
	t.RawSetString("name", lua.LString(h.Name))
	t.RawSetString("shortcut", lua.LString(h.Shortcut()))
	t.RawSetString("keycode", lua.LNumber(h.Keycode()))
	t.RawSetString("modifier", lua.LNumber(h.Modifier()))
	t.RawSetString("character", lua.LString(string(rune(h.Character()))))
	t.RawSetString("repeat", lua.LBool(inv.IsRepeat))
	t.RawSetString("time", lua.LNumber(float64(inv.EventTime.UnixNano())/1e9))
	return t
}

// hk.log(...) logs its arguments separated by spaces.
func (s *script) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	log.Printf("[lua] %s", strings.Join(parts, " "))
	return 0
}

// hk.post(keycode [, modifier]) posts one keystroke to the system.
func (s *script) luaPost(L *lua.LState) int {
	ks := keys.Keystroke{
		Keycode:  keys.Keycode(L.CheckInt(1)),
		Modifier: keys.Modifier(L.OptInt(2, 0)),
	}
	if s.env == nil || s.env.Poster == nil {
		L.RaiseError("hk.post: keystrokes unavailable")
		return 0
	}
	if err := s.env.Poster.Post(s.ctx, ks, keystroke.Target{}, keystroke.DefaultLatency); err != nil {
		L.RaiseError("hk.post: %v", err)
	}
	return 0
}

// hk.type(text) types text on the current layout.
func (s *script) luaType(L *lua.LState) int {
	text := L.CheckString(1)
	if s.env == nil || s.env.Poster == nil {
		L.RaiseError("hk.type: keystrokes unavailable")
		return 0
	}
	current, err := s.env.keyMap(s.ctx)
	if err != nil {
		L.RaiseError("hk.type: %v", err)
		return 0
	}
	for _, r := range text {
		if r > 0xFFFF {
			L.RaiseError("hk.type: character %q outside the basic plane", r)
			return 0
		}
		if err := keystroke.PostCharacter(s.ctx, s.env.Poster, current, keys.Char(r), keystroke.Target{}, keystroke.DefaultLatency); err != nil {
			L.RaiseError("hk.type: %v", err)
			return 0
		}
	}
	return 0
}

// hk.sleep(ms) pauses the script.
func (s *script) luaSleep(L *lua.LState) int {
	d := time.Duration(L.CheckInt(1)) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.ctx.Done():
		L.RaiseError("hk.sleep: %v", s.ctx.Err())
	case <-t.C:
	}
	return 0
}
