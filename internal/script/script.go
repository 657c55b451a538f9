// Package script runs object action scripts in a sandboxed Lua VM.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/pixil98/go-mmo/internal/game"
)

var ErrNoPerformer = errors.New("action has no performing player")

// DefaultTimeout bounds how long a single script may run.
const DefaultTimeout = 100 * time.Millisecond

// Runner executes scripts. A fresh VM is used for every run so scripts
// cannot leave state behind.
type Runner struct {
	timeout time.Duration
}

type RunnerOpt func(*Runner)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) RunnerOpt {
	return func(r *Runner) {
		r.timeout = d
	}
}

func NewRunner(opts ...RunnerOpt) *Runner {
	r := &Runner{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAction runs src with the globals performer, object and arg, plus the
// functions give(item, qty) and tell(text).
func (r *Runner) RunAction(src string, call *game.ActionCall) error {
	if call.Performer == nil || call.Performer.User() == nil {
		return ErrNoPerformer
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	L.SetContext(ctx)

	registerAPI(L, call)

	if err := L.DoString(src); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

func registerAPI(L *lua.LState, call *game.ActionCall) {
	u := call.Performer.User()
	obj := call.Object

	performer := L.NewTable()
	performer.RawSetString("name", lua.LString(u.Name()))
	performer.RawSetString("health", lua.LNumber(call.Performer.Health()))
	performer.RawSetString("x", lua.LNumber(call.Performer.Location().X()))
	performer.RawSetString("y", lua.LNumber(call.Performer.Location().Y()))
	L.SetGlobal("performer", performer)

	object := L.NewTable()
	object.RawSetString("serial", lua.LString(obj.Serial().String()))
	object.RawSetString("type", lua.LString(obj.Type().ID))
	object.RawSetString("name", lua.LString(obj.Name()))
	if o := obj.Object(); o != nil {
		object.RawSetString("owner", lua.LString(o.Owner()))
	}
	L.SetGlobal("object", object)

	L.SetGlobal("arg", lua.LString(call.Arg))

	L.SetGlobal("give", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		qty := L.OptInt(2, 1)
		if qty < 0 {
			L.ArgError(2, "quantity must not be negative")
			return 0
		}
		if err := u.GiveItem(id, uint(qty)); err != nil {
			L.Push(lua.LFalse)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LTrue)
		return 1
	}))

	L.SetGlobal("tell", L.NewFunction(func(L *lua.LState) int {
		u.Tell(obj.Name(), L.CheckString(1))
		return 0
	}))
}
