package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Fallback amounts used when no script defines calc_regen.
const (
	DefaultHealthRegen int32 = 1
	DefaultManaRegen   int32 = 2
)

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// core first, then feature directories
	for _, sub := range []string{"core", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// RegenContext is the per-player state handed to calc_regen.
type RegenContext struct {
	Health    int32
	MaxHealth int32
	Mana      int32
	MaxMana   int32
	IsMoving  bool
	IsRunning bool
}

// RegenAmount is how much one tick restores. Never negative.
type RegenAmount struct {
	Health int32
	Mana   int32
}

// DefaultRegen is +1 health, +2 mana per tick.
func DefaultRegen() RegenAmount {
	return RegenAmount{Health: DefaultHealthRegen, Mana: DefaultManaRegen}
}

// CalcRegen calls Lua calc_regen(ctx). Missing function or script errors
// fall back to DefaultRegen.
func (e *Engine) CalcRegen(ctx RegenContext) RegenAmount {
	fn := e.vm.GetGlobal("calc_regen")
	if fn == lua.LNil {
		return DefaultRegen()
	}

	t := e.vm.NewTable()
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))
	t.RawSetString("mana", lua.LNumber(ctx.Mana))
	t.RawSetString("max_mana", lua.LNumber(ctx.MaxMana))
	t.RawSetString("is_moving", lua.LBool(ctx.IsMoving))
	t.RawSetString("is_running", lua.LBool(ctx.IsRunning))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_regen error", zap.Error(err))
		return DefaultRegen()
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_regen returned non-table")
		return DefaultRegen()
	}

	return RegenAmount{
		Health: clampAmount(lNumber(rt, "health")),
		Mana:   clampAmount(lNumber(rt, "mana")),
	}
}

// clampAmount truncates a script result into [0, MaxInt32]. NaN is 0.
func clampAmount(v float64) int32 {
	switch {
	case !(v > 0):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int32(v)
}

// lNumber reads a numeric field from a Lua table; missing fields are 0.
func lNumber(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
