// Package spectest provides the mock host environment conformance modules
// import from the "spectest" namespace.
//
// The environment is a synthetic module that forwards to a set of printing
// host functions and exports them next to immutable globals holding 666, a funcref table
// and a linear memory whose bounds are fixed at construction.
package spectest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

// Namespace is the import namespace the environment is registered under.
const Namespace = "spectest"

// GlobalValue is the value of every spectest global.
const GlobalValue = 666

var hostSeq atomic.Uint64

// Config fixes the table and memory bounds of the environment.
type Config struct {
	TableMin  uint32 `yaml:"table_min"`
	TableMax  uint32 `yaml:"table_max"`
	MemoryMin uint32 `yaml:"memory_min"`
	MemoryMax uint32 `yaml:"memory_max"`
}

// DefaultConfig returns the bounds used by the reference test suite: a
// table of 10 to 20 elements and a memory of 1 to 2 pages.
func DefaultConfig() Config {
	return Config{TableMin: 10, TableMax: 20, MemoryMin: 1, MemoryMax: 2}
}

// Validate rejects inverted or oversized bounds.
func (c Config) Validate() error {
	if c.TableMin > c.TableMax {
		return errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("table_min %d exceeds table_max %d", c.TableMin, c.TableMax))
	}
	if c.MemoryMin > c.MemoryMax {
		return errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("memory_min %d exceeds memory_max %d", c.MemoryMin, c.MemoryMax))
	}
	if c.MemoryMax > 65536 {
		return errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("memory_max %d exceeds 65536 pages", c.MemoryMax))
	}
	return nil
}

type sink struct {
	name   string
	params []api.ValueType
}

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f32 = api.ValueTypeF32
	f64 = api.ValueTypeF64
)

// sinks lists the printing functions in export order.
var sinks = []sink{
	{"print", nil},
	{"print_i32", []api.ValueType{i32}},
	{"print_i64", []api.ValueType{i64}},
	{"print_f32", []api.ValueType{f32}},
	{"print_f64", []api.ValueType{f64}},
	{"print_i32_f32", []api.ValueType{i32, f32}},
	{"print_f64_f64", []api.ValueType{f64, f64}},
}

// Env is an instantiated spectest environment.
type Env struct {
	instance *engine.WazeroInstance
	logger   *zap.Logger
	cfg      Config
	prints   atomic.Uint64
}

// New instantiates the environment in e's runtime. Print calls are logged
// to logger at info level; a nil logger discards them.
func New(ctx context.Context, e *engine.WazeroEngine, cfg Config, logger *zap.Logger) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	env := &Env{logger: logger.Named(Namespace), cfg: cfg}
	hostName := fmt.Sprintf("wasm-spectest/host#%d", hostSeq.Add(1))

	hb := e.Runtime().NewHostModuleBuilder(hostName)
	for _, s := range sinks {
		hb = hb.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				env.print(s, stack)
			}), s.params, nil).
			Export(s.name)
	}
	if _, err := hb.Instantiate(ctx); err != nil {
		return nil, errors.Internal(errors.PhaseHost, "instantiate print sinks", err)
	}

	mod, err := e.LoadModule(ctx, env.build(hostName))
	if err != nil {
		return nil, errors.Internal(errors.PhaseHost, "compile spectest module", err)
	}
	// The sinks are found by name in the runtime's namespace. A resolver
	// may only hand out guest instances, never host modules.
	inst, err := mod.Instantiate(ctx, nil)
	if err != nil {
		return nil, errors.Internal(errors.PhaseHost, "instantiate spectest module", err)
	}
	env.instance = inst

	return env, nil
}

func (env *Env) build(hostName string) []byte {
	b := wasmbin.NewModuleBuilder(hostName)
	for _, s := range sinks {
		b.AddFunc(s.name, s.params, nil)
	}
	b.AddLocalGlobal("global_i32", i32, false, api.EncodeI32(GlobalValue))
	b.AddLocalGlobal("global_i64", i64, false, api.EncodeI64(GlobalValue))
	b.AddLocalGlobal("global_f32", f32, false, api.EncodeF32(GlobalValue))
	b.AddLocalGlobal("global_f64", f64, false, api.EncodeF64(GlobalValue))

	tableMax, memMax := env.cfg.TableMax, env.cfg.MemoryMax
	b.SetTable("table", env.cfg.TableMin, &tableMax)
	b.SetMemory("memory", env.cfg.MemoryMin, &memMax)
	return b.Build()
}

func (env *Env) print(s sink, stack []uint64) {
	env.prints.Add(1)
	fields := make([]zap.Field, 0, len(s.params))
	for i, t := range s.params {
		key := fmt.Sprintf("arg%d", i)
		switch t {
		case i32:
			fields = append(fields, zap.Int32(key, api.DecodeI32(stack[i])))
		case i64:
			fields = append(fields, zap.Int64(key, int64(stack[i])))
		case f32:
			fields = append(fields, zap.Float32(key, api.DecodeF32(stack[i])))
		case f64:
			fields = append(fields, zap.Float64(key, api.DecodeF64(stack[i])))
		}
	}
	env.logger.Info(s.name, fields...)
}

// Instance returns the instantiated environment module.
func (env *Env) Instance() *engine.WazeroInstance {
	return env.instance
}

// Config returns the bounds the environment was built with.
func (env *Env) Config() Config {
	return env.cfg
}

// Prints returns how many times a print sink was called.
func (env *Env) Prints() uint64 {
	return env.prints.Load()
}
