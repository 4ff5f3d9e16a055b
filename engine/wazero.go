package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

const probeExport = "probe"

// WazeroEngine exposes the host primitives the harness is built on:
// validation, compilation, instantiation against a resolver, export calls
// and the exhaustion classification.
type WazeroEngine struct {
	runtime    wazero.Runtime
	exhaustion string
	seq        atomic.Uint64
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	EnableThreads bool

	// CloseOnContextDone terminates running calls when their context is
	// cancelled or times out.
	CloseOnContextDone bool

	// Interpreter selects wazero's interpreter instead of the compiler.
	Interpreter bool
}

// Resolver maps an import namespace to the module satisfying it. A nil
// result falls back to wazero's module namespace.
type Resolver func(namespace string) api.Module

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration.
// It runs the recursion probe once to learn how the runtime reports
// exhaustion.
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.Interpreter {
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	}

	features := api.CoreFeaturesV2
	if cfg.EnableThreads {
		features |= experimental.CoreFeaturesThreads
	}
	runtimeCfg = runtimeCfg.WithCoreFeatures(features)

	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	if cfg.CloseOnContextDone {
		runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
	}

	e := &WazeroEngine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}

	reason, err := e.probeExhaustion(ctx)
	if err != nil {
		_ = e.runtime.Close(ctx)
		return nil, err
	}
	e.exhaustion = reason
	Logger().Debug("engine ready", zap.String("exhaustion", reason), zap.Bool("interpreter", cfg.Interpreter))

	return e, nil
}

// probeExhaustion provokes unbounded recursion and returns the first line
// of the error the runtime reported for it. The compiler reports a bare
// "stack overflow", the interpreter prefixes it with "wasm error: ".
func (e *WazeroEngine) probeExhaustion(ctx context.Context) (string, error) {
	mod, err := e.LoadModule(ctx, wasmbin.RecursionProbe(probeExport))
	if err != nil {
		return "", errors.Internal(errors.PhaseCompile, "compile recursion probe", err)
	}
	defer mod.Close(ctx)

	inst, err := mod.Instantiate(ctx, nil)
	if err != nil {
		return "", errors.Internal(errors.PhaseInstantiate, "instantiate recursion probe", err)
	}
	defer inst.Close(ctx)

	_, err = inst.module.ExportedFunction(probeExport).Call(ctx)
	if err == nil {
		return "", errors.Internal(errors.PhaseInvoke, "recursion probe returned", nil)
	}
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return "", errors.Internal(errors.PhaseInvoke, "recursion probe exited", err)
	}
	reason := errorReason(err)
	if reason == "" {
		return "", errors.Internal(errors.PhaseInvoke, "recursion probe failed without a reason", err)
	}
	return reason, nil
}

// Runtime returns the underlying wazero runtime.
func (e *WazeroEngine) Runtime() wazero.Runtime {
	return e.runtime
}

// ExhaustionReason returns the trap reason the runtime reports when the
// call stack is exhausted.
func (e *WazeroEngine) ExhaustionReason() string {
	return e.exhaustion
}

// Close releases the runtime and every module instantiated in it.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Validate reports whether wasmBytes is a valid module. A rejected module
// is not an error; err is only set when the host itself failed.
func (e *WazeroEngine) Validate(ctx context.Context, wasmBytes []byte) (valid bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
			err = errors.Internal(errors.PhaseValidate, "validate must not throw", fmt.Errorf("%v", r))
		}
	}()

	// Not closed: wazero shares compiled code with later compilations of the
	// same bytes. The runtime releases it on Close.
	_, cerr := e.runtime.CompileModule(ctx, wasmBytes)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, errors.Internal(errors.PhaseValidate, "validation interrupted", ctxErr)
	}
	if cerr != nil {
		Logger().Debug("module rejected", zap.Error(cerr))
		return false, nil
	}
	return true, nil
}

// LoadModule compiles wasmBytes. Decode and validation failures are
// reported as KindCompile.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Compile(fmt.Errorf("compile failed: %w", err))
	}

	exports, err := wasmbin.ParseExports(wasmBytes)
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	return &WazeroModule{
		engine:   e,
		compiled: compiled,
		bytes:    wasmBytes,
		exports:  exports,
	}, nil
}

func (e *WazeroEngine) nextName() string {
	return fmt.Sprintf("wasm-spectest#%d", e.seq.Add(1))
}

// WazeroModule is a compiled module that can be instantiated any number of
// times.
type WazeroModule struct {
	engine   *WazeroEngine
	compiled wazero.CompiledModule
	bytes    []byte
	exports  []wasmbin.Export
}

// Compiled returns the wazero compiled module.
func (m *WazeroModule) Compiled() wazero.CompiledModule {
	return m.compiled
}

// Bytes returns the encoded module.
func (m *WazeroModule) Bytes() []byte {
	return m.bytes
}

// Exports returns the module's export section.
func (m *WazeroModule) Exports() []wasmbin.Export {
	return m.exports
}

// Imports returns the module's import section.
func (m *WazeroModule) Imports() ([]wasmbin.Import, error) {
	return wasmbin.ParseImports(m.bytes)
}

// Instantiate links the module against resolve and runs its start
// function. Link failures are KindLink; start-up traps are KindTrap or
// KindExhaustion.
func (m *WazeroModule) Instantiate(ctx context.Context, resolve Resolver) (*WazeroInstance, error) {
	name := m.engine.nextName()
	cfg := wazero.NewModuleConfig().WithName(name).WithStartFunctions()

	if resolve != nil {
		ctx = experimental.WithImportResolver(ctx, experimental.ImportResolver(resolve))
	}

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, m.engine.classifyInstantiate(err)
	}

	Logger().Debug("module instantiated", zap.String("name", name))
	return &WazeroInstance{module: mod, source: m, engine: m.engine}, nil
}

// Close releases the compiled module.
func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// WazeroInstance is a linked module instance.
type WazeroInstance struct {
	module api.Module
	source *WazeroModule
	engine *WazeroEngine
}

// Module returns the wazero module instance.
func (i *WazeroInstance) Module() api.Module {
	return i.module
}

// Exports returns the export section of the instantiated module.
func (i *WazeroInstance) Exports() []wasmbin.Export {
	return i.source.exports
}

// Export looks up an export by name.
func (i *WazeroInstance) Export(name string) (wasmbin.Export, bool) {
	return wasmbin.FindExport(i.source.exports, name)
}

// Call invokes the exported function name with params in wazero's uint64
// encoding.
func (i *WazeroInstance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseInvoke, "exported function", name)
	}

	def := fn.Definition()
	if len(params) != len(def.ParamTypes()) {
		return nil, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("%s expects %d params, got %d", name, len(def.ParamTypes()), len(params)))
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, i.engine.classifyRuntime(errors.PhaseInvoke, err)
	}
	return results, nil
}

// Close closes the instance.
func (i *WazeroInstance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
