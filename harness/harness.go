// Package harness implements the conformance-test primitives: module
// construction, instantiation against a shared registry, export calls and
// reads, and the assertion vocabulary of the reference test suite.
//
// A Harness owns its engine, its spectest environment and its registry.
// Harnesses are independent of each other; a single Harness may be used
// from several goroutines, but steps of one script are expected to run in
// order.
package harness

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
	"github.com/wippyai/wasm-spectest/spectest"
)

// Harness runs conformance steps against one wazero runtime.
type Harness struct {
	engine   *engine.WazeroEngine
	env      *spectest.Env
	registry *Registry
	logger   *zap.Logger
}

type options struct {
	engine *engine.Config
	env    spectest.Config
	logger *zap.Logger
}

// Option configures a Harness.
type Option func(*options)

// WithEngineConfig sets the wazero runtime configuration.
func WithEngineConfig(cfg *engine.Config) Option {
	return func(o *options) { o.engine = cfg }
}

// WithEnvConfig sets the spectest table and memory bounds.
func WithEnvConfig(cfg spectest.Config) Option {
	return func(o *options) { o.env = cfg }
}

// WithLogger sets the logger for harness events and print sinks.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a harness with a fresh runtime. The registry starts with the
// spectest environment bound under its namespace.
func New(ctx context.Context, opts ...Option) (*Harness, error) {
	o := options{env: spectest.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	e, err := engine.NewWazeroEngineWithConfig(ctx, o.engine)
	if err != nil {
		return nil, err
	}

	env, err := spectest.New(ctx, e, o.env, o.logger)
	if err != nil {
		_ = e.Close(ctx)
		return nil, err
	}

	emptyMod, err := e.LoadModule(ctx, wasmbin.Empty())
	if err != nil {
		_ = e.Close(ctx)
		return nil, errors.Internal(errors.PhaseHost, "compile placeholder module", err)
	}
	empty, err := emptyMod.Instantiate(ctx, nil)
	if err != nil {
		_ = e.Close(ctx)
		return nil, errors.Internal(errors.PhaseHost, "instantiate placeholder module", err)
	}

	h := &Harness{
		engine:   e,
		env:      env,
		registry: newRegistry(&Instance{inst: empty}),
		logger:   o.logger.Named("harness"),
	}
	h.registry.Register(spectest.Namespace, &Instance{inst: env.Instance()})
	return h, nil
}

// Close releases the runtime and every instance created through h.
func (h *Harness) Close(ctx context.Context) error {
	return h.engine.Close(ctx)
}

// Engine returns the underlying engine.
func (h *Harness) Engine() *engine.WazeroEngine {
	return h.engine
}

// Env returns the spectest environment.
func (h *Harness) Env() *spectest.Env {
	return h.env
}

// Registry returns the shared registry.
func (h *Harness) Registry() *Registry {
	return h.registry
}

// Module checks wasmBytes against the host's validity judgement and then
// compiles it. When the judgement differs from expectValid the result is an
// assertion failure; otherwise compilation errors surface as KindCompile.
func (h *Harness) Module(ctx context.Context, wasmBytes []byte, expectValid bool) (*engine.WazeroModule, error) {
	valid, err := h.engine.Validate(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	if valid != expectValid {
		msg := "Wasm validate failure"
		if !expectValid {
			msg += " expected"
		}
		return nil, errors.New(errors.PhaseValidate, errors.KindAssertion).Detail("%s", msg).Build()
	}
	return h.engine.LoadModule(ctx, wasmBytes)
}

// Instance compiles wasmBytes as a valid module and instantiates it.
// A nil imports table links against the shared registry.
func (h *Harness) Instance(ctx context.Context, wasmBytes []byte, imports Imports) (*Instance, error) {
	mod, err := h.Module(ctx, wasmBytes, true)
	if err != nil {
		return nil, err
	}
	return h.instantiate(ctx, mod, imports)
}

func (h *Harness) instantiate(ctx context.Context, mod *engine.WazeroModule, imports Imports) (*Instance, error) {
	inst, err := mod.Instantiate(ctx, h.registry.resolver(imports))
	if err != nil {
		h.logger.Debug("instantiate failed", zap.Error(err))
		return nil, err
	}
	return &Instance{inst: inst}, nil
}

// Call invokes the exported function name. Arguments are Values of the
// parameter types or Go numbers convertible to them.
func (h *Harness) Call(ctx context.Context, inst *Instance, name string, args ...any) ([]Value, error) {
	fn := inst.Module().ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseInvoke, "exported function", name)
	}

	def := fn.Definition()
	params := def.ParamTypes()
	if len(args) != len(params) {
		return nil, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("%s expects %d arguments, got %d", name, len(params), len(args)))
	}

	raw := make([]uint64, len(args))
	for i, arg := range args {
		v, err := coerce(arg, params[i])
		if err != nil {
			return nil, err
		}
		raw[i] = v
	}

	out, err := inst.inst.Call(ctx, name, raw...)
	if err != nil {
		return nil, err
	}

	results := def.ResultTypes()
	values := make([]Value, len(out))
	for i, bits := range out {
		values[i] = fromBits(results[i], bits)
	}
	return values, nil
}

// Table refers to an exported table. wazero does not expose table contents
// to the host, so only its identity is available.
type Table struct {
	Name  string
	Index uint32
}

// Get reads the export name. Globals yield their current Value, memories
// an api.Memory, functions an api.Function and tables a Table.
func (h *Harness) Get(inst *Instance, name string) (any, error) {
	exp, ok := inst.inst.Export(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseInvoke, "export", name)
	}

	mod := inst.Module()
	switch exp.Kind {
	case wasmbin.ExternGlobal:
		g := mod.ExportedGlobal(name)
		return fromBits(g.Type(), g.Get()), nil
	case wasmbin.ExternMemory:
		return mod.ExportedMemory(name), nil
	case wasmbin.ExternFunc:
		return mod.ExportedFunction(name), nil
	case wasmbin.ExternTable:
		return Table{Name: name, Index: exp.Index}, nil
	default:
		return nil, errors.Unsupported(errors.PhaseInvoke, fmt.Sprintf("reading %s export %q", exp.Kind, name))
	}
}

// Global returns the current value of the exported global name.
func (h *Harness) Global(inst *Instance, name string) (Value, error) {
	v, err := h.Get(inst, name)
	if err != nil {
		return Value{}, err
	}
	g, ok := v.(Value)
	if !ok {
		return Value{}, errors.TypeMismatch(errors.PhaseInvoke, name, fmt.Sprintf("%T", v), "global")
	}
	return g, nil
}

// Memory returns the exported memory name.
func (h *Harness) Memory(inst *Instance, name string) (api.Memory, error) {
	mem := inst.Module().ExportedMemory(name)
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseInvoke, "exported memory", name)
	}
	return mem, nil
}

// Exports builds an import table binding only name to inst.
func (h *Harness) Exports(name string, inst *Instance) Imports {
	return Imports{name: inst}
}

// Register binds inst under name in the shared registry.
func (h *Harness) Register(name string, inst *Instance) {
	h.registry.Register(name, inst)
	h.logger.Debug("registered", zap.String("name", name))
}
