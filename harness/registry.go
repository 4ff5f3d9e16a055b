package harness

import (
	"maps"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

// Instance is a live module instance created by the harness.
type Instance struct {
	inst *engine.WazeroInstance
}

// Module returns the wazero module instance.
func (i *Instance) Module() api.Module {
	return i.inst.Module()
}

// Exports returns the instance's exports in declaration order.
func (i *Instance) Exports() []wasmbin.Export {
	return i.inst.Exports()
}

// Imports maps import namespaces to the instances that satisfy them.
type Imports map[string]*Instance

// Registry is the shared namespace table used when a module is
// instantiated without explicit imports. Registering a name again replaces
// the previous entry; instances already linked keep their bindings.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Instance
	empty   *Instance
}

func newRegistry(empty *Instance) *Registry {
	return &Registry{entries: make(map[string]*Instance), empty: empty}
}

// Register binds name to inst.
func (r *Registry) Register(name string, inst *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = inst
}

// Lookup returns the instance bound to name. Unbound names resolve to an
// instance with no exports, so importing from them fails to link.
func (r *Registry) Lookup(name string) *Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if inst, ok := r.entries[name]; ok {
		return inst
	}
	return r.empty
}

// Has reports whether name is bound.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the bound names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Snapshot copies the current bindings.
func (r *Registry) Snapshot() Imports {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(Imports(r.entries))
}

// resolver adapts an import table to the engine. A nil table resolves
// through the registry.
func (r *Registry) resolver(imports Imports) engine.Resolver {
	if imports == nil {
		return func(ns string) api.Module { return r.Lookup(ns).Module() }
	}
	return func(ns string) api.Module {
		if inst, ok := imports[ns]; ok && inst != nil {
			return inst.Module()
		}
		return r.empty.Module()
	}
}
