// Package wasmbin provides WASM binary utilities for the harness: LEB128
// encoding, builders for the synthetic modules the environment is made of,
// and a scanner for import and export sections.
package wasmbin

import (
	"encoding/binary"

	"github.com/tetratelabs/wazero/api"
)

// ModuleBuilder builds synthetic WASM modules that export host functions
// through local forwarders, next to locally defined globals, a table and a
// memory.
type ModuleBuilder struct {
	hostModuleName string
	funcs          []synthFunc
	globals        []synthGlobal
	table          *synthLimits
	memory         *synthLimits
}

type synthFunc struct {
	name        string
	paramTypes  []api.ValueType
	resultTypes []api.ValueType
}

type synthGlobal struct {
	moduleName string
	importName string
	exportName string
	valType    api.ValueType
	mutable    bool
	isLocal    bool
	initBits   uint64
}

type synthLimits struct {
	exportName string
	min        uint32
	max        *uint32
}

// NewModuleBuilder creates a builder whose functions are imported from
// hostModuleName.
func NewModuleBuilder(hostModuleName string) *ModuleBuilder {
	return &ModuleBuilder{hostModuleName: hostModuleName}
}

// AddFunc adds a host function to import and export, under the same name,
// a local function that forwards its arguments to it.
func (b *ModuleBuilder) AddFunc(name string, params, results []api.ValueType) *ModuleBuilder {
	b.funcs = append(b.funcs, synthFunc{
		name:        name,
		paramTypes:  params,
		resultTypes: results,
	})
	return b
}

// AddGlobalImport adds a global to import from another module and export.
func (b *ModuleBuilder) AddGlobalImport(moduleName, importName, exportName string, valType api.ValueType, mutable bool) *ModuleBuilder {
	b.globals = append(b.globals, synthGlobal{
		moduleName: moduleName,
		importName: importName,
		exportName: exportName,
		valType:    valType,
		mutable:    mutable,
	})
	return b
}

// AddLocalGlobal adds a locally defined global. bits is the value in
// wazero's uint64 encoding (api.EncodeF32 and friends).
func (b *ModuleBuilder) AddLocalGlobal(exportName string, valType api.ValueType, mutable bool, bits uint64) *ModuleBuilder {
	b.globals = append(b.globals, synthGlobal{
		exportName: exportName,
		valType:    valType,
		mutable:    mutable,
		isLocal:    true,
		initBits:   bits,
	})
	return b
}

// SetTable defines a funcref table with the given bounds. A nil max leaves
// the table unbounded.
func (b *ModuleBuilder) SetTable(exportName string, min uint32, max *uint32) *ModuleBuilder {
	b.table = &synthLimits{exportName: exportName, min: min, max: max}
	return b
}

// SetMemory defines a linear memory with the given page bounds.
func (b *ModuleBuilder) SetMemory(exportName string, min uint32, max *uint32) *ModuleBuilder {
	b.memory = &synthLimits{exportName: exportName, min: min, max: max}
	return b
}

// Build generates the WASM module bytes. An empty builder yields a module
// with no sections.
func (b *ModuleBuilder) Build() []byte {
	wasm := append([]byte(nil), Magic...)

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x01, b.buildTypeSection())
	}

	if b.countImports() > 0 {
		wasm = appendSection(wasm, 0x02, b.buildImportSection())
	}

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x03, b.buildFunctionSection())
	}

	if b.table != nil {
		var section []byte
		section = append(section, 0x01, 0x70)
		section = appendLimits(section, b.table.min, b.table.max)
		wasm = appendSection(wasm, 0x04, section)
	}

	if b.memory != nil {
		var section []byte
		section = append(section, 0x01)
		section = appendLimits(section, b.memory.min, b.memory.max)
		wasm = appendSection(wasm, 0x05, section)
	}

	if globalSection := b.buildGlobalSection(); globalSection != nil {
		wasm = appendSection(wasm, 0x06, globalSection)
	}

	if exportSection := b.buildExportSection(); exportSection != nil {
		wasm = appendSection(wasm, 0x07, exportSection)
	}

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x0a, b.buildCodeSection())
	}

	return wasm
}

func (b *ModuleBuilder) buildTypeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)

	for _, f := range b.funcs {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(f.paramTypes)))...)
		for _, t := range f.paramTypes {
			section = append(section, ValTypeToWasm(t))
		}
		section = append(section, EncodeULEB128(uint32(len(f.resultTypes)))...)
		for _, t := range f.resultTypes {
			section = append(section, ValTypeToWasm(t))
		}
	}

	return section
}

func (b *ModuleBuilder) countImportedGlobals() int {
	count := 0
	for _, g := range b.globals {
		if !g.isLocal {
			count++
		}
	}
	return count
}

func (b *ModuleBuilder) countImports() int {
	return len(b.funcs) + b.countImportedGlobals()
}

func (b *ModuleBuilder) buildImportSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(b.countImports()))...)

	// Function imports, one type per function
	for i, f := range b.funcs {
		section = appendName(section, b.hostModuleName)
		section = appendName(section, f.name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(i))...)
	}

	for _, g := range b.globals {
		if g.isLocal {
			continue
		}
		section = appendName(section, g.moduleName)
		section = appendName(section, g.importName)
		section = append(section, 0x03)
		section = append(section, ValTypeToWasm(g.valType))
		section = append(section, mutByte(g.mutable))
	}

	return section
}

// Forwarder i has type i, the same as import i.
func (b *ModuleBuilder) buildFunctionSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *ModuleBuilder) buildCodeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i, f := range b.funcs {
		body := forwarderBody(i, f)
		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}

// forwarderBody pushes every parameter and calls the import at importIdx.
func forwarderBody(importIdx int, f synthFunc) []byte {
	body := []byte{0x00}
	for i := range f.paramTypes {
		body = append(body, 0x20)
		body = append(body, EncodeULEB128(uint32(i))...)
	}
	body = append(body, 0x10)
	body = append(body, EncodeULEB128(uint32(importIdx))...)
	return append(body, 0x0b)
}

func (b *ModuleBuilder) buildGlobalSection() []byte {
	numLocal := len(b.globals) - b.countImportedGlobals()
	if numLocal == 0 {
		return nil
	}

	var section []byte
	section = append(section, EncodeULEB128(uint32(numLocal))...)

	for _, g := range b.globals {
		if !g.isLocal {
			continue
		}
		section = append(section, ValTypeToWasm(g.valType))
		section = append(section, mutByte(g.mutable))
		section = appendConstExpr(section, g.valType, g.initBits)
	}

	return section
}

func appendConstExpr(buf []byte, t api.ValueType, bits uint64) []byte {
	switch t {
	case api.ValueTypeI32:
		buf = append(buf, 0x41)
		buf = append(buf, EncodeSLEB128(int32(uint32(bits)))...)
	case api.ValueTypeI64:
		buf = append(buf, 0x42)
		buf = append(buf, EncodeSLEB128(int64(bits))...)
	case api.ValueTypeF32:
		buf = append(buf, 0x43)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(bits))
	case api.ValueTypeF64:
		buf = append(buf, 0x44)
		buf = binary.LittleEndian.AppendUint64(buf, bits)
	case api.ValueTypeExternref:
		buf = append(buf, 0xd0, 0x6f)
	case ValueTypeFuncref:
		buf = append(buf, 0xd0, 0x70)
	default:
		buf = append(buf, 0x41, 0x00)
	}
	return append(buf, 0x0b)
}

func (b *ModuleBuilder) buildExportSection() []byte {
	numExports := len(b.funcs) + len(b.globals)
	if b.table != nil {
		numExports++
	}
	if b.memory != nil {
		numExports++
	}
	if numExports == 0 {
		return nil
	}

	var section []byte
	section = append(section, EncodeULEB128(uint32(numExports))...)

	// Forwarders follow the imported functions in the index space
	for i, f := range b.funcs {
		section = appendName(section, f.name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(len(b.funcs)+i))...)
	}

	if b.table != nil {
		section = appendName(section, b.table.exportName)
		section = append(section, 0x01, 0x00)
	}

	if b.memory != nil {
		section = appendName(section, b.memory.exportName)
		section = append(section, 0x02, 0x00)
	}

	// Imported globals take the low indices
	numImportedGlobals := b.countImportedGlobals()
	importedIdx := 0
	localIdx := 0
	for _, g := range b.globals {
		section = appendName(section, g.exportName)
		section = append(section, 0x03)
		if g.isLocal {
			section = append(section, EncodeULEB128(uint32(numImportedGlobals+localIdx))...)
			localIdx++
		} else {
			section = append(section, EncodeULEB128(uint32(importedIdx))...)
			importedIdx++
		}
	}

	return section
}

func mutByte(mutable bool) byte {
	if mutable {
		return 0x01
	}
	return 0x00
}

// Empty returns a module with no sections.
func Empty() []byte {
	return append([]byte(nil), Magic...)
}

// RecursionProbe returns a module exporting a nullary function that calls
// itself without bound.
func RecursionProbe(exportName string) []byte {
	wasm := append([]byte(nil), Magic...)
	wasm = appendSection(wasm, 0x01, []byte{0x01, 0x60, 0x00, 0x00})
	wasm = appendSection(wasm, 0x03, []byte{0x01, 0x00})

	var exports []byte
	exports = append(exports, 0x01)
	exports = appendName(exports, exportName)
	exports = append(exports, 0x00, 0x00)
	wasm = appendSection(wasm, 0x07, exports)

	// one body: no locals, call 0, end
	wasm = appendSection(wasm, 0x0a, []byte{0x01, 0x04, 0x00, 0x10, 0x00, 0x0b})
	return wasm
}
