package harness

import (
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

// Helpers for hand-encoding small test modules. Every section and body is
// shorter than 128 bytes, so sizes fit in one LEB128 byte.

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func module(sections ...[]byte) []byte {
	return concat(append([][]byte{wasmbin.Magic}, sections...)...)
}

func section(id byte, content ...byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func export(n string, kind wasmbin.ExternKind, index byte) []byte {
	return concat(name(n), []byte{byte(kind), index})
}

func body(code ...byte) []byte {
	b := concat([]byte{0x00}, code, []byte{0x0b})
	return append([]byte{byte(len(b))}, b...)
}

var (
	// (func (export "add") (param i32 i32) (result i32) ...)
	// (func (export "negzero") (result f32) (f32.const -0))
	// (func (export "nan") (result f32) (f32.const nan:0x200000))
	// (func (export "pair") (result i32 i64) (i32.const 7) (i64.const -1))
	valuesModule = module(
		section(0x01, concat(
			[]byte{0x03},
			[]byte{0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
			[]byte{0x60, 0x00, 0x01, 0x7d},
			[]byte{0x60, 0x00, 0x02, 0x7f, 0x7e},
		)...),
		section(0x03, 0x04, 0x00, 0x01, 0x01, 0x02),
		section(0x07, concat(
			[]byte{0x04},
			export("add", wasmbin.ExternFunc, 0),
			export("negzero", wasmbin.ExternFunc, 1),
			export("nan", wasmbin.ExternFunc, 2),
			export("pair", wasmbin.ExternFunc, 3),
		)...),
		section(0x0a, concat(
			[]byte{0x04},
			body(0x20, 0x00, 0x20, 0x01, 0x6a),
			body(0x43, 0x00, 0x00, 0x00, 0x80),
			body(0x43, 0x00, 0x00, 0xa0, 0x7f),
			body(0x41, 0x07, 0x42, 0x7f),
		)...),
	)

	// (memory (export "mem") 1)
	// (func (export "fill") (param i32 i32 i32) (memory.fill ...))
	// (func (export "load8_u") (param i32) (result i32) (i32.load8_u ...))
	memoryModule = module(
		section(0x01, concat(
			[]byte{0x02},
			[]byte{0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x00},
			[]byte{0x60, 0x01, 0x7f, 0x01, 0x7f},
		)...),
		section(0x03, 0x02, 0x00, 0x01),
		section(0x05, 0x01, 0x00, 0x01),
		section(0x07, concat(
			[]byte{0x03},
			export("mem", wasmbin.ExternMemory, 0),
			export("fill", wasmbin.ExternFunc, 0),
			export("load8_u", wasmbin.ExternFunc, 1),
		)...),
		section(0x0a, concat(
			[]byte{0x02},
			body(0x20, 0x00, 0x20, 0x01, 0x20, 0x02, 0xfc, 0x0b, 0x00),
			body(0x20, 0x00, 0x2d, 0x00, 0x00),
		)...),
	)

	// (func (export "f") unreachable)
	trapModule = module(
		section(0x01, 0x01, 0x60, 0x00, 0x00),
		section(0x03, 0x01, 0x00),
		section(0x07, concat([]byte{0x01}, export("f", wasmbin.ExternFunc, 0))...),
		section(0x0a, concat([]byte{0x01}, body(0x00))...),
	)

	// (func $f unreachable) (start $f)
	startTrapModule = module(
		section(0x01, 0x01, 0x60, 0x00, 0x00),
		section(0x03, 0x01, 0x00),
		section(0x08, 0x00),
		section(0x0a, concat([]byte{0x01}, body(0x00))...),
	)

	// (import "missing" "f" (func))
	unlinkableModule = module(
		section(0x01, 0x01, 0x60, 0x00, 0x00),
		section(0x02, concat([]byte{0x01}, name("missing"), name("f"), []byte{0x00, 0x00})...),
	)

	// (func (result i32)) with an empty body
	invalidModule = module(
		section(0x01, 0x01, 0x60, 0x00, 0x01, 0x7f),
		section(0x03, 0x01, 0x00),
		section(0x0a, concat([]byte{0x01}, body())...),
	)

	malformedModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}
)
