package harness

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

// Value is a typed WebAssembly value in wazero's uint64 encoding.
type Value struct {
	Type api.ValueType
	Bits uint64
}

// I32 returns an i32 value.
func I32(v int32) Value { return Value{Type: api.ValueTypeI32, Bits: api.EncodeI32(v)} }

// I64 returns an i64 value.
func I64(v int64) Value { return Value{Type: api.ValueTypeI64, Bits: api.EncodeI64(v)} }

// F32 returns an f32 value.
func F32(v float32) Value { return Value{Type: api.ValueTypeF32, Bits: api.EncodeF32(v)} }

// F64 returns an f64 value.
func F64(v float64) Value { return Value{Type: api.ValueTypeF64, Bits: api.EncodeF64(v)} }

// F32Bits returns an f32 value with the given bit pattern.
func F32Bits(bits uint32) Value { return Value{Type: api.ValueTypeF32, Bits: uint64(bits)} }

// F64Bits returns an f64 value with the given bit pattern.
func F64Bits(bits uint64) Value { return Value{Type: api.ValueTypeF64, Bits: bits} }

// ExternRef returns a non-null externref carrying v. wazero reserves the
// zero reference for null, so v is stored shifted by one.
func ExternRef(v uint64) Value { return Value{Type: api.ValueTypeExternref, Bits: v + 1} }

// NullExternRef returns the null externref.
func NullExternRef() Value { return Value{Type: api.ValueTypeExternref} }

// NullFuncRef returns the null funcref.
func NullFuncRef() Value { return Value{Type: wasmbin.ValueTypeFuncref} }

// FuncRef returns a funcref with the given opaque reference.
func FuncRef(ref uint64) Value { return Value{Type: wasmbin.ValueTypeFuncref, Bits: ref} }

// fromBits decodes a raw result of type t.
func fromBits(t api.ValueType, bits uint64) Value {
	switch t {
	case api.ValueTypeI32, api.ValueTypeF32:
		return Value{Type: t, Bits: bits & math.MaxUint32}
	default:
		return Value{Type: t, Bits: bits}
	}
}

// IsNaN reports whether v is a float NaN of any payload.
func (v Value) IsNaN() bool {
	switch v.Type {
	case api.ValueTypeF32:
		return math.IsNaN(float64(math.Float32frombits(uint32(v.Bits))))
	case api.ValueTypeF64:
		return math.IsNaN(math.Float64frombits(v.Bits))
	default:
		return false
	}
}

// SameValue compares under same-value semantics: any NaN equals any NaN,
// +0 and -0 differ, everything else compares by value.
func (v Value) SameValue(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case api.ValueTypeI32, api.ValueTypeF32:
		if v.IsNaN() && o.IsNaN() {
			return true
		}
		return uint32(v.Bits) == uint32(o.Bits)
	case api.ValueTypeF64:
		if v.IsNaN() && o.IsNaN() {
			return true
		}
		return v.Bits == o.Bits
	default:
		return v.Bits == o.Bits
	}
}

// Match implements Expectation.
func (v Value) Match(actual Value) bool {
	return v.SameValue(actual)
}

// Interface returns v as the closest Go value: int32, int64, float32,
// float64, or the raw reference as uint64.
func (v Value) Interface() any {
	switch v.Type {
	case api.ValueTypeI32:
		return api.DecodeI32(v.Bits)
	case api.ValueTypeI64:
		return int64(v.Bits)
	case api.ValueTypeF32:
		return api.DecodeF32(v.Bits)
	case api.ValueTypeF64:
		return api.DecodeF64(v.Bits)
	default:
		return v.Bits
	}
}

func (v Value) String() string {
	switch v.Type {
	case api.ValueTypeI32:
		return "i32:" + strconv.FormatInt(int64(api.DecodeI32(v.Bits)), 10)
	case api.ValueTypeI64:
		return "i64:" + strconv.FormatInt(int64(v.Bits), 10)
	case api.ValueTypeF32:
		if v.IsNaN() {
			return fmt.Sprintf("f32:nan:0x%08x", uint32(v.Bits))
		}
		return "f32:" + strconv.FormatFloat(float64(api.DecodeF32(v.Bits)), 'g', -1, 32)
	case api.ValueTypeF64:
		if v.IsNaN() {
			return fmt.Sprintf("f64:nan:0x%016x", v.Bits)
		}
		return "f64:" + strconv.FormatFloat(api.DecodeF64(v.Bits), 'g', -1, 64)
	case api.ValueTypeExternref:
		if v.Bits == 0 {
			return "ref.null extern"
		}
		return fmt.Sprintf("ref.extern %d", v.Bits-1)
	case wasmbin.ValueTypeFuncref:
		if v.Bits == 0 {
			return "ref.null func"
		}
		return "ref.func"
	default:
		return fmt.Sprintf("%s:0x%x", wasmbin.ValTypeName(v.Type), v.Bits)
	}
}

// Expectation matches a single result of an action.
type Expectation interface {
	Match(actual Value) bool
	String() string
}

type nanExpectation struct {
	typ       api.ValueType
	canonical bool
}

// CanonicalNaN expects a NaN of type t. Payloads are not distinguished.
func CanonicalNaN(t api.ValueType) Expectation {
	return nanExpectation{typ: t, canonical: true}
}

// ArithmeticNaN expects a NaN of type t. Payloads are not distinguished.
func ArithmeticNaN(t api.ValueType) Expectation {
	return nanExpectation{typ: t}
}

func (n nanExpectation) Match(actual Value) bool {
	return actual.Type == n.typ && actual.IsNaN()
}

func (n nanExpectation) String() string {
	if n.canonical {
		return wasmbin.ValTypeName(n.typ) + ":nan:canonical"
	}
	return wasmbin.ValTypeName(n.typ) + ":nan:arithmetic"
}

func formatValues[T fmt.Stringer](vs []T) string {
	if len(vs) == 1 {
		return vs[0].String()
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// coerce converts a call argument to the encoding of param type t.
// Values must match t exactly; Go numbers convert when the conversion is
// meaningful for t.
func coerce(arg any, t api.ValueType) (uint64, error) {
	if v, ok := arg.(Value); ok {
		if v.Type != t {
			return 0, errors.TypeMismatch(errors.PhaseInvoke, "argument", wasmbin.ValTypeName(v.Type), wasmbin.ValTypeName(t))
		}
		return v.Bits, nil
	}

	switch t {
	case api.ValueTypeExternref, wasmbin.ValueTypeFuncref:
		if arg == nil {
			return 0, nil
		}
	}

	n, ok := asNumber(arg)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseInvoke, "argument", fmt.Sprintf("%T", arg), wasmbin.ValTypeName(t))
	}

	switch t {
	case api.ValueTypeI32:
		if n.isFloat {
			break
		}
		return api.EncodeU32(uint32(n.bits)), nil
	case api.ValueTypeI64:
		if n.isFloat {
			break
		}
		return n.bits, nil
	case api.ValueTypeF32:
		return api.EncodeF32(float32(n.float())), nil
	case api.ValueTypeF64:
		return api.EncodeF64(n.float()), nil
	}
	return 0, errors.TypeMismatch(errors.PhaseInvoke, "argument", fmt.Sprintf("%T", arg), wasmbin.ValTypeName(t))
}

// number is a Go numeric argument. bits holds the two's complement
// integer (sign extended); floats keep their value in f.
type number struct {
	bits     uint64
	f        float64
	isFloat  bool
	unsigned bool
}

func (n number) float() float64 {
	switch {
	case n.isFloat:
		return n.f
	case n.unsigned:
		return float64(n.bits)
	default:
		return float64(int64(n.bits))
	}
}

func asNumber(arg any) (number, bool) {
	switch v := arg.(type) {
	case int:
		return number{bits: uint64(v)}, true
	case int8:
		return number{bits: uint64(v)}, true
	case int16:
		return number{bits: uint64(v)}, true
	case int32:
		return number{bits: uint64(v)}, true
	case int64:
		return number{bits: uint64(v)}, true
	case uint:
		return number{bits: uint64(v), unsigned: true}, true
	case uint8:
		return number{bits: uint64(v), unsigned: true}, true
	case uint16:
		return number{bits: uint64(v), unsigned: true}, true
	case uint32:
		return number{bits: uint64(v), unsigned: true}, true
	case uint64:
		return number{bits: v, unsigned: true}, true
	case float32:
		return number{f: float64(v), isFloat: true}, true
	case float64:
		return number{f: v, isFloat: true}, true
	case bool:
		if v {
			return number{bits: 1}, true
		}
		return number{}, true
	default:
		return number{}, false
	}
}
