package wasmbin

import (
	"github.com/tetratelabs/wazero/api"
)

// ValueTypeFuncref is the funcref reference type. wazero's api package only
// names externref.
const ValueTypeFuncref api.ValueType = 0x70

// Magic is the module preamble: "\0asm" followed by version 1.
var Magic = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// EncodeULEB128 encodes an unsigned value in LEB128 format.
func EncodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}

// EncodeSLEB128 encodes a signed value in LEB128 format.
func EncodeSLEB128[T int32 | int64](v T) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			result = append(result, b)
			break
		}
		result = append(result, b|0x80)
	}
	return result
}

// DecodeULEB128 decodes an unsigned LEB128 value. It returns the value and
// the number of bytes read; a truncated encoding reads to the end of data
// with the continuation bit still set on the last byte.
func DecodeULEB128(data []byte) (uint32, int) {
	var result uint32
	var shift uint32
	for i, b := range data {
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
		if shift > 35 {
			return result, i + 1
		}
	}
	return result, len(data)
}

func decodeULEB64(data []byte) (uint64, int, bool) {
	var result uint64
	var shift uint
	for i, b := range data {
		if shift > 63 {
			return 0, 0, false
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, i + 1, true
		}
		shift += 7
	}
	return 0, 0, false
}

// ValTypeToWasm converts a wazero value type to WASM encoding.
func ValTypeToWasm(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI32:
		return 0x7f
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	case api.ValueTypeExternref:
		return 0x6f
	case ValueTypeFuncref:
		return 0x70
	default:
		return 0x7f
	}
}

// ParseValType converts a WASM encoding to wazero value type.
func ParseValType(b byte) api.ValueType {
	switch b {
	case 0x7F:
		return api.ValueTypeI32
	case 0x7E:
		return api.ValueTypeI64
	case 0x7D:
		return api.ValueTypeF32
	case 0x7C:
		return api.ValueTypeF64
	case 0x6F:
		return api.ValueTypeExternref
	case 0x70:
		return ValueTypeFuncref
	default:
		return api.ValueTypeI32
	}
}

// ValTypeName returns the text-format name of t.
func ValTypeName(t api.ValueType) string {
	if t == ValueTypeFuncref {
		return "funcref"
	}
	return api.ValueTypeName(t)
}

func appendName(buf []byte, name string) []byte {
	buf = append(buf, EncodeULEB128(uint32(len(name)))...)
	return append(buf, name...)
}

func appendSection(buf []byte, id byte, content []byte) []byte {
	buf = append(buf, id)
	buf = append(buf, EncodeULEB128(uint32(len(content)))...)
	return append(buf, content...)
}

func appendLimits(buf []byte, min uint32, max *uint32) []byte {
	if max == nil {
		buf = append(buf, 0x00)
		return append(buf, EncodeULEB128(min)...)
	}
	buf = append(buf, 0x01)
	buf = append(buf, EncodeULEB128(min)...)
	return append(buf, EncodeULEB128(*max)...)
}
