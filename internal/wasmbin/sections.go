package wasmbin

import (
	"bytes"
	"fmt"

	"github.com/wippyai/wasm-spectest/errors"
)

// ExternKind is the kind byte of an import or export descriptor.
type ExternKind byte

const (
	ExternFunc   ExternKind = 0x00
	ExternTable  ExternKind = 0x01
	ExternMemory ExternKind = 0x02
	ExternGlobal ExternKind = 0x03
	ExternTag    ExternKind = 0x04
)

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	case ExternTag:
		return "tag"
	default:
		return fmt.Sprintf("extern(0x%02x)", byte(k))
	}
}

// Export is an entry of the export section.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// Import is an entry of the import section. Desc renders the descriptor,
// e.g. "type 0", "funcref 10..20", "i32 const".
type Import struct {
	Module string
	Name   string
	Kind   ExternKind
	Desc   string
}

const (
	sectionImport = 0x02
	sectionExport = 0x07
)

// ParseExports extracts the export section from raw WASM bytes. A module
// without one yields no exports.
func ParseExports(wasmBytes []byte) ([]Export, error) {
	content, err := findSection(wasmBytes, sectionExport)
	if err != nil || content == nil {
		return nil, err
	}

	r := &reader{buf: content}
	count, err := r.u32()
	if err != nil {
		return nil, parseErr("export section", err)
	}

	exports := make([]Export, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return nil, parseErr("export name", err)
		}
		kind, err := r.readByte()
		if err != nil {
			return nil, parseErr("export kind", err)
		}
		idx, err := r.u32()
		if err != nil {
			return nil, parseErr("export index", err)
		}
		exports = append(exports, Export{Name: name, Kind: ExternKind(kind), Index: idx})
	}
	return exports, nil
}

// ParseImports extracts the import section from raw WASM bytes.
func ParseImports(wasmBytes []byte) ([]Import, error) {
	content, err := findSection(wasmBytes, sectionImport)
	if err != nil || content == nil {
		return nil, err
	}

	r := &reader{buf: content}
	count, err := r.u32()
	if err != nil {
		return nil, parseErr("import section", err)
	}

	imports := make([]Import, 0, count)
	for i := uint32(0); i < count; i++ {
		var imp Import
		if imp.Module, err = r.name(); err != nil {
			return nil, parseErr("import module", err)
		}
		if imp.Name, err = r.name(); err != nil {
			return nil, parseErr("import name", err)
		}
		kind, err := r.readByte()
		if err != nil {
			return nil, parseErr("import kind", err)
		}
		imp.Kind = ExternKind(kind)
		if imp.Desc, err = r.importDesc(imp.Kind); err != nil {
			return nil, parseErr("import "+imp.Kind.String(), err)
		}
		imports = append(imports, imp)
	}
	return imports, nil
}

// FindExport returns the export with the given name.
func FindExport(exports []Export, name string) (Export, bool) {
	for _, e := range exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

func findSection(wasmBytes []byte, id byte) ([]byte, error) {
	if len(wasmBytes) < 8 || !bytes.Equal(wasmBytes[:4], Magic[:4]) {
		return nil, parseErr("module header", fmt.Errorf("missing magic"))
	}

	r := &reader{buf: wasmBytes, pos: 8}
	for r.pos < len(r.buf) {
		sectionID, err := r.readByte()
		if err != nil {
			return nil, parseErr("section id", err)
		}
		size, err := r.u32()
		if err != nil {
			return nil, parseErr("section size", err)
		}
		content, err := r.take(int(size))
		if err != nil {
			return nil, parseErr(fmt.Sprintf("section %d", sectionID), err)
		}
		if sectionID == id {
			return content, nil
		}
	}
	return nil, nil
}

func parseErr(what string, cause error) error {
	return errors.ParseFailed(what, cause)
}

type reader struct {
	buf []byte
	pos int
}

var errTruncated = fmt.Errorf("unexpected end of data")

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	v, n := DecodeULEB128(r.buf[r.pos:])
	if n == 0 || r.buf[r.pos+n-1]&0x80 != 0 {
		return 0, errTruncated
	}
	r.pos += n
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	v, n, ok := decodeULEB64(r.buf[r.pos:])
	if !ok {
		return 0, errTruncated
	}
	r.pos += n
	return v, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) limits() (string, error) {
	flags, err := r.readByte()
	if err != nil {
		return "", err
	}
	min, err := r.u64()
	if err != nil {
		return "", err
	}
	s := fmt.Sprintf("%d", min)
	if flags&0x01 != 0 {
		max, err := r.u64()
		if err != nil {
			return "", err
		}
		s = fmt.Sprintf("%d..%d", min, max)
	}
	if flags&0x02 != 0 {
		s += " shared"
	}
	return s, nil
}

func (r *reader) importDesc(kind ExternKind) (string, error) {
	switch kind {
	case ExternFunc:
		idx, err := r.u32()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("type %d", idx), nil
	case ExternTable:
		ref, err := r.readByte()
		if err != nil {
			return "", err
		}
		lim, err := r.limits()
		if err != nil {
			return "", err
		}
		return ValTypeName(ParseValType(ref)) + " " + lim, nil
	case ExternMemory:
		lim, err := r.limits()
		if err != nil {
			return "", err
		}
		return lim + " pages", nil
	case ExternGlobal:
		vt, err := r.readByte()
		if err != nil {
			return "", err
		}
		mut, err := r.readByte()
		if err != nil {
			return "", err
		}
		desc := ValTypeName(ParseValType(vt))
		if mut == 0x01 {
			return desc + " mut", nil
		}
		return desc + " const", nil
	case ExternTag:
		if _, err := r.readByte(); err != nil {
			return "", err
		}
		idx, err := r.u32()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("type %d", idx), nil
	default:
		return "", fmt.Errorf("unknown import kind 0x%02x", byte(kind))
	}
}
