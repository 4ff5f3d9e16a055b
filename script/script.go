// Package script loads and runs wast2json command scripts.
//
// A script is the JSON file wast2json writes next to the .wasm files of a
// converted .wast test. Commands run in order against one harness; the
// first failing command stops the script.
package script

import (
	"encoding/json"
	"io/fs"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/harness"
)

// Script is a parsed wast2json file.
type Script struct {
	SourceFile string    `json:"source_filename"`
	Commands   []Command `json:"commands"`

	fsys fs.FS
	dir  string
}

// Command is one entry of a script.
type Command struct {
	Type string `json:"type"`
	Line int    `json:"line"`

	// Set when Type is "module" or "register"
	Name string `json:"name,omitempty"`

	// Set for module commands and module assertions
	Filename   string `json:"filename,omitempty"`
	ModuleType string `json:"module_type,omitempty"`

	// Set when Type is "register"
	As string `json:"as,omitempty"`

	// Set for actions and action assertions
	Action   Action      `json:"action,omitempty"`
	Expected []ValueSpec `json:"expected,omitempty"`

	// Expected failure text, informational only
	Text string `json:"text,omitempty"`
}

// Action is an "invoke" or "get" of an export.
type Action struct {
	Type   string      `json:"type"`
	Module string      `json:"module,omitempty"`
	Field  string      `json:"field"`
	Args   []ValueSpec `json:"args,omitempty"`
}

// ValueSpec is a typed value as wast2json writes it. Numbers are unsigned
// decimal bit patterns; NaN expectations use "nan:canonical" and
// "nan:arithmetic".
type ValueSpec struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Load parses the script name in fsys. Module files named by its commands
// are read from the same directory.
func Load(fsys fs.FS, name string) (*Script, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Load("read script "+name, err)
	}

	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.ParseFailed("script "+name, err)
	}
	if s.SourceFile == "" {
		s.SourceFile = strings.TrimSuffix(path.Base(name), ".json") + ".wast"
	}
	s.fsys = fsys
	s.dir = path.Dir(name)
	return &s, nil
}

// Source returns the base name of the .wast file the script came from.
func (s *Script) Source() string {
	return path.Base(s.SourceFile)
}

// Loc returns the "<source>:<line>" location of c.
func (s *Script) Loc(c Command) string {
	return s.Source() + ":" + strconv.Itoa(c.Line)
}

// ReadModule reads a module file referenced by a command.
func (s *Script) ReadModule(filename string) ([]byte, error) {
	if s.fsys == nil {
		return nil, errors.Load("script has no file system", nil)
	}
	data, err := fs.ReadFile(s.fsys, path.Join(s.dir, filename))
	if err != nil {
		return nil, errors.Load("read module "+filename, err)
	}
	return data, nil
}

// Harness converts an argument to a harness value.
func (v ValueSpec) Harness() (harness.Value, error) {
	switch v.Type {
	case "i32":
		bits, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return harness.Value{}, v.parseErr(err)
		}
		return harness.Value{Type: api.ValueTypeI32, Bits: bits}, nil
	case "i64":
		bits, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return harness.Value{}, v.parseErr(err)
		}
		return harness.I64(int64(bits)), nil
	case "f32":
		if v.isNaNPattern() {
			return harness.F32Bits(math.Float32bits(float32(math.NaN()))), nil
		}
		bits, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return harness.Value{}, v.parseErr(err)
		}
		return harness.F32Bits(uint32(bits)), nil
	case "f64":
		if v.isNaNPattern() {
			return harness.F64Bits(math.Float64bits(math.NaN())), nil
		}
		bits, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return harness.Value{}, v.parseErr(err)
		}
		return harness.F64Bits(bits), nil
	case "externref":
		if v.Value == "null" {
			return harness.NullExternRef(), nil
		}
		n, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return harness.Value{}, v.parseErr(err)
		}
		return harness.ExternRef(n), nil
	case "funcref":
		// Non-null funcrefs depend on the host and cannot be written down.
		if v.Value == "null" {
			return harness.NullFuncRef(), nil
		}
		return harness.Value{}, errors.Unsupported(errors.PhaseParse, "non-null funcref value "+v.Value)
	default:
		return harness.Value{}, errors.Unsupported(errors.PhaseParse, "value type "+v.Type)
	}
}

// Expectation converts an expected result. NaN patterns match any NaN of
// the type.
func (v ValueSpec) Expectation() (harness.Expectation, error) {
	t, ok := floatType(v.Type)
	switch {
	case ok && v.Value == "nan:canonical":
		return harness.CanonicalNaN(t), nil
	case ok && v.Value == "nan:arithmetic":
		return harness.ArithmeticNaN(t), nil
	}
	val, err := v.Harness()
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (v ValueSpec) isNaNPattern() bool {
	return strings.Contains(v.Value, "nan")
}

func (v ValueSpec) parseErr(cause error) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Detail("%s value %q", v.Type, v.Value).Cause(cause).Build()
}

func floatType(name string) (api.ValueType, bool) {
	switch name {
	case "f32":
		return api.ValueTypeF32, true
	case "f64":
		return api.ValueTypeF64, true
	default:
		return 0, false
	}
}

func (v ValueSpec) String() string {
	if e, err := v.Expectation(); err == nil {
		return e.String()
	}
	return v.Type + ":" + v.Value
}
