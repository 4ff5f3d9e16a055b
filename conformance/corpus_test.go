package conformance

import (
	"context"
	"fmt"
	"testing"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/harness"
)

type op int

const (
	opModule  op = iota // instantiate wasm and bind it to name
	opInvoke            // call field, ignore results
	opReturn            // call field, compare results with want
	opTrap              // call field, expect a trap
	opInvalid           // wasm must fail validation
)

// Reasons a step of a pre-final script no longer holds.
const (
	refNull        = "ref.null without a heap type is no longer encodable"
	partialWrite   = "out of bounds bulk operations no longer write before trapping"
	pastEnd        = "zero-length accesses past the end now trap"
	droppedSegment = "dropped segments now act as empty instead of trapping"
)

type step struct {
	line int
	op   op

	// name is the binding created by opModule or the instance an action
	// targets. With wasm set on an action, a fresh instance is created
	// with imports bound to the named instance and field is called on it.
	name    string
	wasm    string
	imports string

	field string
	args  []any
	want  []harness.Expectation

	diverges string
}

type corpus struct {
	file  string
	steps []step
}

// run executes the steps in order and returns the first failure with its
// location. Unless strict is set, divergent steps are executed and logged
// but never fail.
func (c corpus) run(ctx context.Context, t *testing.T, h *harness.Harness, strict bool) error {
	t.Helper()
	named := make(map[string]*harness.Instance)

	for _, s := range c.steps {
		loc := fmt.Sprintf("%s:%d", c.file, s.line)
		err := s.exec(ctx, h, named)
		if s.diverges != "" && !strict {
			t.Logf("%s: divergent (%s): %v", loc, s.diverges, err)
			continue
		}
		if err != nil {
			return errors.WithLoc(err, loc)
		}
	}
	return nil
}

func (s step) exec(ctx context.Context, h *harness.Harness, named map[string]*harness.Instance) error {
	switch s.op {
	case opModule:
		inst, err := h.Instance(ctx, []byte(s.wasm), nil)
		if err != nil {
			return err
		}
		named[s.name] = inst
		return nil
	case opInvalid:
		return h.AssertInvalid(ctx, []byte(s.wasm))
	}

	inst, err := s.target(ctx, h, named)
	if err != nil {
		return err
	}
	act := h.Invoke(inst, s.field, s.args...)

	switch s.op {
	case opInvoke:
		return h.Run(ctx, act)
	case opReturn:
		return h.AssertReturn(ctx, act, s.want...)
	case opTrap:
		return h.AssertTrap(ctx, act)
	default:
		return errors.Unsupported(errors.PhaseInvoke, fmt.Sprintf("step op %d", s.op))
	}
}

func (s step) target(ctx context.Context, h *harness.Harness, named map[string]*harness.Instance) (*harness.Instance, error) {
	inst, ok := named[s.name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseInvoke, "module", s.name)
	}
	if s.wasm == "" {
		return inst, nil
	}
	return h.Instance(ctx, []byte(s.wasm), h.Exports(s.imports, inst))
}
