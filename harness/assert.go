package harness

import (
	"context"

	"github.com/wippyai/wasm-spectest/errors"
)

// Action is a deferred invocation or export read.
type Action func(ctx context.Context) ([]Value, error)

// Invoke defers a call of the exported function name.
func (h *Harness) Invoke(inst *Instance, name string, args ...any) Action {
	return func(ctx context.Context) ([]Value, error) {
		return h.Call(ctx, inst, name, args...)
	}
}

// Read defers a read of the exported global name.
func (h *Harness) Read(inst *Instance, name string) Action {
	return func(context.Context) ([]Value, error) {
		v, err := h.Global(inst, name)
		if err != nil {
			return nil, err
		}
		return []Value{v}, nil
	}
}

// AssertMalformed succeeds when construction fails with a decode error.
func (h *Harness) AssertMalformed(ctx context.Context, wasmBytes []byte) error {
	_, err := h.Module(ctx, wasmBytes, false)
	if errors.HasKind(err, errors.KindCompile) {
		return nil
	}
	return errors.Assertion("Wasm decoding failure expected", err)
}

// AssertInvalid succeeds when construction fails with a validation error.
func (h *Harness) AssertInvalid(ctx context.Context, wasmBytes []byte) error {
	_, err := h.Module(ctx, wasmBytes, false)
	if errors.HasKind(err, errors.KindCompile) {
		return nil
	}
	return errors.Assertion("Wasm validation failure expected", err)
}

// AssertUnlinkable succeeds when a valid module fails to link against the
// registry. Construction failures propagate unchanged.
func (h *Harness) AssertUnlinkable(ctx context.Context, wasmBytes []byte) error {
	mod, err := h.Module(ctx, wasmBytes, true)
	if err != nil {
		return err
	}
	_, err = h.instantiate(ctx, mod, nil)
	if errors.HasKind(err, errors.KindLink) {
		return nil
	}
	return errors.Assertion("Wasm linking failure expected", err)
}

// AssertUninstantiable succeeds when a valid module links but traps during
// start-up.
func (h *Harness) AssertUninstantiable(ctx context.Context, wasmBytes []byte) error {
	mod, err := h.Module(ctx, wasmBytes, true)
	if err != nil {
		return err
	}
	_, err = h.instantiate(ctx, mod, nil)
	if errors.HasKind(err, errors.KindTrap) {
		return nil
	}
	return errors.Assertion("Wasm trap expected", err)
}

// AssertTrap succeeds when action traps.
func (h *Harness) AssertTrap(ctx context.Context, action Action) error {
	_, err := action(ctx)
	if errors.HasKind(err, errors.KindTrap) {
		return nil
	}
	return errors.Assertion("Wasm trap expected", err)
}

// AssertExhaustion succeeds when action exhausts the call stack.
func (h *Harness) AssertExhaustion(ctx context.Context, action Action) error {
	_, err := action(ctx)
	if errors.HasKind(err, errors.KindExhaustion) {
		return nil
	}
	return errors.Assertion("Wasm resource exhaustion expected", err)
}

// AssertReturn succeeds when action returns results matching expected
// position by position. Values compare under same-value semantics.
func (h *Harness) AssertReturn(ctx context.Context, action Action, expected ...Expectation) error {
	actual, err := action(ctx)
	if err != nil {
		return err
	}
	if len(actual) != len(expected) {
		return errors.Mismatch(formatValues(expected), formatValues(actual))
	}
	for i, want := range expected {
		if !want.Match(actual[i]) {
			return errors.Mismatch(want.String(), actual[i].String())
		}
	}
	return nil
}

// AssertReturnCanonicalNaN succeeds when action returns a single NaN.
func (h *Harness) AssertReturnCanonicalNaN(ctx context.Context, action Action) error {
	return h.assertNaN(ctx, action)
}

// AssertReturnArithmeticNaN succeeds when action returns a single NaN.
func (h *Harness) AssertReturnArithmeticNaN(ctx context.Context, action Action) error {
	return h.assertNaN(ctx, action)
}

func (h *Harness) assertNaN(ctx context.Context, action Action) error {
	actual, err := action(ctx)
	if err != nil {
		return err
	}
	if len(actual) != 1 || !actual[0].IsNaN() {
		got := formatValues(actual)
		return errors.New(errors.PhaseAssert, errors.KindAssertion).
			Detail("Wasm return value NaN expected, got %s", got).
			Expected("NaN", got).
			Build()
	}
	return nil
}

// Run executes action, propagating any failure.
func (h *Harness) Run(ctx context.Context, action Action) error {
	_, err := action(ctx)
	return err
}
