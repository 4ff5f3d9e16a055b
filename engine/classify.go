package engine

import (
	stderrors "errors"
	"strings"

	"github.com/tetratelabs/wazero/sys"

	"github.com/wippyai/wasm-spectest/errors"
)

const wasmErrorPrefix = "wasm error: "

// trapReason extracts the reason wazero attaches to runtime errors, e.g.
// "out of bounds memory access" from
// "wasm error: out of bounds memory access\nwasm stack trace: ...".
func trapReason(err error) string {
	msg := err.Error()
	i := strings.Index(msg, wasmErrorPrefix)
	if i < 0 {
		return ""
	}
	reason := msg[i+len(wasmErrorPrefix):]
	if j := strings.IndexByte(reason, '\n'); j >= 0 {
		reason = reason[:j]
	}
	return strings.TrimSpace(reason)
}

// errorReason returns the first line of err's message without the
// wasm error prefix. Runtimes that report stack overflow without the
// prefix still yield the bare reason.
func errorReason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, wasmErrorPrefix); i >= 0 {
		msg = msg[i+len(wasmErrorPrefix):]
	}
	if j := strings.IndexByte(msg, '\n'); j >= 0 {
		msg = msg[:j]
	}
	return strings.TrimSpace(msg)
}

// exhausted reports whether err carries the probed exhaustion reason,
// either as the whole message or after a wrapping prefix such as
// "start function[0] failed: ".
func (e *WazeroEngine) exhausted(err error) bool {
	if e.exhaustion == "" {
		return false
	}
	reason := errorReason(err)
	return reason == e.exhaustion || strings.HasSuffix(reason, ": "+e.exhaustion)
}

// Classify maps an error returned by the runtime during phase to the
// harness classification. Errors that already carry one are returned as is.
func (e *WazeroEngine) Classify(phase errors.Phase, err error) error {
	if err == nil {
		return nil
	}
	var classified *errors.Error
	if stderrors.As(err, &classified) {
		return err
	}
	switch phase {
	case errors.PhaseValidate, errors.PhaseCompile:
		return errors.Compile(err)
	case errors.PhaseInstantiate:
		return e.classifyInstantiate(err)
	default:
		return e.classifyRuntime(phase, err)
	}
}

func (e *WazeroEngine) classifyRuntime(phase errors.Phase, err error) *errors.Error {
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.Internal(phase, "execution terminated", err)
	}

	if e.exhausted(err) {
		return errors.Exhaustion(phase, e.exhaustion, err)
	}
	reason := trapReason(err)
	if reason == "" {
		// host function failures and other non-wasm errors
		return errors.Internal(phase, "call failed", err)
	}
	return errors.Trap(phase, reason, err)
}

// classifyInstantiate separates start-up traps from link failures. Traps
// come from the start function or from segment initialisation.
func (e *WazeroEngine) classifyInstantiate(err error) *errors.Error {
	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.Internal(errors.PhaseInstantiate, "execution terminated", err)
	}

	if e.exhausted(err) {
		return errors.Exhaustion(errors.PhaseInstantiate, e.exhaustion, err)
	}
	if reason := trapReason(err); reason != "" {
		return errors.Trap(errors.PhaseInstantiate, reason, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "out of bounds memory access"):
		return errors.Trap(errors.PhaseInstantiate, "out of bounds memory access", err)
	case strings.Contains(msg, "out of bounds table access"):
		return errors.Trap(errors.PhaseInstantiate, "out of bounds table access", err)
	}
	return errors.Link(err)
}
