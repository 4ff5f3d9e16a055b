// Package errors provides structured error types for the conformance harness.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Kind doubles as the tagged classification that assertions match
// on: compile, link, trap, exhaustion and assertion are the outcomes a test
// step can expect; every other kind is a harness-level failure.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAssert, errors.KindAssertion).
//		Loc("bulk.wast:27").
//		Detail("Wasm trap expected").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Trap(errors.PhaseInvoke, "out of bounds memory access", cause)
//	err := errors.Mismatch("i32:1", "i32:0")
//
// KindOf extracts the classification through any amount of wrapping:
//
//	if errors.KindOf(err) == errors.KindLink { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
