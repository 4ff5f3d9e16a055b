// Package engine adapts wazero to the primitives a conformance harness
// needs from its host.
//
// # Architecture
//
// The engine package provides three main types:
//
//	WazeroEngine   - Owns a wazero runtime and the exhaustion classification
//	WazeroModule   - A compiled module, can create instances
//	WazeroInstance - A linked instance with callable exports
//
// # Host Primitives
//
//  1. WazeroEngine.Validate() answers valid or invalid and never panics
//  2. WazeroEngine.LoadModule() compiles, failing with KindCompile
//  3. WazeroModule.Instantiate() links against a Resolver, failing with
//     KindLink, or with KindTrap/KindExhaustion when start-up traps
//  4. WazeroInstance.Call() invokes an export, failing with KindTrap or
//     KindExhaustion
//  5. WazeroEngine.ExhaustionReason() is learned once, at construction, by
//     calling a function that recurses without bound
//
// # Import Resolution
//
// Instances are given unique internal names and are never looked up by
// name. Imports are resolved through the Resolver passed to Instantiate,
// installed with experimental.WithImportResolver:
//
//	inst, err := mod.Instantiate(ctx, func(ns string) api.Module {
//	    return registry[ns]
//	})
//
// # Classification
//
// wazero keeps its runtime error types internal, so classification reads
// the "wasm error: <reason>" text wazero attaches to traps. A trap whose
// reason equals the probed exhaustion reason is KindExhaustion.
package engine
