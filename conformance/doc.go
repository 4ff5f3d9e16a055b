// Package conformance runs ported WebAssembly spec test scripts against the
// harness. The scripts live in the package tests as step tables, one per
// .wast file, with the module binaries embedded as string literals.
package conformance
