// Command spectest runs WebAssembly conformance scripts against wazero.
//
// Usage:
//
//	spectest run [--metrics-file f] <script.json>...
//	spectest inspect <file.wasm>
//	spectest explore <file.wasm>
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
