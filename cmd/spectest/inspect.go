package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/internal/wasmbin"
)

func newInspectCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.wasm>",
		Short: "List the imports and exports of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return newExitError(exitCommandError, "read module", err)
			}

			ctx := cmd.Context()
			e, err := engine.NewWazeroEngineWithConfig(ctx, root.config.EngineConfig())
			if err != nil {
				return newExitError(exitFailure, "create engine", err)
			}
			defer e.Close(ctx)

			mod, err := e.LoadModule(ctx, data)
			if err != nil {
				return newExitError(exitFailure, "compile "+args[0], err)
			}
			defer mod.Close(ctx)

			return writeInspect(cmd.OutOrStdout(), filepath.Base(args[0]), mod)
		},
	}
}

func writeInspect(w io.Writer, name string, mod *engine.WazeroModule) error {
	imports, err := mod.Imports()
	if err != nil {
		return err
	}
	exports := mod.Exports()
	funcs := mod.Compiled().ExportedFunctions()
	mems := mod.Compiled().ExportedMemories()

	fmt.Fprintf(w, "module %s\n", name)

	fmt.Fprintf(w, "\nimports (%d):\n", len(imports))
	for _, imp := range imports {
		fmt.Fprintf(w, "  %-7s %s.%s %s\n", imp.Kind, imp.Module, imp.Name, imp.Desc)
	}

	fmt.Fprintf(w, "\nexports (%d):\n", len(exports))
	for _, exp := range exports {
		desc := ""
		switch exp.Kind {
		case wasmbin.ExternFunc:
			if def, ok := funcs[exp.Name]; ok {
				desc = " " + signature(def.ParamTypes(), def.ResultTypes())
			}
		case wasmbin.ExternMemory:
			if def, ok := mems[exp.Name]; ok {
				desc = " " + pages(def)
			}
		}
		fmt.Fprintf(w, "  %-7s %s%s\n", exp.Kind, exp.Name, desc)
	}
	return nil
}

func signature(params, results []api.ValueType) string {
	return typeList(params) + " -> " + typeList(results)
}

func typeList(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = wasmbin.ValTypeName(t)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func pages(def api.MemoryDefinition) string {
	if hi, ok := def.Max(); ok {
		return fmt.Sprintf("%d..%d pages", def.Min(), hi)
	}
	return fmt.Sprintf("%d pages", def.Min())
}
