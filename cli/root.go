// Package cli wires the engine's headless CLI surface (spec §6) using
// cobra, grounded in the teacher's cli package: one NewXCmd constructor per
// subcommand, ExitError carrying a process exit code back to main.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flowengine/flowengine/registry"
)

// NewRootCmd builds the flowengine root command. With no subcommand it
// reports editor mode as unimplemented (spec §6: "no flags → editor mode";
// the GUI/editor is an explicit Non-goal of the core, §1).
func NewRootCmd(reg *registry.Registry, opts ...RunOption) *cobra.Command {
	root := &cobra.Command{
		Use:   "flowengine",
		Short: "Node-graph execution engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitError(ExitIOErr, "editor mode is not implemented by this binary; use `flowengine run --graph-json <path>`")
		},
	}

	root.AddCommand(NewRunCmd(reg, opts...))
	root.AddCommand(NewValidateCmd(reg))

	return root
}

// Execute runs root and returns the process exit code, unwrapping
// ExitError when RunE returns one and printing other errors as an
// unclassified runtime failure.
func Execute(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		root.PrintErrln(exitErr.Message)
		return exitErr.Code
	}

	root.PrintErrln(err)
	return ExitRuntimeErr
}
