package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowengine/flowengine/graphdef"
	"github.com/flowengine/flowengine/registry"
	"github.com/flowengine/flowengine/validate"
)

// NewValidateCmd creates the "validate" subcommand: load and validate a
// graph file without executing it.
func NewValidateCmd(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a graph file without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, reg, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, reg *registry.Registry, path string) error {
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(ExitFileNotFound, "file not found: %s", path)
		}
		return exitError(ExitIOErr, "reading %s: %v", path, err)
	}

	def, err := graphdef.Parse(data)
	if err != nil {
		return exitError(ExitDefinitionErr, "%v", err)
	}

	g, defaults, err := reg.Assemble(def)
	if err != nil {
		return exitError(classifyErr(err), "%v", err)
	}

	if err := validate.Graph(g, defaults); err != nil {
		return exitError(classifyErr(err), "%v", err)
	}

	fmt.Fprintln(out, "graph is valid")
	return nil
}
