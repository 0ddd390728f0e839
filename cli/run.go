package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowengine/flowengine/engerr"
	"github.com/flowengine/flowengine/graphdef"
	"github.com/flowengine/flowengine/registry"
	"github.com/flowengine/flowengine/scheduler"
	engsignal "github.com/flowengine/flowengine/signal"
	"github.com/flowengine/flowengine/telemetry"
)

// RunOption customizes NewRunCmd/NewRootCmd beyond their required registry.
type RunOption func(*runOptions)

type runOptions struct {
	handler scheduler.EventHandler
}

// WithEventHandler attaches an observer (e.g. a telemetry.Provider's
// Handler) to every run executed by this command.
func WithEventHandler(h scheduler.EventHandler) RunOption {
	return func(o *runOptions) { o.handler = h }
}

// NewRunCmd creates the "run" subcommand: headless execution of a
// persisted graph file (spec §6's "--no-gui" + "--graph-json" surface).
func NewRunCmd(reg *registry.Registry, opts ...RunOption) *cobra.Command {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a graph file headlessly to completion or until signalled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, reg, o.handler)
		},
	}

	cmd.Flags().String("graph-json", "", "Path to the graph definition to run (required)")
	cmd.Flags().String("save-graph-json", "", "Write the validated graph back out to this path on exit")
	cmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP collector endpoint for run telemetry (also read from OTEL_EXPORTER_OTLP_ENDPOINT); telemetry is off when neither is set")
	_ = cmd.MarkFlagRequired("graph-json")

	return cmd
}

func runHeadless(cmd *cobra.Command, reg *registry.Registry, handler scheduler.EventHandler) error {
	graphPath, _ := cmd.Flags().GetString("graph-json")
	savePath, _ := cmd.Flags().GetString("save-graph-json")
	otlpFlag, _ := cmd.Flags().GetString("otlp-endpoint")
	out := cmd.ErrOrStderr()

	if endpoint := telemetry.ResolveEndpoint(otlpFlag, false); endpoint != "" {
		provider, err := telemetry.NewProvider(cmd.Context(), endpoint)
		if err != nil {
			fmt.Fprintf(out, "warning: telemetry disabled: %v\n", err)
		} else {
			handler = combineHandlers(handler, provider.Handler())
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := provider.Shutdown(ctx); err != nil {
					fmt.Fprintf(out, "warning: telemetry shutdown failed: %v\n", err)
				}
			}()
		}
	}

	data, err := os.ReadFile(graphPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(ExitFileNotFound, "file not found: %s", graphPath)
		}
		return exitError(ExitIOErr, "reading %s: %v", graphPath, err)
	}

	def, err := graphdef.Parse(data)
	if err != nil {
		return exitError(ExitDefinitionErr, "%v", err)
	}

	g, defaults, err := reg.Assemble(def)
	if err != nil {
		return exitError(classifyErr(err), "%v", err)
	}

	stop := engsignal.New()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go watchStopSignal(sigCh, stop)

	sched := scheduler.New(g, defaults, stop, scheduler.Config{Handler: handler})
	runErr := sched.Run(context.Background())

	for _, cleanupErr := range sched.CleanupErrors() {
		fmt.Fprintln(out, cleanupErr)
	}

	if savePath != "" {
		if encodeErr := saveDefinition(def, savePath); encodeErr != nil {
			fmt.Fprintf(out, "warning: could not save graph to %s: %v\n", savePath, encodeErr)
		}
	}

	if runErr != nil {
		return exitError(classifyErr(runErr), "%v", runErr)
	}
	return nil
}

// watchStopSignal sets stop on the first signal received; a second signal
// terminates the process immediately (spec §6: "a second signal terminates
// immediately").
func watchStopSignal(sigCh <-chan os.Signal, stop *engsignal.Stop) {
	if _, ok := <-sigCh; !ok {
		return
	}
	stop.Set()
	if _, ok := <-sigCh; ok {
		os.Exit(1)
	}
}

// combineHandlers fans events out to both handlers, skipping either when
// nil so a caller-supplied handler and run-local telemetry can coexist.
func combineHandlers(a, b scheduler.EventHandler) scheduler.EventHandler {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return scheduler.EventHandlerFunc(func(e scheduler.Event) {
			a.Handle(e)
			b.Handle(e)
		})
	}
}

func saveDefinition(def *graphdef.Definition, path string) error {
	data, err := graphdef.Marshal(def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// classifyErr maps an engine error kind to its exit code (spec §6/§7).
func classifyErr(err error) int {
	var defErr *engerr.DefinitionError
	var valErr *engerr.ValidationError
	switch {
	case errors.As(err, &defErr):
		return ExitDefinitionErr
	case errors.As(err, &valErr):
		return ExitValidationErr
	default:
		return ExitRuntimeErr
	}
}
