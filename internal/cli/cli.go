package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/vk/taskgrid/internal/workflow"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// AppFactory builds the application for a validated configuration.
type AppFactory func(outW io.Writer, cfg *app.Config) *app.App

type flags struct {
	configPaths     []string
	logLevel        string
	logFormat       string
	workers         int
	healthcheckPort int
	dotOutput       string
	snapshotOutput  string
}

// Execute parses args and runs the selected command.
func Execute(ctx context.Context, args []string, outW io.Writer, newApp AppFactory) error {
	root := NewRootCommand(outW, newApp)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(outW io.Writer, newApp AppFactory) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "taskgrid",
		Short: "Run workflows of tasks and record their call graph",
		Long: `taskgrid runs workflows built from Go tasks. Every call between tasks is
recorded in a call graph; static tasks declare the tasks they may call and
have that contract checked at runtime. A dry run explores the possible graph
without running any task body and renders it as Graphviz DOT.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringArrayVarP(&f.configPaths, "config", "c", nil, "Path to an .hcl file or a directory of .hcl files (repeatable).")
	pf.StringVar(&f.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error' (default info).")
	pf.StringVar(&f.logFormat, "log-format", "", "Log output format: 'text' or 'json' (default text).")
	pf.IntVar(&f.workers, "workers", 0, "Maximum number of map batches running at once (default 1).")
	pf.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	pf.StringVar(&f.dotOutput, "dot", "", "Write the Graphviz rendering to this file instead of stdout.")
	pf.StringVar(&f.snapshotOutput, "snapshot", "", "Write a YAML snapshot of the graph to this file.")

	root.AddCommand(
		runCommand(f, newApp, false),
		runCommand(f, newApp, true),
		listCommand(f, newApp),
		renderCommand(f),
	)
	return root
}

func runCommand(f *flags, newApp AppFactory, dryRun bool) *cobra.Command {
	use, short := "run <workflow>", "Run a workflow"
	if dryRun {
		use, short = "dry-run <workflow>", "Explore a workflow without running task bodies and render its graph"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.appConfig()
			if err != nil {
				return err
			}
			a := newApp(cmd.OutOrStdout(), cfg)
			return a.Run(cmd.Context(), args[0], dryRun)
		},
	}
}

func listCommand(f *flags, newApp AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered and configured workflows",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.appConfig()
			if err != nil {
				return err
			}
			newApp(cmd.OutOrStdout(), cfg).List(cmd.OutOrStdout())
			return nil
		},
	}
}

func renderCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "render <snapshot.yaml>",
		Short: "Render a saved graph snapshot as Graphviz DOT",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open snapshot: %w", err)
			}
			defer file.Close()

			snap, err := graph.ReadSnapshot(file)
			if err != nil {
				return err
			}
			g, err := graph.FromSnapshot(snap)
			if err != nil {
				return err
			}
			if f.dotOutput != "" {
				return workflow.DOTFile(f.dotOutput).Persist(cmd.Context(), g)
			}
			return g.WriteDOT(cmd.OutOrStdout())
		},
	}
}

// appConfig validates the flags into an app.Config.
func (f *flags) appConfig() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPaths:     f.configPaths,
		LogLevel:        f.logLevel,
		LogFormat:       f.logFormat,
		Workers:         f.workers,
		HealthcheckPort: f.healthcheckPort,
		DOTOutput:       f.dotOutput,
		SnapshotOutput:  f.snapshotOutput,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.", "config", cfg)
	return cfg, nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &ExitError{Code: 2, Message: fmt.Sprintf("%s: %v", cmd.CommandPath(), err)}
		}
		return nil
	}
}
