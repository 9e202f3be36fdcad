// Package commands implements the layerfang CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/layerfang/internal/config"
	"github.com/Sumatoshi-tech/layerfang/pkg/report"
	"github.com/Sumatoshi-tech/layerfang/pkg/scan"
)

// ErrViolationsFound signals a completed scan that found violations. The
// listing is already written when this is returned; main maps it to exit
// code 1 without an extra message.
var ErrViolationsFound = errors.New("layered-import violations found")

// CheckCommand holds the flags for the check command.
type CheckCommand struct {
	configPath   string
	packageName  string
	layers       []string
	forbid       []string
	includeTests bool
	workers      int
	format       string
	noColor      bool
	output       string
	debug        bool
}

// NewCheckCommand creates and configures the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &CheckCommand{}

	cobraCmd := &cobra.Command{
		Use:   "check <root>",
		Short: "Scan a package root for forbidden import directions",
		Long: `Scan a Python package root for imports that cross a forbidden layer edge.

Layers are top-level directories under the root. Imports are resolved
against the package name (default: basename of the root). Without explicit
--forbid rules the classic layered policy applies: domain must not import
dataset, adaptor or service; dataset and adaptor must not import each other
or service.

Examples:
  layerfang check src/mypkg
  layerfang check --forbid 'domain:adaptor,service' --forbid 'dataset:adaptor' src/mypkg
  layerfang check --layers core,io,api --package-name mypkg src/mypkg`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "Config file path (default: .layerfang.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVar(&cmd.packageName, "package-name", "", "Top-level package name (default: basename of root)")
	cobraCmd.Flags().StringSliceVar(&cmd.layers, "layers", nil, "Layer directory names under root")
	cobraCmd.Flags().StringArrayVar(&cmd.forbid, "forbid", nil, "Forbid layer-to-layer imports: 'from:to1,to2'. Repeatable")
	cobraCmd.Flags().BoolVar(&cmd.includeTests, "include-tests", false, "Include files under tests directories")
	cobraCmd.Flags().IntVar(&cmd.workers, "workers", config.DefaultWorkers, "Parallel file-analysis workers")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "Output format: text, table, json, or yaml")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().BoolVar(&cmd.debug, "debug", false, "Enable debug logging to stderr")

	return cobraCmd
}

// Run executes the check command.
func (c *CheckCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := c.buildConfig(cobraCmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(c.debug)

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	scanner := scan.New(scan.Options{
		Root:         cfg.Root,
		PackageName:  cfg.PackageName,
		Layers:       cfg.Layers,
		Policy:       policy,
		IncludeTests: cfg.IncludeTests,
		Workers:      cfg.Workers,
		Logger:       logger,
	})

	result, err := scanner.Run(cobraCmd.Context())
	if err != nil {
		return err
	}

	writer, closeWriter, err := c.openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeWriter()

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	renderErr := report.NewRenderer(format, cfg.NoColor || cfg.Output != "").Render(result, writer)
	if renderErr != nil {
		return renderErr
	}

	if !result.Clean() {
		return ErrViolationsFound
	}

	return nil
}

// buildConfig layers flag overrides on top of the loaded configuration and
// validates the merged result.
func (c *CheckCommand) buildConfig(cobraCmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Root = args[0]
	}

	flags := cobraCmd.Flags()

	if flags.Changed("package-name") {
		cfg.PackageName = c.packageName
	}

	if flags.Changed("layers") {
		cfg.Layers = c.layers
	}

	if flags.Changed("forbid") {
		cfg.Forbid = c.forbid
	}

	if flags.Changed("include-tests") {
		cfg.IncludeTests = c.includeTests
	}

	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}

	if flags.Changed("format") {
		cfg.Format = c.format
	}

	if flags.Changed("no-color") {
		cfg.NoColor = c.noColor
	}

	if flags.Changed("output") {
		cfg.Output = c.output
	}

	cfg.ResolvePackageName()

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

func (c *CheckCommand) openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
