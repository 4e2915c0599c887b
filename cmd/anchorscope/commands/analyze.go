// Package commands implements the anchorscope subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/anchorscope/anchorscope/internal/analyzers/structural"
	"github.com/anchorscope/anchorscope/internal/config"
	"github.com/anchorscope/anchorscope/internal/observability"
	"github.com/anchorscope/anchorscope/internal/report"
	"github.com/anchorscope/anchorscope/pkg/uast"
)

// Output format names.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const metricsReadHeaderTimeout = 5 * time.Second

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	configPath  string
	output      string
	format      string
	plot        string
	metricsAddr string
	workers     int
	noColor     bool
	verbose     bool
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &AnalyzeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Measure structural complexity of contract sources",
		Long: "Measure cyclomatic and cognitive complexity, statement counts, " +
			"and handler constraints across the given files or directories.",
		Args: cobra.MinimumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.configPath, "config", "c", "", "Config file path")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "Output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "Output format: text, json, or yaml")
	cobraCmd.Flags().StringVar(&cmd.plot, "plot", "", "Write an HTML complexity chart to the given file")
	cobraCmd.Flags().StringVar(&cmd.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	cobraCmd.Flags().IntVarP(&cmd.workers, "workers", "w", 0, "Parallel file workers (0 = NumCPU)")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")
	cobraCmd.Flags().BoolVarP(&cmd.verbose, "verbose", "v", false, "Verbose logging")

	return cobraCmd
}

// Run executes the analyze command.
func (c *AnalyzeCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	c.applyOverrides(cmd, cfg)

	logger := c.newLogger()

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	runMetrics, metricsServer, err := c.startMetrics(cfg, logger)
	if err != nil {
		return err
	}

	if metricsServer != nil {
		defer c.stopMetrics(metricsServer, logger)
	}

	workspace := structural.NewWorkspace(uast.NewParser(), structural.WorkspaceOptions{
		Workers: cfg.Workers,
		Logger:  logger,
		Metrics: runMetrics,
	})

	result, err := workspace.Run(cmd.Context(), ".", files)
	if err != nil {
		return err
	}

	return c.render(cfg, result)
}

// applyOverrides lets explicit flags win over the loaded config.
func (c *AnalyzeCommand) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("format") {
		cfg.Format = c.format
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = c.workers
	}

	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = c.metricsAddr
	}
}

func (c *AnalyzeCommand) newLogger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// startMetrics wires the Prometheus endpoint when configured. Returns nil
// metrics and server when metrics are disabled.
func (c *AnalyzeCommand) startMetrics(cfg *config.Config, logger *slog.Logger) (*observability.RunMetrics, *http.Server, error) {
	if cfg.MetricsAddr == "" {
		return nil, nil, nil
	}

	meter, handler, err := observability.NewPrometheusMeter()
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics: %w", err)
	}

	runMetrics, err := observability.NewRunMetrics(meter)
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	return runMetrics, server, nil
}

func (c *AnalyzeCommand) stopMetrics(server *http.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsReadHeaderTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}

func (c *AnalyzeCommand) render(cfg *config.Config, result *structural.Result) error {
	writer, closeWriter, err := c.outputWriter()
	if err != nil {
		return err
	}
	defer closeWriter()

	renderer := report.NewRenderer(cfg, c.noColor)

	switch cfg.Format {
	case FormatJSON:
		err = renderer.JSON(result, writer)
	case FormatYAML:
		err = renderer.YAML(result, writer)
	default:
		err = renderer.Text(result, writer)
	}

	if err != nil {
		return err
	}

	if c.plot == "" {
		return nil
	}

	plotFile, createErr := os.Create(c.plot)
	if createErr != nil {
		return fmt.Errorf("create plot file: %w", createErr)
	}
	defer plotFile.Close()

	return report.WritePlot(result, plotFile)
}

func (c *AnalyzeCommand) outputWriter() (io.Writer, func(), error) {
	if c.output == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(c.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { file.Close() }, nil
}

// collectFiles expands the argument list: files pass through, directories
// are walked for Rust sources. Paths come back relative to the CWD so the
// report stays readable.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		walkErr := filepath.WalkDir(arg, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !entry.IsDir() && filepath.Ext(path) == ".rs" {
				files = append(files, path)
			}

			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, walkErr)
		}
	}

	return files, nil
}
