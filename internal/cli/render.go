package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output file path (or base path for multiple formats)
	configPath string  // geometry config file (TOML)
	scale      float64 // raster scale factor for PNG
	title      string  // diagram title (defaults to routine name)
	noCache    bool    // disable artifact caching
	refresh    bool    // bypass cached artifacts
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [routine.json]",
		Short: "Render a routine document as a ladder diagram",
		Long: `Render a routine document as a ladder diagram.

Supported formats are svg (default), png, json (raw geometry), and dot
(branch structure for Graphviz). Multiple formats can be rendered in one
run with a comma-separated --format list.

Rendered artifacts are cached locally keyed by document content and
geometry config; use --refresh to force re-rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "geometry config file (TOML)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor for png output")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title (default: routine name)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached artifacts")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(cmd *cobra.Command, input string, formats []string, opts *renderOpts) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:   input,
		Config:  cfg,
		Formats: formats,
		Scale:   opts.scale,
		Title:   opts.title,
		Refresh: opts.refresh,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Rendered %s", result.Document.Name)
	for _, format := range formats {
		path := outputPath(input, opts.output, format, len(formats) > 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.RungCount, result.Layout.Height, result.CacheInfo.RenderHit)

	return nil
}

// outputPath determines the output file for a format. With multiple
// formats the explicit output acts as a base path and each format gets
// its own extension.
func outputPath(input, output, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	return base + "." + format
}
