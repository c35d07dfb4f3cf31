package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/pipeline"
)

// layoutCommand creates the layout command for computing rung geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "layout [routine.json]",
		Short: "Compute rung geometry from a routine document",
		Long: `Compute rung geometry from a routine document.

The layout command takes a routine document and computes element
coordinates, branch rails, and wire segments for every rung. The output
is a layout JSON file (same format as 'render -f json').

Geometry defaults can be overridden with a TOML config file via --config.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return c.runLayout(cmd, args[0], cfg, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "geometry config file (TOML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout loads the routine, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, cfg layout.Config, output string, noCache bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:   input,
		Config:  cfg,
		Formats: []string{pipeline.FormatJSON},
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.RungCount, result.Layout.Height, result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Render", "ladderkit render "+input)

	return nil
}

// loadConfig resolves the geometry config, defaulting when no path is given.
func loadConfig(path string) (layout.Config, error) {
	if path == "" {
		return layout.DefaultConfig(), nil
	}
	return layout.LoadConfig(path)
}
