// Package cli implements the ladderkit command-line interface.
//
// This package provides commands for validating ladder routine documents,
// computing rung geometry, rendering routines as diagrams, serving a live
// preview, editing routines interactively, and managing the routine
// library and artifact cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - validate: Check a routine document for structural errors
//   - layout: Compute rung geometry and write it as JSON
//   - render: Generate SVG, PNG, JSON, or DOT diagrams
//   - serve: Serve a live diagram preview over HTTP
//   - edit: Edit a routine in an interactive terminal session
//   - library: Manage the saved routine library
//   - cache: Manage the rendered artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/buildinfo"
	"github.com/ladderworks/ladderkit/pkg/cache"
	"github.com/ladderworks/ladderkit/pkg/library"
	"github.com/ladderworks/ladderkit/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "ladderkit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "ladderkit",
		Short:        "Ladderkit renders and edits ladder logic routines",
		Long:         `Ladderkit is a CLI tool for working with relay ladder logic routines: it validates rung text, computes diagram geometry, renders routines as SVG, PNG, JSON, or DOT, and provides an interactive terminal editor.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv("LADDERKIT_REDIS_ADDR"); addr != "" {
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("LADDERKIT_REDIS_PASSWORD"),
		})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newLibrary opens the routine library store. With LADDERKIT_MONGO_URI set
// the library lives in MongoDB, otherwise in local files.
func newLibrary(ctx context.Context) (library.Store, error) {
	if uri := os.Getenv("LADDERKIT_MONGO_URI"); uri != "" {
		return library.NewMongoStore(ctx, library.MongoConfig{URI: uri})
	}
	return library.NewFileStore("")
}

// cacheDir returns the cache directory using XDG standard (~/.cache/ladderkit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
