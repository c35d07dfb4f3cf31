package cli

import (
	"context"
	"os"

	"github.com/ladderworks/ladderkit/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(version, commit, date string) {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
}

// Execute runs the ladderkit CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(context.Background())
}
