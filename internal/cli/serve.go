package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/layout"
	"github.com/ladderworks/ladderkit/pkg/pipeline"
)

const previewPage = `<!DOCTYPE html>
<html>
<head>
<title>ladderkit preview</title>
<meta http-equiv="refresh" content="2">
<style>body { background: #fafafa; margin: 24px; }</style>
</head>
<body>
<img src="/diagram.svg" alt="ladder diagram">
</body>
</html>
`

// serveCommand creates the serve command for a live diagram preview.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve [routine.json]",
		Short: "Serve a live diagram preview over HTTP",
		Long: `Serve a live diagram preview over HTTP.

The routine document is re-read on every request, so edits to the file
show up on the next browser refresh. Endpoints:

  GET /             HTML preview page (auto-refreshing)
  GET /diagram.svg  rendered SVG
  GET /diagram.png  rendered PNG
  GET /layout.json  raw rung geometry
  GET /locate       hit test, e.g. /locate?x=120&y=45`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return c.runServe(cmd, args[0], cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:7474", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "geometry config file (TOML)")

	return cmd
}

type previewServer struct {
	runner *pipeline.Runner
	input  string
	cfg    layout.Config
}

func (c *CLI) runServe(cmd *cobra.Command, input string, cfg layout.Config, addr string) error {
	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ps := &previewServer{runner: runner, input: input, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", ps.handleIndex)
	r.Get("/diagram.svg", ps.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/diagram.png", ps.handleArtifact(pipeline.FormatPNG, "image/png"))
	r.Get("/layout.json", ps.handleArtifact(pipeline.FormatJSON, "application/json"))
	r.Get("/locate", ps.handleLocate)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	printSuccess("Preview server running")
	printDetail("http://%s", addr)

	go func() {
		<-cmd.Context().Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// execute runs the pipeline for the watched document.
func (ps *previewServer) execute(r *http.Request, formats ...string) (*pipeline.Result, error) {
	return ps.runner.Execute(r.Context(), pipeline.Options{
		Input:   ps.input,
		Config:  ps.cfg,
		Formats: formats,
		Logger:  loggerFromContext(r.Context()),
	})
}

func (ps *previewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(previewPage))
}

func (ps *previewServer) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := ps.execute(r, format)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(result.Artifacts[format])
	}
}

// handleLocate maps a coordinate to a rung and branch context.
func (ps *previewServer) handleLocate(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "x and y query parameters must be integers"))
		return
	}

	result, err := ps.execute(r, pipeline.FormatJSON)
	if err != nil {
		writeError(w, err)
		return
	}

	target, err := layout.Locate(result.Layout, x, y)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(target)
}

// writeError maps error codes to HTTP statuses and emits a JSON body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeFileNotFound, errors.ErrCodeNotFound, errors.ErrCodeRoutineNotFound,
		errors.ErrCodeNoRungAtCoordinate:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRoutine, errors.ErrCodeInvalidRung,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidInsertionPoint:
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
