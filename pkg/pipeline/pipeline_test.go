package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ladderworks/ladderkit/pkg/cache"
	"github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/ladder"
	"github.com/ladderworks/ladderkit/pkg/layout"
)

func testDocument() *ladder.Document {
	return &ladder.Document{
		Name: "MainRoutine",
		Rungs: []ladder.RungDoc{
			{Number: 0, Text: "XIC(Start)[XIC(Jog),XIO(Stop)]OTE(Motor)", Comment: "start circuit"},
			{Number: 1, Text: "XIC(Motor)OTE(RunLamp)"},
		},
	}
}

func writeTestDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routine.json")
	if err := ladder.WriteFile(testDocument(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"dot", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Document: testDocument()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if got := opts.Formats; len(got) != 1 || got[0] != FormatSVG {
		t.Errorf("default formats = %v, want [svg]", got)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("default scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Config != layout.DefaultConfig() {
		t.Error("zero config should default to layout.DefaultConfig")
	}

	var empty Options
	if err := empty.ValidateAndSetDefaults(); err == nil {
		t.Error("options without input or document should fail validation")
	}
}

func TestExecute(t *testing.T) {
	path := writeTestDocument(t)
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Input:   path,
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Document.Name != "MainRoutine" {
		t.Errorf("document name = %q", result.Document.Name)
	}
	if result.Stats.RungCount != 2 {
		t.Errorf("rung count = %d, want 2", result.Stats.RungCount)
	}
	if result.DocHash == "" {
		t.Error("DocHash should be set")
	}
	if len(result.Layout.Rungs) != 2 {
		t.Errorf("layout has %d rungs, want 2", len(result.Layout.Rungs))
	}
	if !bytes.Contains(result.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing <svg element")
	}
	if !bytes.Contains(result.Artifacts["json"], []byte("MainRoutine")) {
		t.Error("json artifact missing routine name")
	}
	if result.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	path := writeTestDocument(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{Input: path, Formats: []string{"svg"}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the cache.
	refreshed, err := runner.Execute(context.Background(), Options{
		Input: path, Formats: []string{"svg"}, Refresh: true,
	})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh run should not report a cache hit")
	}
}

func TestExecuteConfigChangesKey(t *testing.T) {
	path := writeTestDocument(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	if _, err := runner.Execute(context.Background(), Options{Input: path}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wide := layout.DefaultConfig()
	wide.FrameWidth = 1200
	result, err := runner.Execute(context.Background(), Options{Input: path, Config: wide})
	if err != nil {
		t.Fatalf("Execute with config: %v", err)
	}
	if result.CacheInfo.RenderHit {
		t.Error("different config must not reuse cached artifacts")
	}
}

func TestExecuteMissingFile(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		Input: filepath.Join(t.TempDir(), "missing.json"),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"name":"X","rungs":[{"text":"XIC(A)]"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Input: path})
	if !errors.Is(err, errors.ErrCodeInvalidRoutine) {
		t.Errorf("error = %v, want INVALID_ROUTINE", err)
	}
}

func TestRoutineDOT(t *testing.T) {
	doc := testDocument()
	rt, err := doc.Routine()
	if err != nil {
		t.Fatalf("Routine: %v", err)
	}
	dot := routineDOT(rt)
	if !bytes.Contains([]byte(dot), []byte("digraph branches")) {
		t.Error("dot output missing digraph header")
	}
}
