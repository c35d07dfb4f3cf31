package observability

import (
	"context"
	"testing"
	"time"
)

type recordingEditorHooks struct {
	mutations int
	relayouts int
	cascades  int
}

func (r *recordingEditorHooks) OnMutation(context.Context, string, int, error)       { r.mutations++ }
func (r *recordingEditorHooks) OnRelayout(context.Context, int, int, time.Duration) { r.relayouts++ }
func (r *recordingEditorHooks) OnCascade(context.Context, int, int)                 { r.cascades++ }

func TestEditorHooksRegistration(t *testing.T) {
	rec := &recordingEditorHooks{}
	SetEditorHooks(rec)
	defer SetEditorHooks(nil)

	ctx := context.Background()
	Editor().OnMutation(ctx, "insert_instruction", 0, nil)
	Editor().OnRelayout(ctx, 0, 60, time.Millisecond)
	Editor().OnCascade(ctx, 0, 2)

	if rec.mutations != 1 || rec.relayouts != 1 || rec.cascades != 1 {
		t.Errorf("recorded %d/%d/%d events, want 1/1/1",
			rec.mutations, rec.relayouts, rec.cascades)
	}
}

func TestNilResetsToNoop(t *testing.T) {
	SetEditorHooks(&recordingEditorHooks{})
	SetEditorHooks(nil)

	// Must not panic.
	Editor().OnMutation(context.Background(), "remove_branch", 3, nil)

	if _, ok := Editor().(noopEditorHooks); !ok {
		t.Error("nil registration should restore the no-op hooks")
	}
}

func TestDefaultHooksAreNoop(t *testing.T) {
	ctx := context.Background()
	Pipeline().OnLoadStart(ctx, "routine.l5x")
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	Cache().OnCacheHit(ctx, "layout")
	Storage().OnQuery(ctx, "file", "list", time.Millisecond, nil)
}
