package library

import (
	"context"
	"errors"
	"testing"

	"github.com/ladderworks/ladderkit/pkg/ladder"
)

func testDoc(name string) *ladder.Document {
	return &ladder.Document{
		Name: name,
		Rungs: []ladder.RungDoc{
			{Number: 0, Text: "XIC(Start)OTE(Motor)"},
			{Number: 1, Text: "XIC(Motor)OTE(Lamp)"},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close(ctx)

	id, err := s.Put(ctx, testDoc("Main"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if id == "" {
		t.Fatal("Put() assigned no id")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "Main" || len(got.Rungs) != 2 {
		t.Errorf("Get() = %+v", got)
	}
	if got.ID != id {
		t.Errorf("Get() id = %q, want %q", got.ID, id)
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Put(ctx, testDoc("Main")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, testDoc("Conveyor")); err != nil {
		t.Fatal(err)
	}

	summaries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List() returned %d documents, want 2", len(summaries))
	}
	for _, sum := range summaries {
		if sum.ID == "" || sum.Rungs != 2 {
			t.Errorf("summary %+v incomplete", sum)
		}
	}
}

func TestFileStorePutKeepsID(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc("Main")
	id, err := s.Put(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	doc.Rungs = doc.Rungs[:1]
	id2, err := s.Put(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id {
		t.Errorf("second Put() id = %q, want %q", id2, id)
	}

	got, _ := s.Get(ctx, id)
	if len(got.Rungs) != 1 {
		t.Errorf("update not persisted: %d rungs", len(got.Rungs))
	}
}

func TestFileStoreMissing(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	id, err := s.Put(ctx, testDoc("Main"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
