// Package ladder defines the canonical serialization format for routines
// and their layouts. Used for API responses, storage, caching, and
// cross-tool exchange.
//
// The format is human-readable and designed for round-trip fidelity:
// import → edit → export → re-import produces identical results. Rung
// logic travels as canonical rung text, so a document can never encode a
// sequence the model would reject without the importer noticing.
package ladder

import (
	"github.com/google/uuid"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
	"github.com/ladderworks/ladderkit/pkg/rung"
)

// Document is one routine in interchange form.
type Document struct {
	// ID is a stable identity for library storage; empty for ad-hoc files.
	ID    string            `json:"id,omitempty" bson:"_id,omitempty"`
	Name  string            `json:"name" bson:"name"`
	Rungs []RungDoc         `json:"rungs" bson:"rungs"`
	Meta  map[string]string `json:"meta,omitempty" bson:"meta,omitempty"`
}

// RungDoc is one rung: its canonical text plus comment.
type RungDoc struct {
	Number  int    `json:"number" bson:"number"`
	Text    string `json:"text" bson:"text"`
	Comment string `json:"comment,omitempty" bson:"comment,omitempty"`
}

// FromRoutine captures a routine as a document.
func FromRoutine(rt *rung.Routine) *Document {
	doc := &Document{Name: rt.Name}
	for i, r := range rt.Rungs() {
		doc.Rungs = append(doc.Rungs, RungDoc{
			Number:  i,
			Text:    r.Text(),
			Comment: r.Comment(),
		})
	}
	return doc
}

// EnsureID assigns a fresh UUID when the document has none and returns it.
func (d *Document) EnsureID() string {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return d.ID
}

// Routine reparses the document into a live routine.
func (d *Document) Routine() (*rung.Routine, error) {
	rt := rung.NewRoutine(d.Name)
	for _, rd := range d.Rungs {
		r, err := rung.ParseText(rd.Text)
		if err != nil {
			return nil, liberrors.Wrap(liberrors.ErrCodeInvalidRoutine, err,
				"rung %d of %s", rd.Number, d.Name)
		}
		r.SetComment(rd.Comment)
		rt.AddRung(r)
	}
	return rt, nil
}

// Validate checks that every rung's text parses.
func (d *Document) Validate() error {
	if d.Name == "" {
		return liberrors.New(liberrors.ErrCodeInvalidRoutine, "document has no routine name")
	}
	_, err := d.Routine()
	return err
}
