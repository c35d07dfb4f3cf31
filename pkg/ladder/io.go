package ladder

import (
	"encoding/json"
	"io"
	"os"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
)

// ReadJSON decodes a routine document from r.
//
// The input must be a JSON object with a "name" and a "rungs" array:
//
//	{
//	  "name": "Main",
//	  "rungs": [{"number": 0, "text": "XIC(Start)OTE(Motor)"}]
//	}
//
// Every rung's text is parsed during import, so a malformed sequence is
// rejected here rather than surfacing later inside the layout engine.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeInvalidFormat, err, "decode routine document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteJSON encodes a document as indented JSON to w. The output can be
// re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return liberrors.Wrap(liberrors.ErrCodeInternal, err, "encode routine document")
	}
	return nil
}

// ReadFile loads a routine document from a file path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, liberrors.Wrap(liberrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, liberrors.Wrap(liberrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteFile writes a routine document to a file path.
func WriteFile(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return liberrors.Wrap(liberrors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}
