// Package library stores routine documents so teams can share them across
// editors. It defines a Store interface with two backends:
//   - file: JSON documents in a local directory, for CLI use
//   - mongo: a MongoDB collection, for multi-user deployments
//
// Documents are identified by UUIDs assigned on first save; names are for
// humans and not unique.
package library

import (
	"context"
	"errors"

	"github.com/ladderworks/ladderkit/pkg/ladder"
)

// Sentinel errors for library operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
)

// Summary is the listing view of a stored document.
type Summary struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Rungs int    `json:"rungs" bson:"rungs"`
}

// Store persists routine documents.
type Store interface {
	// Get retrieves a document by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*ladder.Document, error)

	// Put saves a document, assigning an id when it has none, and
	// returns the id.
	Put(ctx context.Context, doc *ladder.Document) (string, error)

	// List returns summaries of every stored document.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a document. Deleting a missing id returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
