// Package cache provides byte-level caching for layout and render
// artifacts, with file, Redis, and null backends. Laying out a routine is
// cheap; rasterizing it is not, so the pipeline caches rendered artifacts
// keyed by content hashes and reuses them when neither the document nor
// the geometry config changed.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cache tier. Documents come from user files and go
// stale quickly; layouts and artifacts are pure functions of their
// inputs and can live longer.
const (
	TTLDocument = 1 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts captures everything besides the document that changes a
// computed layout.
type LayoutKeyOpts struct {
	ConfigHash string
}

// ArtifactKeyOpts captures everything besides the layout that changes a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer generates cache keys for the pipeline's stages.
type Keyer interface {
	// DocumentKey keys a parsed routine document by its content hash.
	DocumentKey(name, contentHash string) string

	// LayoutKey keys a computed layout by document hash and config.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout hash and format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into stable, collision-resistant keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey generates a key for document caching.
func (k *DefaultKeyer) DocumentKey(name, contentHash string) string {
	return hashKey("doc", name, contentHash)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts.ConfigHash)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format, opts.Scale)
}

var _ Keyer = (*DefaultKeyer)(nil)
