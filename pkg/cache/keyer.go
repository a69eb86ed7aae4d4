package cache

import "strconv"

const (
	keyTypeArtifact = "artifact"
	keyTypeUser     = "user"
)

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey is the key of a rendered map, identified by the hash of
	// the source it was rendered from.
	ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string

	// UserKey is the key of a user's learning state.
	UserKey(userID string) string
}

// ArtifactKeyOpts holds the render settings that distinguish artifacts
// produced from the same source.
type ArtifactKeyOpts struct {
	Format     string
	UniqueOnly bool
	KeyNode    string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return hashKey(keyTypeArtifact, sourceHash, opts.Format, strconv.FormatBool(opts.UniqueOnly), opts.KeyNode)
}

// UserKey implements [Keyer].
func (DefaultKeyer) UserKey(userID string) string {
	return keyTypeUser + ":" + userID
}
