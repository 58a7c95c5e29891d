// Package dataset implements the vocabulary tree's external collaborators:
// Dataset, Image, and the descriptor loader. The core never reads a file
// path directly — it calls through these interfaces so the indexing and
// retrieval engine stays decoupled from where images and descriptors
// actually live.
package dataset

import (
	"errors"
	"path/filepath"

	"github.com/kuandriy/vocabtree/internal/descriptor"
)

// ErrNotFound is returned by a Loader when an image has no descriptor file.
// Callers in the core treat this as a recoverable, per-image condition: the
// image is skipped, not a training/search failure.
var ErrNotFound = errors.New("dataset: descriptor file not found")

// Image is the narrow per-image contract the core depends on.
type Image struct {
	ID   uint64
	Path string // relative path, resolved through Dataset.Location
}

// FeaturePath returns the relative path to this image's descriptor file.
func (img Image) FeaturePath() string {
	return filepath.Join(img.Path, "descriptors")
}

// Dataset supplies image lookup and relative-to-absolute path resolution.
type Dataset interface {
	Image(id uint64) (Image, bool)
	Location(relativePath string) string
	Images() []Image
}

// Loader reads a descriptor matrix for an image. Missing files return
// ErrNotFound; any other failure is a genuine I/O error.
type Loader interface {
	Load(absolutePath string) (descriptor.Matrix, error)
}
