package dataset

import (
	"os"
	"path/filepath"

	"github.com/kuandriy/vocabtree/internal/descriptor"
)

// FileDataset is a minimal file-backed Dataset: every image lives under
// Root, identified by a sequential ID assigned at scan time.
type FileDataset struct {
	Root   string
	images []Image
	byID   map[uint64]Image
}

// NewFileDataset builds a FileDataset whose images are the given relative
// paths (directories, one per image, each expected to contain a
// "descriptors" file), assigned sequential IDs in the order given.
func NewFileDataset(root string, relativePaths []string) *FileDataset {
	ds := &FileDataset{Root: root, byID: make(map[uint64]Image, len(relativePaths))}
	for i, p := range relativePaths {
		img := Image{ID: uint64(i), Path: p}
		ds.images = append(ds.images, img)
		ds.byID[img.ID] = img
	}
	return ds
}

func (ds *FileDataset) Image(id uint64) (Image, bool) {
	img, ok := ds.byID[id]
	return img, ok
}

func (ds *FileDataset) Location(relativePath string) string {
	return filepath.Join(ds.Root, relativePath)
}

func (ds *FileDataset) Images() []Image {
	out := make([]Image, len(ds.images))
	copy(out, ds.images)
	return out
}

// FileLoader reads descriptor matrices straight off disk using the
// descriptor package's headered binary codec.
type FileLoader struct{}

func (FileLoader) Load(absolutePath string) (descriptor.Matrix, error) {
	m, err := descriptor.LoadFile(absolutePath)
	if err != nil {
		if os.IsNotExist(err) {
			return descriptor.Matrix{}, ErrNotFound
		}
		return descriptor.Matrix{}, err
	}
	return m, nil
}
