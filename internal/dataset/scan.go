package dataset

import (
	"os"
	"path/filepath"
	"sort"
)

// ScanDirectories walks root one level deep and returns the relative name
// of every subdirectory containing a "descriptors" file, sorted for
// reproducible image-ID assignment by NewFileDataset.
func ScanDirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "descriptors")); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
