package inputs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// supportedExtensions are the volume formats the batch enumerator accepts.
// Matching is case-sensitive and includes the leading dot.
var supportedExtensions = map[string]struct{}{
	".klb": {},
	".h5":  {},
	".tif": {},
	".npy": {},
}

// SupportedExtension reports whether ext is one of the four volume formats.
func SupportedExtension(ext string) bool {
	_, ok := supportedExtensions[ext]
	return ok
}

// Enumerate resolves path to the ordered list of volume files to process.
//
// A single file is returned as-is, whatever its extension; directory trees
// are walked recursively and filtered to the supported formats. Directory
// results are sorted by full path so repeated runs visit files in the same
// order regardless of filesystem traversal order.
func Enumerate(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input path: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if SupportedExtension(filepath.Ext(entry)) {
			files = append(files, entry)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk input directory: %w", walkErr)
	}

	sort.Strings(files)
	return files, nil
}
