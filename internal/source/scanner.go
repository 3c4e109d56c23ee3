package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanPath discovers scenario files. A file path is returned as-is when its
// extension is recognised; a directory is walked recursively.
func ScanPath(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		df, ok := classify(root)
		if !ok {
			return nil, nil
		}
		return []DiscoveredFile{df}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if df, ok := classify(path); ok {
			files = append(files, df)
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func classify(path string) (DiscoveredFile, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	var format string
	switch ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".jsonl":
		format = FormatJSONL
	default:
		return DiscoveredFile{}, false
	}
	base := filepath.Base(path)
	return DiscoveredFile{
		Path:   path,
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Format: format,
	}, true
}

// CountScenarios returns the total number of scenarios across results.
func CountScenarios(results []ParseResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Scenarios)
	}
	return n
}
