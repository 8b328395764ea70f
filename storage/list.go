package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-sif/dataset/shard"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// ManifestName is the name of the optional file in a dataset root which lists its data files
const ManifestName = "_manifest.json"

// List returns the files making up the dataset at root. If root is a file, it is the only file.
// If root contains a manifest, the files it names are returned in manifest order. Otherwise root is
// walked and every file not beginning with "." or "_" is returned, in lexical order.
func List(fsys afero.Fs, root string) ([]shard.File, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []shard.File{{Path: root, Size: info.Size()}}, nil
	}
	manifest := filepath.Join(root, ManifestName)
	if exists, err := afero.Exists(fsys, manifest); err != nil {
		return nil, err
	} else if exists {
		return listManifest(fsys, root, manifest)
	}
	return walk(fsys, root)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func walk(fsys afero.Fs, root string) ([]shard.File, error) {
	var files []shard.File
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != root && isHidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, shard.File{Path: path, Size: info.Size()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// listManifest reads either {"files": ["a.parquet", ...]} or {"fragments": [{"path": "a.parquet"}, ...]}.
// Relative paths are resolved against root.
func listManifest(fsys afero.Fs, root string, manifest string) ([]shard.File, error) {
	data, err := afero.ReadFile(fsys, manifest)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("manifest %s is not valid JSON", manifest)
	}
	entries := gjson.GetBytes(data, "files")
	if !entries.Exists() {
		entries = gjson.GetBytes(data, "fragments.#.path")
	}
	if !entries.IsArray() {
		return nil, fmt.Errorf("manifest %s does not list any files", manifest)
	}
	var files []shard.File
	for _, entry := range entries.Array() {
		path := entry.String()
		if path == "" {
			return nil, fmt.Errorf("manifest %s contains an empty path", manifest)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		info, err := fsys.Stat(path)
		if err != nil {
			return nil, err
		}
		files = append(files, shard.File{Path: path, Size: info.Size()})
	}
	return files, nil
}
