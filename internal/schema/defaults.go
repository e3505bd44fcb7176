package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"sync"
)

// Entity names shipped with the embedded defaults.
const (
	MaterialSample = "material-sample"
	Metadata       = "metadata"
)

//go:embed defaults/*.yaml
var defaultFiles embed.FS

var (
	defaultOnce   sync.Once
	defaultSchema Schema
	errDefault    error
)

// Default returns the embedded entity definitions. The returned map is a
// fresh copy; entity values are shared and must not be modified.
func Default() (Schema, error) {
	defaultOnce.Do(func() {
		defaultSchema, errDefault = loadFS(defaultFiles, "defaults")
	})

	if errDefault != nil {
		return nil, errDefault
	}

	return maps.Clone(defaultSchema), nil
}

// MustDefault is like Default but panics on error. The embedded files are
// covered by tests, so this only fails on a broken build.
func MustDefault() Schema {
	s, err := Default()
	if err != nil {
		panic(err)
	}

	return s
}

func loadFS(fsys fs.FS, dir string) (Schema, error) {
	files, err := fs.Glob(fsys, dir+"/*.yaml")
	if err != nil {
		return nil, err
	}

	out := Schema{}

	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", name, err)
		}

		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		maps.Copy(out, s)
	}

	return out, nil
}
