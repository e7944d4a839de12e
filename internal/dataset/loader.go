package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loader turns the bytes of one file format into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(filename string, content []byte, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no registered loader accepts the file name.
var ErrUnsupported = errors.New("unsupported dataset format")

// LoadFile reads path and decodes it with the first loader that accepts its name.
func LoadFile(path string, opt Options) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Decode(filepath.Base(path), data, opt)
}

// Decode picks a loader by filename, which lets uploads skip the filesystem.
func Decode(filename string, content []byte, opt Options) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(filename) {
			ds, err := l.Load(filename, content, opt)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", filename, err)
			}
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filename, ErrUnsupported)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
