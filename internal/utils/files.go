package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// ErrInvalidName is returned for names that cannot double as a directory name.
var ErrInvalidName = errors.New("invalid name")

// CheckName rejects empty names, path separators and dot-only names so a
// session name maps to exactly one directory.
func CheckName(name string) error {
	n := strings.TrimSpace(name)
	switch {
	case n == "", n != name:
		return fmt.Errorf("%q: %w: empty or padded with spaces", name, ErrInvalidName)
	case strings.ContainsAny(n, `/\`):
		return fmt.Errorf("%q: %w: contains a path separator", name, ErrInvalidName)
	case strings.Trim(n, ".") == "":
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// NameFromPath derives a default session name from a file path ("data/q3.csv" -> "q3").
func NameFromPath(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
