package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/utils"
)

const sessionFileName = "session.json"

// FileStore keeps one directory per session holding a session.json.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := utils.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("ensure sessions dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the sessions directory.
func (f *FileStore) Root() string { return f.root }

func (f *FileStore) path(name string) string {
	return filepath.Join(f.root, name, sessionFileName)
}

func (f *FileStore) exists(name string) bool {
	_, err := os.Stat(f.path(name))
	return err == nil
}

func (f *FileStore) write(s *session.Session) error {
	if err := utils.EnsureDir(filepath.Join(f.root, s.Name)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(f.path(s.Name), data)
}

func (f *FileStore) Create(_ context.Context, s *session.Session) error {
	if err := utils.CheckName(s.Name); err != nil {
		return err
	}
	if f.exists(s.Name) {
		return fmt.Errorf("%q: %w", s.Name, ErrExists)
	}
	return f.write(s)
}

func (f *FileStore) Save(_ context.Context, s *session.Session) error {
	if err := utils.CheckName(s.Name); err != nil {
		return err
	}
	if !f.exists(s.Name) {
		return fmt.Errorf("%q: %w", s.Name, ErrNotFound)
	}
	return f.write(s)
}

func (f *FileStore) Get(_ context.Context, name string) (*session.Session, error) {
	if err := utils.CheckName(name); err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	b, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	return session.Decode(b)
}

// List skips directories that do not hold a readable session.
func (f *FileStore) List(ctx context.Context) ([]session.Summary, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var out []session.Summary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := f.Get(ctx, e.Name())
		if err != nil {
			continue
		}
		out = append(out, s.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FileStore) Delete(_ context.Context, name string) error {
	if err := utils.CheckName(name); err != nil || !f.exists(name) {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err := os.RemoveAll(filepath.Join(f.root, name)); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
