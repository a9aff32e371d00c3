package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/vellum/internal/checksum"
)

const tempPattern = ".vellum-tmp-*"

// FS implements Provider on a local inbox directory.
type FS struct {
	root string // absolute inbox path
}

// NewFS creates a provider rooted at the given inbox directory, which must
// already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// batchPath maps a batch file path onto the file system.
func (f *FS) batchPath(rel string) (string, error) {
	if err := CheckPath(rel); err != nil {
		return "", err
	}
	return filepath.Join(f.root, filepath.FromSlash(rel)), nil
}

// List returns every batch file below dir ("" for the whole inbox). Hidden
// directories are not descended into.
func (f *FS) List(dir string) ([]FileMeta, error) {
	base := f.root
	if dir != "" {
		if !filepath.IsLocal(filepath.FromSlash(dir)) {
			return nil, fmt.Errorf("%w: %s is outside the inbox", ErrBadName, dir)
		}
		base = filepath.Join(f.root, filepath.FromSlash(dir))
	}

	var out []FileMeta
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if CheckPath(rel) != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, FileMeta{Path: rel, Checksum: checksum.Sum(data), UpdatedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a batch file.
func (f *FS) Read(rel string) ([]byte, error) {
	p, err := f.batchPath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// Write stores a batch file. The content lands in a hidden temp file first
// and is renamed into place, so the watcher only ever sees complete batches.
func (f *FS) Write(rel string, content []byte) (err error) {
	p, err := f.batchPath(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write %s: %w", rel, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync %s: %w", rel, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", rel, err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("storage: rename %s: %w", rel, err)
	}
	return nil
}

// Delete removes a batch file.
func (f *FS) Delete(rel string) error {
	p, err := f.batchPath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("storage: delete %s: %w", rel, err)
	}
	return nil
}
