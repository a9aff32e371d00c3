// Package storage is the file-system inbox that annotation batch files are
// dropped into for import.
package storage

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrBadName is wrapped by every inbox path rejected by CheckPath or
// CheckName.
var ErrBadName = errors.New("storage: not a batch file name")

// FileMeta describes one batch file in the inbox.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for inbox file operations. Paths are slash
// separated, relative to the inbox root, and must pass CheckPath.
type Provider interface {
	// List returns metadata for every batch file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

var batchExts = []string{".yaml", ".yml", ".json"}

// IsBatchFile reports whether name has an importable extension.
func IsBatchFile(name string) bool {
	for _, ext := range batchExts {
		if len(name) > len(ext) && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// CheckPath reports whether p names a batch file inside the inbox. Every
// element must be visible, so temp files and hidden directories never match.
func CheckPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrBadName)
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return fmt.Errorf("%w: %s is outside the inbox", ErrBadName, p)
	}
	for _, elem := range strings.Split(p, "/") {
		if strings.HasPrefix(elem, ".") {
			return fmt.Errorf("%w: %s is hidden", ErrBadName, p)
		}
	}
	if !IsBatchFile(path.Base(p)) {
		return fmt.Errorf("%w: unsupported file type %s", ErrBadName, p)
	}
	return nil
}

// CheckName is CheckPath for a file at the inbox root.
func CheckName(name string) error {
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %s must not contain a directory", ErrBadName, name)
	}
	return CheckPath(name)
}
