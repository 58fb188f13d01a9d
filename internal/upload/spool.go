// Package upload spools request uploads to disk for the duration of one
// request. Spooled files carry generated names, never the client-supplied
// filename, so concurrent uploads cannot collide and path traversal is
// impossible by construction.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Spool writes uploads into a single directory it owns.
type Spool struct {
	dir string
}

// NewSpool creates the spool directory if needed. An empty dir places the
// spool under the OS temp directory.
func NewSpool(dir string) (*Spool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "docsight-uploads")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	return &Spool{dir: dir}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string {
	return s.dir
}

// Save streams r into a freshly named file and returns a handle to it.
// The caller owns the file and must call Cleanup on every exit path.
// A partial write is removed before the error is returned.
func (s *Spool) Save(r io.Reader) (*File, error) {
	path := filepath.Join(s.dir, uuid.NewString()+".pdf")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close spool file: %w", err)
	}
	return &File{path: path}, nil
}

// File is one spooled upload.
type File struct {
	path string
}

// Path returns the on-disk location of the spooled upload.
func (f *File) Path() string {
	return f.path
}

// Cleanup removes the spooled file. Safe to call more than once.
func (f *File) Cleanup() error {
	err := os.Remove(f.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
