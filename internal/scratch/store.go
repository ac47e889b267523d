// Package scratch manages short-lived result files. A reference handed out
// by Put stays valid until Release; holders must release a superseded
// reference before storing a replacement so the scratch directory cannot
// fill up with orphans.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidRef is returned for references that were not issued by Put.
var ErrInvalidRef = errors.New("invalid scratch reference")

type Store struct {
	dir string
}

// NewStore creates the scratch directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put drains r into a fresh scratch file and returns its reference.
func (s *Store) Put(r io.Reader) (string, error) {
	f, err := os.CreateTemp(s.dir, "render-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write scratch file: %w", err)
	}

	return filepath.Base(f.Name()), nil
}

// Open returns the scratch file for reading. The caller closes it.
func (s *Store) Open(ref string) (*os.File, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Release deletes the scratch file behind ref. Releasing an already
// released reference is not an error.
func (s *Store) Release(ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release scratch file: %w", err)
	}
	return nil
}

func (s *Store) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.dir, ref), nil
}
