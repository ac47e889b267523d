package media

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes accepted uploads to a directory on disk. Validation happens
// before anything is written, so a rejected candidate leaves no trace.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save validates the candidate's media kind and, if accepted, stores its
// content under a fresh ID. durationSeconds may be 0 when the duration is
// unknown; pricing then refuses the file until a duration is supplied.
func (s *Store) Save(name, declaredType string, r io.Reader, durationSeconds int) (*File, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	kind, contentType, err := detectKind(head, declaredType)
	if err != nil {
		return nil, err
	}

	if durationSeconds < 0 {
		durationSeconds = 0
	}

	id := uuid.New().String()
	path := filepath.Join(s.dir, id)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}

	size, err := io.Copy(dst, br)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &File{
		ID:              id,
		Name:            name,
		Size:            size,
		Kind:            kind,
		DurationSeconds: durationSeconds,
		ContentType:     contentType,
		Path:            path,
	}, nil
}

// Remove deletes the stored content of f. Missing files are not an error.
func (s *Store) Remove(f *File) error {
	if f == nil || f.Path == "" {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
