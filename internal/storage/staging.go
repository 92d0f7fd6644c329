package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StagedFile is an upload written to local disk before it is persisted.
type StagedFile struct {
	Path         string
	FileName     string
	OriginalName string
	MimeType     string
	Size         int64
}

type Stager struct {
	dir string
}

func NewStager(dir string) *Stager {
	return &Stager{dir: dir}
}

// Stage copies r into the staging directory as <uuid>_uploaded_<original>.
func (s *Stager) Stage(originalName, mimeType string, r io.Reader) (StagedFile, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return StagedFile{}, fmt.Errorf("create staging dir: %w", err)
	}
	name := uuid.NewString() + "_uploaded_" + sanitizeFileName(originalName)
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return StagedFile{}, fmt.Errorf("create staged file: %w", err)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(full)
		return StagedFile{}, fmt.Errorf("write staged file: %w", err)
	}
	return StagedFile{
		Path:         full,
		FileName:     name,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         n,
	}, nil
}

// RemoveStaged deletes staged files, ignoring ones that are already gone.
func RemoveStaged(files []StagedFile) error {
	var errs []error
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Purge removes staged uploads left behind in the staging directory, for
// example by a process that stopped mid-request.
func (s *Stager) Purge() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*_uploaded_*"))
	if err != nil {
		return 0, err
	}
	var errs []error
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, name)
}
