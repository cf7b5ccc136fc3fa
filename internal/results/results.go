// Package results keeps uploaded inputs and computed result files on disk.
package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Topsis/internal/dataset"
)

var (
	ErrNotFound    = errors.New("File not found")
	ErrInvalidName = errors.New("invalid file name")
)

type Store struct {
	uploadDir  string
	resultsDir string
	now        func() time.Time
}

// New creates both directories if they do not exist.
func New(uploadDir, resultsDir string) (*Store, error) {
	for _, d := range []string{uploadDir, resultsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return &Store{uploadDir: uploadDir, resultsDir: resultsDir, now: time.Now}, nil
}

// SaveUpload stores an uploaded input under its base name and returns the path.
func (s *Store) SaveUpload(name string, data []byte) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if err := checkName(base); err != nil {
		return "", err
	}
	path := filepath.Join(s.uploadDir, base)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

// SaveResult writes t as CSV under a fresh result_<timestamp>_<id>.csv name.
func (s *Store) SaveResult(t *dataset.Table) (string, error) {
	name := fmt.Sprintf("result_%s_%s.csv", s.now().Format("20060102_150405"), uuid.NewString()[:8])

	tmp, err := os.CreateTemp(s.resultsDir, ".result-*")
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := t.WriteCSV(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.resultsDir, name)); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return name, nil
}

// ResultPath resolves a result name to its path. Only plain base names of
// existing files are accepted.
func (s *Store) ResultPath(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	path := filepath.Join(s.resultsDir, name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// Open returns the named result file for reading.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.ResultPath(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}
