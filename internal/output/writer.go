// Package output writes generated files to disk.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileWriter writes generated content to a file, creating parent
// directories as needed. Writes go to a temporary sibling first and are
// renamed into place, so readers never observe a half-written file.
type FileWriter struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer for the specified file path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories and replaces the file with data.
func (fw *FileWriter) Write(data []byte) error {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	perm := fw.perm
	if info, err := os.Stat(fw.path); err == nil {
		// Keep the mode of files we did not create.
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", fw.path, err)
	}

	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()

		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file for %s: %w", fw.path, err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions on %s: %w", fw.path, err)
	}

	if err := os.Rename(tmpName, fw.path); err != nil {
		cleanup()
		return fmt.Errorf("replacing file %s: %w", fw.path, err)
	}

	fw.logger.Debug("wrote file", slog.String("path", fw.path), slog.Int("bytes", len(data)))

	return nil
}

// WriteIfChanged writes data only when it differs from the current file
// content. It reports whether the file was written.
func (fw *FileWriter) WriteIfChanged(data []byte) (bool, error) {
	same, err := fw.Matches(data)
	if err != nil {
		return false, err
	}

	if same {
		fw.logger.Debug("file unchanged", slog.String("path", fw.path))
		return false, nil
	}

	if err := fw.Write(data); err != nil {
		return false, err
	}

	return true, nil
}

// Matches reports whether the file exists and holds exactly data.
func (fw *FileWriter) Matches(data []byte) (bool, error) {
	current, err := os.ReadFile(fw.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("reading file %s: %w", fw.path, err)
	}

	return bytes.Equal(current, data), nil
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
