// Package filesystem reads routine definitions from a directory of .sql files.
package filesystem

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/enunezf/routinesync/internal/core/domain"
	"github.com/enunezf/routinesync/internal/core/services"
)

// DefaultExtension is the suffix of definition files
const DefaultExtension = ".sql"

// Source implements ports.ObjectSource over one directory. Each file holds
// a single object named after the file.
type Source struct {
	fs        afero.Fs
	dir       string
	extension string
	logger    *zap.Logger
}

// NewSource creates a source reading dir on fs. An empty extension means
// DefaultExtension.
func NewSource(fs afero.Fs, dir, extension string, logger *zap.Logger) *Source {
	if extension == "" {
		extension = DefaultExtension
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{fs: fs, dir: dir, extension: extension, logger: logger}
}

// NewOsSource creates a source on the operating system's filesystem
func NewOsSource(dir, extension string, logger *zap.Logger) *Source {
	return NewSource(afero.NewOsFs(), dir, extension, logger)
}

// ListObjects implements ports.ObjectSource
func (s *Source) ListObjects(ctx context.Context) (domain.ObjectSet, error) {
	if err := s.checkDir(); err != nil {
		return nil, err
	}

	// ReadDir returns entries sorted by name
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", s.dir)
	}

	objects := make(domain.ObjectSet)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.extension) {
			continue
		}

		name := objectName(entry.Name(), s.extension)
		content, err := afero.ReadFile(s.fs, filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", entry.Name())
		}

		kind, err := services.Classify(string(content))
		if err != nil {
			return nil, &domain.UnknownObjectKindError{Name: strings.ToLower(name)}
		}

		s.logger.Debug("Read object file",
			zap.String("file", entry.Name()),
			zap.Stringer("kind", kind))
		objects.Add(domain.NewSqlObject(name, kind, string(content)))
	}

	return objects, nil
}

// objectName strips extension from file. A dotfile such as ".sql" has no
// extension to strip and keeps its full name.
func objectName(file, extension string) string {
	if name := strings.TrimSuffix(file, extension); name != "" {
		return name
	}
	return file
}

func (s *Source) checkDir() error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return errors.Wrapf(err, "%s is not a valid path", s.dir)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
