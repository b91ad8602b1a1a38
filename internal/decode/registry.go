package decode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
)

type decodeFunc func(path string) (string, error)

// Registry picks a decoder by file extension.
type Registry struct {
	logger   *zap.Logger
	decoders map[string]decodeFunc
}

func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		logger: logger,
		decoders: map[string]decodeFunc{
			".pdf":  decodePDF,
			".docx": decodeDOCX,
			".txt":  decodePlainText,
			".text": decodePlainText,
			".md":   decodePlainText,
		},
	}
}

// Extensions lists the supported extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Supports reports whether the file has a known extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.decoders[extension(path)]
	return ok
}

// Decode returns the text of the file. Every failure is a *screening.DecodeFailure.
func (r *Registry) Decode(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	decode, ok := r.decoders[extension(path)]
	if !ok {
		return "", &screening.DecodeFailure{
			Path: path,
			Err:  fmt.Errorf("%w: %q", screening.ErrUnsupportedFormat, filepath.Ext(path)),
		}
	}

	text, err := decode(path)
	if err != nil {
		return "", &screening.DecodeFailure{Path: path, Err: err}
	}

	r.logger.Debug("document decoded",
		zap.String("path", path),
		zap.Int("length", len(text)),
	)

	return text, nil
}

// Discover lists the supported files of dir, sorted by name. The file name is
// used as the source ID.
func (r *Registry) Discover(dir string) ([]screening.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading resumes directory: %w", err)
	}

	var sources []screening.Source
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !r.Supports(name) {
			r.logger.Debug("skipping unsupported file", zap.String("file", name))
			continue
		}
		sources = append(sources, screening.Source{ID: name, Path: filepath.Join(dir, name)})
	}

	slices.SortFunc(sources, func(a, b screening.Source) int {
		return strings.Compare(a.ID, b.ID)
	})

	return sources, nil
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
