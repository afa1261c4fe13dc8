package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

type LocalSink struct {
	dir string
}

// NewLocalSink writes artifacts under dir, creating it when missing.
func NewLocalSink(dir string) (*LocalSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}
	return &LocalSink{dir: dir}, nil
}

// Put writes to a temporary file and renames it into place so readers never
// observe a partial artifact.
func (s *LocalSink) Put(ctx context.Context, artifact domain.ExportArtifact) (string, error) {
	if artifact.Filename == "" {
		return "", fmt.Errorf("artifact filename is required")
	}
	target := filepath.Join(s.dir, filepath.Base(artifact.Filename))

	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", artifact.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", artifact.Filename, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", artifact.Filename, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", target).
		Int("bytes", len(artifact.Content)).
		Msg("artifact written")
	return target, nil
}
