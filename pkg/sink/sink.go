// Package sink delivers finished export artifacts to their destination.
package sink

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
	"github.com/de-tools/agri-atlas/pkg/services/config"
)

var ErrUnknownKind = errors.New("unknown sink kind")

type Kind string

const (
	KindLocal Kind = "local"
	KindS3    Kind = "s3"
	KindMinIO Kind = "minio"
)

// Sink accepts a complete artifact and returns where it was stored.
type Sink interface {
	Put(ctx context.Context, artifact domain.ExportArtifact) (string, error)
}

// Options carries everything a factory may need to build a sink.
type Options struct {
	Dir     string
	Bucket  string
	Profile config.StorageProfile
}

// objectKey joins the profile prefix and the artifact filename.
func objectKey(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return filename
	}
	return path.Join(prefix, filename)
}

func bucketFor(opts Options) string {
	if opts.Bucket != "" {
		return opts.Bucket
	}
	return opts.Profile.Bucket
}
