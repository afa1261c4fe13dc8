package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

// ObjectStore is the subset of *minio.Client the sink uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinIOSink struct {
	client ObjectStore
	bucket string
	prefix string
	region string
}

func NewMinIOSinkWithClient(client ObjectStore, bucket, prefix, region string) *MinIOSink {
	return &MinIOSink{client: client, bucket: bucket, prefix: prefix, region: region}
}

func NewMinIOSink(_ context.Context, opts Options) (Sink, error) {
	p := opts.Profile
	bucket := bucketFor(opts)
	if bucket == "" {
		return nil, fmt.Errorf("minio sink requires a bucket")
	}
	if p.Endpoint == "" {
		return nil, fmt.Errorf("minio sink requires an endpoint")
	}
	if p.AccessKeyID == "" || p.SecretAccessKey == "" {
		return nil, fmt.Errorf("minio sink requires credentials")
	}

	endpoint, secure := p.Endpoint, p.UseSSL
	if u, err := url.Parse(p.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(p.AccessKeyID, p.SecretAccessKey, ""),
		Secure: secure,
		Region: p.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return NewMinIOSinkWithClient(client, bucket, p.Prefix, p.Region), nil
}

func (s *MinIOSink) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOSink) Put(ctx context.Context, artifact domain.ExportArtifact) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := objectKey(s.prefix, artifact.Filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(artifact.Content), int64(len(artifact.Content)), minio.PutObjectOptions{
		ContentType: artifact.MimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	zerolog.Ctx(ctx).Info().Str("location", location).Msg("artifact uploaded")
	return location, nil
}
