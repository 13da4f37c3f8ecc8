package storage

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/foodinsight/huginn/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Mirror uploads a copy of each artifact to S3-compatible storage.
type S3Mirror struct {
	client *minio.Client
	bucket string
	prefix string
	logger *log.Logger
}

// NewS3Mirror connects to the configured endpoint. It does not touch the
// network; the bucket is checked on first upload.
func NewS3Mirror(cfg config.S3Config, logger *log.Logger) (*S3Mirror, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[STORAGE] ", log.LstdFlags)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &S3Mirror{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// ObjectKey is prefix/YYYY/MM/DD/<run-id>.md in UTC.
func ObjectKey(prefix, runID string, at time.Time) string {
	at = at.UTC()
	return path.Join(strings.Trim(prefix, "/"), at.Format("2006/01/02"), runID+".md")
}

// Upload stores artifact under ObjectKey and returns the key.
func (m *S3Mirror) Upload(ctx context.Context, runID, topic, artifact string, at time.Time) (string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := ObjectKey(m.prefix, runID, at)
	_, err := m.client.PutObject(ctx, m.bucket, key,
		strings.NewReader(artifact), int64(len(artifact)),
		minio.PutObjectOptions{
			ContentType: "text/markdown; charset=utf-8",
			UserMetadata: map[string]string{
				"run-id": runID,
				"topic":  url.QueryEscape(topic), // metadata headers must be ASCII
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to store object in S3: %w", err)
	}
	m.logger.Printf("Stored artifact for run %s in bucket '%s' with key '%s'", runID, m.bucket, key)
	return key, nil
}

func (m *S3Mirror) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	return nil
}
