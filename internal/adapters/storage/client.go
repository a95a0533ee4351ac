package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// PresignedURLTTL is the default expiration time for presigned URLs (15 minutes).
	PresignedURLTTL = 15 * time.Minute

	defaultReportBucket = "analytics-reports"
	defaultMaxFileSize  = 10 << 20
)

var allowedReportTypes = map[string]bool{
	"application/json": true,
	"text/csv":         true,
}

// ReportStore implements report upload and download links on MinIO.
type ReportStore struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

// NewReportStore creates a MinIO-backed report store.
func NewReportStore(cfg Config) (*ReportStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	bucket := cfg.GetMinioBucketAnalyticsReports()
	if bucket == "" {
		bucket = defaultReportBucket
	}
	maxSize := cfg.GetMinIOMaxFileSize()
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}

	return &ReportStore{client: client, bucket: bucket, maxFileSize: maxSize}, nil
}

// Bucket returns the bucket reports are written to.
func (s *ReportStore) Bucket() string { return s.bucket }

// EnsureBucketExists creates the report bucket if it doesn't exist.
func (s *ReportStore) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

// UploadReport writes body under key.
func (s *ReportStore) UploadReport(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ValidateObjectKey(key); err != nil {
		return err
	}
	if err := ValidateReport(contentType, int64(len(body)), s.maxFileSize); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return nil
}

// PresignReportURL returns a time-limited download link for key.
func (s *ReportStore) PresignReportURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	link, err := s.GenerateDownloadURL(ctx, key, expiry)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

// GenerateDownloadURL creates a presigned URL for downloading a report.
func (s *ReportStore) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (*PresignedURL, error) {
	if expiry <= 0 {
		expiry = PresignedURLTTL
	}
	expiresAt := time.Now().Add(expiry)

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, reqParams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURL{
		URL:       presignedURL.String(),
		FileKey:   key,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateReport checks the content type and size of a report body.
func ValidateReport(contentType string, sizeBytes, maxSize int64) error {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedReportTypes[mediaType] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("report is empty")
	}
	if sizeBytes > maxSize {
		return fmt.Errorf("report size %d exceeds maximum of %d bytes", sizeBytes, maxSize)
	}
	return nil
}

// ValidateObjectKey rejects keys that would escape their prefix.
func ValidateObjectKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid object key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return fmt.Errorf("invalid object key %q", key)
		}
	}
	return nil
}
