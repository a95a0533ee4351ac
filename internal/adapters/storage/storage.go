// Package storage stores exported analytics reports in S3-compatible object storage.
package storage

import (
	"time"
)

// PresignedURL contains a presigned download link and when it stops working.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketAnalyticsReports() string
	IsMinIOEnabled() bool
}
