package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GCSStorage talks to the Cloud Storage JSON API over plain HTTP. The bucket
// is expected to serve objects publicly via storage.googleapis.com.
type GCSStorage struct {
	bucket     string
	token      string
	uploadBase string
	publicBase string
	client     *http.Client
}

type GCSOption func(*GCSStorage)

// WithEndpoints overrides the API hosts, for tests and emulators.
func WithEndpoints(uploadBase, publicBase string) GCSOption {
	return func(s *GCSStorage) {
		s.uploadBase = uploadBase
		s.publicBase = publicBase
	}
}

func NewGCSStorage(bucket, token string, opts ...GCSOption) *GCSStorage {
	s := &GCSStorage{
		bucket:     bucket,
		token:      token,
		uploadBase: "https://storage.googleapis.com/upload/storage/v1",
		publicBase: "https://storage.googleapis.com",
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GCSStorage) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/b/%s/o?uploadType=media&name=%s",
		s.uploadBase, s.bucket, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gcs upload %s: status %d", name, resp.StatusCode)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, name), nil
}

func (s *GCSStorage) Read(ctx context.Context, objectURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gcs read %s: status %d", objectURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
