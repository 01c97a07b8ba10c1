// Package storage is the object-storage collaborator: posts' images are
// written once and read back by their public URL.
package storage

import "context"

type ObjectStorage interface {
	// Write stores data under name and returns the public URL.
	Write(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Read fetches the bytes behind a URL previously returned by Write.
	Read(ctx context.Context, url string) ([]byte, error)
}
