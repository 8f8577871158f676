// Package blobstore provides the remote-object collaborator used by the
// acquisition sequence: resolve a URL to a blob handle, then check, inspect
// and download it.
package blobstore

import (
	"context"
	"net/url"
)

// Store resolves URLs to blob handles. One Store, holding one credential, is
// constructed per process and shared for its whole lifetime.
type Store interface {
	Resolve(u *url.URL) (Blob, error)
}

// Blob is a handle to a single remote object.
type Blob interface {
	Exists(ctx context.Context) (bool, error)
	Properties(ctx context.Context) (size uint64, lastModified string, err error)
	Download(ctx context.Context) ([]byte, error)
}
