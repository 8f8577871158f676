package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// MockStore is a mock implementation of Store for testing
type MockStore struct {
	mu          sync.Mutex
	ResolveFunc func(u *url.URL) (Blob, error)
	Blob        *MockBlob
	Resolved    []string
}

func NewMockStore(blob *MockBlob) *MockStore {
	return &MockStore{Blob: blob}
}

func (m *MockStore) Resolve(u *url.URL) (Blob, error) {
	m.mu.Lock()
	m.Resolved = append(m.Resolved, u.String())
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(u)
	}
	if m.Blob == nil {
		return nil, fmt.Errorf("no blob configured for %s", u)
	}
	return m.Blob, nil
}

// MockBlob is a mock implementation of Blob for testing
type MockBlob struct {
	ExistsFunc     func(ctx context.Context) (bool, error)
	PropertiesFunc func(ctx context.Context) (uint64, string, error)
	DownloadFunc   func(ctx context.Context) ([]byte, error)

	Present      bool
	Size         uint64
	LastModified string
	Contents     []byte

	DownloadCalls int
}

func NewMockBlob(contents []byte, lastModified string) *MockBlob {
	return &MockBlob{
		Present:      true,
		Size:         uint64(len(contents)),
		LastModified: lastModified,
		Contents:     contents,
	}
}

func (m *MockBlob) Exists(ctx context.Context) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx)
	}
	return m.Present, nil
}

func (m *MockBlob) Properties(ctx context.Context) (uint64, string, error) {
	if m.PropertiesFunc != nil {
		return m.PropertiesFunc(ctx)
	}
	return m.Size, m.LastModified, nil
}

func (m *MockBlob) Download(ctx context.Context) ([]byte, error) {
	m.DownloadCalls++
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx)
	}
	return m.Contents, nil
}
