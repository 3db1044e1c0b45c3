package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ImageStore hosts user images and serves them from public URLs.
type ImageStore interface {
	// Upload stores body under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object a URL returned by Upload points to.
	Delete(ctx context.Context, url string) error
}

var ErrForeignURL = errors.New("url does not belong to this image store")

// keyFromURL strips base from url, returning the object key.
func keyFromURL(base, url string) (string, error) {
	base = strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(url, base)
	if key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}

// Memory is an in-process ImageStore used by tests and local runs without S3.
type Memory struct {
	BaseURL string
	// FailUploads and FailDeletes force the next operations to error.
	FailUploads bool
	FailDeletes bool

	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string][]byte{}}
}

func (m *Memory) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if m.FailUploads {
		return "", errors.New("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return m.BaseURL + "/" + key, nil
}

func (m *Memory) Delete(_ context.Context, url string) error {
	if m.FailDeletes {
		return errors.New("delete failed")
	}
	key, err := keyFromURL(m.BaseURL, url)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, url)
	m.mu.Unlock()
	return nil
}

// Has reports whether an object is stored under key.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Deleted lists the URLs removed so far.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
