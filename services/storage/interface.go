// Package storage puts applicant documents into object storage without ever
// blocking the wizard on it.
package storage

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by stores that are not configured.
var ErrUnavailable = errors.New("object storage is not available")

// ObjectStore is a remote file store addressed by URL.
type ObjectStore interface {
	// Put uploads the local file into folder and returns its public URL.
	Put(ctx context.Context, localPath, folder string) (string, error)
	// Remove deletes the object behind url. Missing objects are not an error.
	Remove(ctx context.Context, url string) error
}

// UnavailableStore fails every call, which turns all uploads into local previews.
type UnavailableStore struct{}

func (UnavailableStore) Put(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

func (UnavailableStore) Remove(context.Context, string) error {
	return ErrUnavailable
}
