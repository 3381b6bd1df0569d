// Package admin implements the back-office operations over applications,
// invoices and client documents.
package admin

import (
	"context"
	"errors"

	"visapoint/database/repository"
)

var (
	ErrInvalidStatus  = errors.New("invalid status")
	ErrNoIDs          = errors.New("no ids given")
	ErrInvalidInvoice = errors.New("invalid invoice")
)

// FileStore is the part of the upload adapter the back office needs.
type FileStore interface {
	DeleteURL(ctx context.Context, url string) error
	Put(ctx context.Context, localPath, subfolder string) (string, error)
}

// BulkFailure is one id a bulk operation could not process.
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult aggregates a batch. Batches are not transactional: ids in
// Succeeded were changed even when Failed is non-empty.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// OK reports whether every id succeeded.
func (r BulkResult) OK() bool { return len(r.Failed) == 0 }

func (r *BulkResult) record(id string, err error) {
	if err != nil {
		r.Failed = append(r.Failed, BulkFailure{ID: id, Error: err.Error()})
		return
	}
	r.Succeeded = append(r.Succeeded, id)
}

func newBulkResult() BulkResult {
	return BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
}

// Service is the back-office service.
type Service struct {
	store *repository.Store
	files FileStore
}

func NewService(store *repository.Store, files FileStore) *Service {
	return &Service{store: store, files: files}
}
