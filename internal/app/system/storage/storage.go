// internal/app/system/storage/storage.go

// Package storage abstracts where uploaded binaries live. The service
// keeps only the returned object ID and URL; everything else is the
// provider's business.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Delete when the object is already gone.
// Callers treat it as success so deletes stay idempotent.
var ErrObjectNotFound = errors.New("storage: object not found")

// Object describes a stored binary.
type Object struct {
	ID   string
	URL  string
	Size int64
}

// Provider stores and removes uploaded binaries.
type Provider interface {
	// Put streams the content into the backing store under a fresh ID
	// derived from the given filename.
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (Object, error)

	// Delete removes the object. Missing objects return ErrObjectNotFound.
	Delete(ctx context.Context, id string) error
}
