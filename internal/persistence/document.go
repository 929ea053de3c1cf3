package persistence

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by Read when nothing has been written yet.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentBackend stores one opaque document. Write replaces the whole
// document; a concurrent Read sees either the old or the new bytes.
type DocumentBackend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
}
