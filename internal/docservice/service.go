// Package docservice provides the document capabilities the splitter needs:
// opening a PDF, counting and extracting pages, and writing the result.
package docservice

import "errors"

// ErrClosed is returned when a closed handle is used.
var ErrClosed = errors.New("document handle is closed")

// ErrForeignHandle is returned when a handle created by another Service
// implementation is passed in.
var ErrForeignHandle = errors.New("document handle not created by this service")

// Handle is an opened, in-memory document. It belongs to whoever opened or
// extracted it until Close is called on the Service.
type Handle interface {
	// Source is the path the document was read from, or a description of
	// the range it was extracted from.
	Source() string
}

// SaveOptions controls serialisation.
type SaveOptions struct {
	Compress       bool
	CollectGarbage bool
}

// Service is the document capability surface used by the splitter.
type Service interface {
	Open(path string) (Handle, error)
	PageCount(h Handle) int
	IsValidDocument(h Handle) bool
	// ExtractRange copies pages [firstPage, lastPage] (0-based, inclusive)
	// into a new document.
	ExtractRange(src Handle, firstPage, lastPage int) (Handle, error)
	Save(h Handle, path string, opts SaveOptions) error
	// Close releases the handle. It is safe to call more than once.
	Close(h Handle)
}
