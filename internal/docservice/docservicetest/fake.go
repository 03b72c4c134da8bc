// Package docservicetest provides an in-memory docservice.Service for tests.
package docservicetest

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Lllllllleong/pdfsplit/internal/docservice"
)

var _ docservice.Service = (*Fake)(nil)

// Handle is the handle type produced by Fake.
type Handle struct {
	Name      string
	Pages     int
	FirstPage int
	closed    bool
}

// Source implements docservice.Handle.
func (h *Handle) Source() string { return h.Name }

// Fake simulates a document service. Opened documents have Pages pages.
// Save writes a small placeholder file so callers can inspect the disk.
type Fake struct {
	Pages   int
	Invalid bool
	OpenErr error
	// FailExtractAt and FailSaveAt make the n-th call (1-based) fail.
	FailExtractAt int
	FailSaveAt    int

	mu         sync.Mutex
	opened     []*Handle
	closeCalls map[*Handle]int
	extracts   int
	saves      int
	SavedPaths []string
	SavedOpts  []docservice.SaveOptions
}

// Open implements docservice.Service.
func (f *Fake) Open(path string) (docservice.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	h := &Handle{Name: path, Pages: f.Pages}
	f.opened = append(f.opened, h)
	return h, nil
}

// PageCount implements docservice.Service.
func (f *Fake) PageCount(h docservice.Handle) int {
	fh, ok := h.(*Handle)
	if !ok || fh.closed {
		return 0
	}
	return fh.Pages
}

// IsValidDocument implements docservice.Service.
func (f *Fake) IsValidDocument(h docservice.Handle) bool {
	fh, ok := h.(*Handle)
	return ok && !fh.closed && !f.Invalid
}

// ExtractRange implements docservice.Service.
func (f *Fake) ExtractRange(src docservice.Handle, firstPage, lastPage int) (docservice.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, ok := src.(*Handle)
	if !ok {
		return nil, docservice.ErrForeignHandle
	}
	if fh.closed {
		return nil, docservice.ErrClosed
	}
	f.extracts++
	if f.extracts == f.FailExtractAt {
		return nil, errors.New("simulated extraction failure")
	}
	part := &Handle{
		Name:      fmt.Sprintf("%s[%d-%d]", fh.Name, firstPage, lastPage),
		Pages:     lastPage - firstPage + 1,
		FirstPage: firstPage,
	}
	f.opened = append(f.opened, part)
	return part, nil
}

// Save implements docservice.Service.
func (f *Fake) Save(h docservice.Handle, path string, opts docservice.SaveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, ok := h.(*Handle)
	if !ok {
		return docservice.ErrForeignHandle
	}
	if fh.closed {
		return docservice.ErrClosed
	}
	f.saves++
	if f.saves == f.FailSaveAt {
		return errors.New("simulated save failure")
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%%PDF-fake pages=%d first=%d\n", fh.Pages, fh.FirstPage)), 0o644); err != nil {
		return err
	}
	f.SavedPaths = append(f.SavedPaths, path)
	f.SavedOpts = append(f.SavedOpts, opts)
	return nil
}

// Close implements docservice.Service.
func (f *Fake) Close(h docservice.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, ok := h.(*Handle)
	if !ok || fh == nil {
		return
	}
	if f.closeCalls == nil {
		f.closeCalls = make(map[*Handle]int)
	}
	f.closeCalls[fh]++
	fh.closed = true
}

// Handles returns every handle opened or extracted so far.
func (f *Fake) Handles() []*Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Handle(nil), f.opened...)
}

// CloseCount reports how often Close was called for h.
func (f *Fake) CloseCount(h *Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls[h]
}

// Closed reports whether h has been closed.
func (f *Fake) Closed(h *Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return h.closed
}

// Extracts is the number of ExtractRange calls made.
func (f *Fake) Extracts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extracts
}
