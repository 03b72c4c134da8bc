package docservice

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var _ Service = (*PDFService)(nil)

// PDFService implements Service on top of pdfcpu.
type PDFService struct {
	conf *model.Configuration
}

// NewPDFService creates a pdfcpu backed service. Validation is relaxed so
// that slightly non-conforming files produced by common tools still open.
func NewPDFService() *PDFService {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFService{conf: conf}
}

type pdfHandle struct {
	source string
	ctx    *model.Context
}

func (h *pdfHandle) Source() string { return h.source }

// Open reads the whole file into memory and parses it.
func (s *PDFService) Open(path string) (Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ctx, err := api.ReadContext(bytes.NewReader(data), s.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF %s: %w", path, err)
	}
	// ReadContext leaves PageCount at zero until the page tree is read.
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to read page count of %s: %w", path, err)
	}
	return &pdfHandle{source: path, ctx: ctx}, nil
}

// PageCount returns 0 for closed or foreign handles.
func (s *PDFService) PageCount(h Handle) int {
	ph, err := unwrap(h)
	if err != nil {
		return 0
	}
	return ph.ctx.PageCount
}

// IsValidDocument reports whether the document passes pdfcpu validation.
func (s *PDFService) IsValidDocument(h Handle) bool {
	ph, err := unwrap(h)
	if err != nil {
		return false
	}
	return api.ValidateContext(ph.ctx) == nil
}

// ExtractRange builds a new document holding the given pages.
func (s *PDFService) ExtractRange(src Handle, firstPage, lastPage int) (Handle, error) {
	ph, err := unwrap(src)
	if err != nil {
		return nil, err
	}
	if firstPage < 0 || lastPage < firstPage || lastPage >= ph.ctx.PageCount {
		return nil, fmt.Errorf("page range [%d, %d] outside document with %d pages", firstPage, lastPage, ph.ctx.PageCount)
	}
	// pdfcpu numbers pages from 1.
	pages := make([]int, 0, lastPage-firstPage+1)
	for p := firstPage; p <= lastPage; p++ {
		pages = append(pages, p+1)
	}
	ctx, err := pdfcpu.ExtractPages(ph.ctx, pages, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages %d-%d: %w", firstPage, lastPage, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count extracted pages %d-%d: %w", firstPage, lastPage, err)
	}
	return &pdfHandle{
		source: fmt.Sprintf("%s[%d-%d]", ph.source, firstPage, lastPage),
		ctx:    ctx,
	}, nil
}

// Save writes the document to path. Compression writes object and xref
// streams; garbage collection drops unreferenced and duplicate objects.
func (s *PDFService) Save(h Handle, path string, opts SaveOptions) error {
	ph, err := unwrap(h)
	if err != nil {
		return err
	}
	conf := *s.conf
	conf.WriteObjectStream = opts.Compress
	conf.WriteXRefStream = opts.Compress

	if !opts.CollectGarbage {
		ph.ctx.Configuration = &conf
		if err := api.WriteContextFile(ph.ctx, path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}

	// Extracted documents carry no optimization state, so they are written
	// out once and read back through the optimizer.
	var buf bytes.Buffer
	if err := api.WriteContext(ph.ctx, &buf); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", ph.source, err)
	}
	conf.Cmd = model.OPTIMIZE
	conf.Optimize = true

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := api.Optimize(bytes.NewReader(buf.Bytes()), f, &conf); err != nil {
		f.Close()
		return fmt.Errorf("failed to optimize %s: %w", ph.source, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Close drops the parsed document. Closing twice is a no-op.
func (s *PDFService) Close(h Handle) {
	if ph, ok := h.(*pdfHandle); ok && ph != nil {
		ph.ctx = nil
	}
}

func unwrap(h Handle) (*pdfHandle, error) {
	ph, ok := h.(*pdfHandle)
	if !ok || ph == nil {
		return nil, ErrForeignHandle
	}
	if ph.ctx == nil {
		return nil, ErrClosed
	}
	return ph, nil
}
