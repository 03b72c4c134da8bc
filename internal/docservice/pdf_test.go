package docservice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfsplit/internal/docservice/pdftest"
)

func TestPDFService_OpenAndCount(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "report.pdf", 7)
	svc := NewPDFService()

	h, err := svc.Open(path)
	require.NoError(t, err)
	defer svc.Close(h)

	assert.Equal(t, path, h.Source())
	assert.Equal(t, 7, svc.PageCount(h))
	assert.True(t, svc.IsValidDocument(h))
}

func TestPDFService_OpenMissingFile(t *testing.T) {
	svc := NewPDFService()
	_, err := svc.Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFService_OpenGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("This is not a PDF"), 0o644))

	svc := NewPDFService()
	_, err := svc.Open(path)
	assert.Error(t, err)
}

func TestPDFService_ExtractAndSave(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "report.pdf", 10)
	svc := NewPDFService()

	src, err := svc.Open(path)
	require.NoError(t, err)
	defer svc.Close(src)

	part, err := svc.ExtractRange(src, 3, 5)
	require.NoError(t, err)
	defer svc.Close(part)
	assert.Equal(t, 3, svc.PageCount(part))

	out := filepath.Join(dir, "report_2.pdf")
	require.NoError(t, svc.Save(part, out, SaveOptions{Compress: true, CollectGarbage: true}))

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// The source is untouched by extraction.
	assert.Equal(t, 10, svc.PageCount(src))
}

func TestPDFService_ExtractOutOfRange(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "short.pdf", 2)
	svc := NewPDFService()

	src, err := svc.Open(path)
	require.NoError(t, err)
	defer svc.Close(src)

	tests := []struct {
		name        string
		first, last int
	}{
		{"negative first", -1, 0},
		{"last before first", 1, 0},
		{"past end", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ExtractRange(src, tt.first, tt.last)
			assert.Error(t, err)
		})
	}
}

func TestPDFService_CloseIsIdempotent(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "report.pdf", 1)
	svc := NewPDFService()

	h, err := svc.Open(path)
	require.NoError(t, err)

	svc.Close(h)
	svc.Close(h)

	assert.Equal(t, 0, svc.PageCount(h))
	assert.False(t, svc.IsValidDocument(h))
	_, err = svc.ExtractRange(h, 0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, svc.Save(h, filepath.Join(t.TempDir(), "x.pdf"), SaveOptions{}), ErrClosed)
}

type otherHandle struct{}

func (otherHandle) Source() string { return "other" }

func TestPDFService_ForeignHandle(t *testing.T) {
	svc := NewPDFService()
	_, err := svc.ExtractRange(otherHandle{}, 0, 0)
	assert.ErrorIs(t, err, ErrForeignHandle)
	svc.Close(otherHandle{})
}

func TestPDFService_PageCountMatchesPdfcpu(t *testing.T) {
	dir := t.TempDir()
	fixture := pdftest.Write(t, dir, "fixture.pdf", 7)
	rewritten := filepath.Join(dir, "rewritten.pdf")
	require.NoError(t, api.OptimizeFile(fixture, rewritten, nil))

	svc := NewPDFService()
	for _, path := range []string{fixture, rewritten} {
		want, err := api.PageCountFile(path)
		require.NoError(t, err)

		h, err := svc.Open(path)
		require.NoError(t, err)
		assert.Equal(t, want, svc.PageCount(h), path)
		svc.Close(h)
	}
}

func TestPDFService_SaveWithoutGarbageCollection(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "report.pdf", 4)
	svc := NewPDFService()

	src, err := svc.Open(path)
	require.NoError(t, err)
	defer svc.Close(src)

	part, err := svc.ExtractRange(src, 0, 1)
	require.NoError(t, err)
	defer svc.Close(part)

	out := filepath.Join(dir, "report_1.pdf")
	require.NoError(t, svc.Save(part, out, SaveOptions{}))

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
