package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfsplit/internal/docservice/pdftest"
	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/splitter"
)

func TestPlanCmd_PrintsSegments(t *testing.T) {
	dir := t.TempDir()
	input := pdftest.Write(t, dir, "doc.pdf", 10)

	out, err := runCLI(t, "", "plan", input, "-p", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "10 pages, 4 segment(s)")
	assert.Contains(t, out, "[1] pages 1-3 -> doc_1.pdf")
	assert.Contains(t, out, "[4] pages 10-10 -> doc_4.pdf")
	assert.Contains(t, out, "Suggested splits that would work: 1, 2, 5, 10")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "plan never writes")
}

func TestPlanCmd_ListsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	input := pdftest.Write(t, dir, "doc.pdf", 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc_2.pdf"), []byte("old"), 0o644))

	out, err := runCLI(t, "", "plan", input, "-p", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "already exist")
}

func TestPlanCmd_JSON(t *testing.T) {
	input := pdftest.Write(t, t.TempDir(), "doc.pdf", 4)

	out, err := runCLI(t, "", "plan", input, "-p", "2", "--json")
	require.NoError(t, err)

	var plan models.SplitPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, 4, plan.PageCount)
	assert.True(t, plan.EvenlyDivisible)
	assert.Len(t, plan.Segments, 2)
}

func TestPlanCmd_ExplicitZeroPagesIsInvalid(t *testing.T) {
	input := pdftest.Write(t, t.TempDir(), "doc.pdf", 4)

	_, err := runCLI(t, "", "plan", input, "--pages", "0")
	assert.ErrorIs(t, err, splitter.ErrInvalidInput)
}
