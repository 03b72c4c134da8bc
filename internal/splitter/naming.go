package splitter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputExt is the extension of every written segment.
const OutputExt = ".pdf"

// BaseName returns the input file name without directory or extension.
func BaseName(inputPath string) string {
	name := filepath.Base(inputPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputFileName returns the file name of the segment with the given
// 1-based index.
func OutputFileName(baseName string, index int) string {
	return fmt.Sprintf("%s_%d%s", baseName, index, OutputExt)
}

// OutputPath joins OutputFileName onto dir.
func OutputPath(dir, baseName string, index int) string {
	return filepath.Join(dir, OutputFileName(baseName, index))
}
