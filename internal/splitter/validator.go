package splitter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/pdfsplit/internal/docservice"
)

// MaxInputBytes is the largest input file accepted.
const MaxInputBytes = 100 * 1024 * 1024

// Validator checks that an input path is a readable PDF of acceptable size.
type Validator struct {
	docs     docservice.Service
	maxBytes int64
}

// NewValidator creates a Validator enforcing MaxInputBytes.
func NewValidator(docs docservice.Service) *Validator {
	return &Validator{docs: docs, maxBytes: MaxInputBytes}
}

// Validate runs the size, extension and structure checks in that order and
// stops at the first failure. It returns a *ValidationError on rejection.
func (v *Validator) Validate(path string) error {
	if path == "" {
		return invalidInput("no input file given")
	}
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Path: path, Reason: err.Error()}
	}
	if info.IsDir() {
		return &ValidationError{Path: path, Reason: "is a directory"}
	}
	if info.Size() > v.maxBytes {
		return &ValidationError{Path: path, Reason: "file too large"}
	}
	if !strings.EqualFold(filepath.Ext(path), OutputExt) {
		return &ValidationError{Path: path, Reason: "not a document of the expected type"}
	}

	h, err := v.docs.Open(path)
	if err != nil {
		return &ValidationError{Path: path, Reason: err.Error()}
	}
	defer v.docs.Close(h)
	if !v.docs.IsValidDocument(h) {
		return &ValidationError{Path: path, Reason: "invalid PDF format"}
	}
	return nil
}
