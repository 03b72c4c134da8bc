package splitter

import (
	"errors"
	"io/fs"
	"os"

	"github.com/Lllllllleong/pdfsplit/internal/models"
)

// Collision lists planned output files that already exist.
type Collision struct {
	Existing []string
}

// MayProceed is true when nothing would be overwritten.
func (c Collision) MayProceed() bool {
	return len(c.Existing) == 0
}

// CheckOverwrite probes every file name the plan would write and reports
// the ones already present. It never writes. Files created by another
// process after the check are not detected.
func CheckOverwrite(outputDir, baseName string, plan models.SplitPlan) (Collision, error) {
	var c Collision
	for _, seg := range plan.Segments {
		path := OutputPath(outputDir, baseName, seg.Index)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			c.Existing = append(c.Existing, path)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Collision{}, err
		}
	}
	return c, nil
}
