package splitter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/pdfsplit/internal/docservice"
	"github.com/Lllllllleong/pdfsplit/internal/models"
)

// ProgressFunc is called on the executing goroutine after each segment has
// been written.
type ProgressFunc func(models.SplitProgress)

// Outcome lists the files written by an execution, in segment order. On
// failure it holds the files written before the failing segment.
type Outcome struct {
	Written []string
}

// segmentSaveOptions is fixed: every segment is compressed and stripped of
// unreferenced objects.
var segmentSaveOptions = docservice.SaveOptions{Compress: true, CollectGarbage: true}

// Executor writes the segments of a plan through a document service.
type Executor struct {
	docs   docservice.Service
	logger *slog.Logger
}

// NewExecutor creates an Executor. A nil logger falls back to slog.Default.
func NewExecutor(docs docservice.Service, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{docs: docs, logger: logger}
}

// Execute writes one file per segment, strictly in plan order. The first
// extraction or save failure stops the run and is returned as a
// *SegmentError; files already written stay on disk. ctx is checked between
// segments only, so a segment that has started always finishes or fails on
// its own. source is closed before Execute returns, whatever the outcome.
func (e *Executor) Execute(
	ctx context.Context,
	source docservice.Handle,
	plan models.SplitPlan,
	outputDir, baseName string,
	onProgress ProgressFunc,
) (Outcome, error) {
	defer e.docs.Close(source)

	total := plan.SegmentCount()
	out := Outcome{Written: make([]string, 0, total)}
	for _, seg := range plan.Segments {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("Split cancelled between segments.", "completed", len(out.Written), "total", total)
			return out, fmt.Errorf("split cancelled after %d of %d segments: %w", len(out.Written), total, err)
		}

		path := OutputPath(outputDir, baseName, seg.Index)
		if err := e.writeSegment(source, seg, path); err != nil {
			e.logger.Error("Failed to write segment.", "segment", seg.Index, "path", path, "error", err)
			return out, &SegmentError{Index: seg.Index, Path: path, Err: err}
		}
		out.Written = append(out.Written, path)
		e.logger.Debug("Segment written.", "segment", seg.Index, "firstPage", seg.FirstPage, "lastPage", seg.LastPage, "path", path)

		if onProgress != nil {
			onProgress(models.SplitProgress{CompletedSegments: seg.Index, TotalSegments: total})
		}
	}
	return out, nil
}

func (e *Executor) writeSegment(source docservice.Handle, seg models.Segment, path string) error {
	part, err := e.docs.ExtractRange(source, seg.FirstPage, seg.LastPage)
	if err != nil {
		return fmt.Errorf("failed to extract pages %d-%d: %w", seg.FirstPage, seg.LastPage, err)
	}
	defer e.docs.Close(part)

	if err := e.docs.Save(part, path, segmentSaveOptions); err != nil {
		return fmt.Errorf("failed to save segment: %w", err)
	}
	return nil
}
