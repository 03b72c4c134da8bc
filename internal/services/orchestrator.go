package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/Lllllllleong/pdfsplit/internal/docservice"
	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/splitter"
)

// Confirmer decides whether to continue past an advisory condition.
// Returning false stops the run without error.
type Confirmer interface {
	ConfirmUnevenSplit(ctx context.Context, plan models.SplitPlan) (bool, error)
	ConfirmOverwrite(ctx context.Context, existing []string) (bool, error)
}

// Report describes how a run ended.
type Report struct {
	JobID    string
	Status   string
	BaseName string
	Plan     models.SplitPlan
	// Existing lists planned outputs that were already on disk.
	Existing []string
	// Written lists the segment files produced, in order.
	Written []string
	// FailedSegment is the 1-based index of the segment that failed, or 0.
	FailedSegment int
	// Missing lists planned outputs that were not written because of a
	// failure or cancellation.
	Missing []string
}

// Orchestrator runs validation, planning, the overwrite check and execution
// for one request at a time. Two runs writing into the same output
// directory at once may race on the overwrite check and on the files
// themselves; callers must not do that.
type Orchestrator struct {
	docs      docservice.Service
	validator *splitter.Validator
	executor  *splitter.Executor
	confirmer Confirmer
	logger    *slog.Logger
}

// NewOrchestrator wires the splitter components around docs.
func NewOrchestrator(docs docservice.Service, confirmer Confirmer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		docs:      docs,
		validator: splitter.NewValidator(docs),
		executor:  splitter.NewExecutor(docs, logger),
		confirmer: confirmer,
		logger:    logger,
	}
}

// Preview validates the input and computes the plan and collisions without
// writing anything.
func (o *Orchestrator) Preview(ctx context.Context, req models.SplitRequest) (*Report, error) {
	report, source, err := o.prepare(ctx, req)
	if source != nil {
		o.docs.Close(source)
	}
	return report, err
}

// Run performs the split. Declined confirmations return a report with
// status DECLINED and a nil error. A segment failure returns the report
// (with the files that do exist) together with a *splitter.SegmentError.
func (o *Orchestrator) Run(ctx context.Context, req models.SplitRequest, onProgress splitter.ProgressFunc) (*Report, error) {
	report, source, err := o.prepare(ctx, req)
	if err != nil {
		if source != nil {
			o.docs.Close(source)
		}
		return report, err
	}
	logCtx := o.logger.With("jobId", report.JobID, "inputPath", req.InputPath)

	if !report.Plan.EvenlyDivisible {
		ok, err := o.confirmer.ConfirmUnevenSplit(ctx, report.Plan)
		if err != nil || !ok {
			o.docs.Close(source)
			return o.declined(logCtx, report, "uneven split", err)
		}
	}
	if len(report.Existing) > 0 {
		ok, err := o.confirmer.ConfirmOverwrite(ctx, report.Existing)
		if err != nil || !ok {
			o.docs.Close(source)
			return o.declined(logCtx, report, "overwrite", err)
		}
		logCtx.Warn("Overwriting existing output files.", "count", len(report.Existing))
	}

	logCtx.Info("Starting split.", "segments", report.Plan.SegmentCount(), "pagesPerSegment", report.Plan.PagesPerSegment)
	// The executor owns source from here on and releases it.
	out, err := o.executor.Execute(ctx, source, report.Plan, req.OutputDir, report.BaseName, onProgress)
	report.Written = out.Written
	if err != nil {
		report.Status = models.StatusFailed
		report.Missing = missing(req.OutputDir, report.BaseName, report.Plan, len(out.Written))
		var segErr *splitter.SegmentError
		if errors.As(err, &segErr) {
			report.FailedSegment = segErr.Index
		}
		logCtx.Error("Split failed.", "written", len(out.Written), "failedSegment", report.FailedSegment, "error", err)
		return report, err
	}

	report.Status = models.StatusComplete
	logCtx.Info("Split complete.", "written", len(out.Written))
	return report, nil
}

// prepare returns the open source document on success so Run can hand it
// to the executor.
func (o *Orchestrator) prepare(ctx context.Context, req models.SplitRequest) (*Report, docservice.Handle, error) {
	if err := checkRequest(req); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	report := &Report{
		JobID:    req.JobID,
		Status:   models.StatusValidating,
		BaseName: splitter.BaseName(req.InputPath),
	}
	if report.JobID == "" {
		report.JobID = uuid.NewString()
	}
	logCtx := o.logger.With("jobId", report.JobID, "inputPath", req.InputPath)

	if err := o.validator.Validate(req.InputPath); err != nil {
		logCtx.Warn("Input rejected.", "error", err)
		report.Status = models.StatusFailed
		return report, nil, err
	}

	source, err := o.docs.Open(req.InputPath)
	if err != nil {
		report.Status = models.StatusFailed
		return report, nil, fmt.Errorf("failed to open %s: %w", req.InputPath, err)
	}

	plan, err := splitter.Plan(o.docs.PageCount(source), req.PagesPerSegment)
	if err != nil {
		report.Status = models.StatusFailed
		return report, source, err
	}
	report.Plan = plan
	logCtx.Info("Split planned.", "pageCount", plan.PageCount, "segments", plan.SegmentCount(), "evenlyDivisible", plan.EvenlyDivisible)

	collision, err := splitter.CheckOverwrite(req.OutputDir, report.BaseName, plan)
	if err != nil {
		report.Status = models.StatusFailed
		return report, source, fmt.Errorf("failed to check output directory: %w", err)
	}
	report.Existing = collision.Existing
	return report, source, nil
}

func (o *Orchestrator) declined(logCtx *slog.Logger, report *Report, what string, err error) (*Report, error) {
	if err != nil {
		report.Status = models.StatusFailed
		return report, fmt.Errorf("failed to confirm %s: %w", what, err)
	}
	report.Status = models.StatusDeclined
	logCtx.Info("Split declined.", "reason", what)
	return report, nil
}

func checkRequest(req models.SplitRequest) error {
	if req.InputPath == "" {
		return fmt.Errorf("%w: input file is required", splitter.ErrInvalidInput)
	}
	if req.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", splitter.ErrInvalidInput)
	}
	if req.PagesPerSegment <= 0 {
		return fmt.Errorf("%w: pages per segment must be a positive number", splitter.ErrInvalidInput)
	}
	info, err := os.Stat(req.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: output directory: %v", splitter.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: output path %s is not a directory", splitter.ErrInvalidInput, req.OutputDir)
	}
	return nil
}

func missing(dir, baseName string, plan models.SplitPlan, written int) []string {
	var paths []string
	for _, seg := range plan.Segments[written:] {
		paths = append(paths, splitter.OutputPath(dir, baseName, seg.Index))
	}
	return paths
}
