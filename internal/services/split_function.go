package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"github.com/google/uuid"

	"github.com/Lllllllleong/pdfsplit/internal/docservice"
	"github.com/Lllllllleong/pdfsplit/internal/gcp"
	"github.com/Lllllllleong/pdfsplit/internal/models"
	"github.com/Lllllllleong/pdfsplit/internal/splitter"
)

// SourceFetcher downloads the uploaded document.
type SourceFetcher interface {
	Fetch(ctx context.Context, bucket, object, destPath string) error
}

// Publisher uploads written segments and reports where they went.
type Publisher interface {
	Publish(ctx context.Context, localPaths []string) (models.PublishResult, error)
}

// PublisherFactory builds a Publisher writing under prefix.
type PublisherFactory func(prefix string) Publisher

// JobStore records split jobs.
type JobStore interface {
	FindByHash(ctx context.Context, fileHash string) (string, bool, error)
	Create(ctx context.Context, id string, job models.Job) error
	Update(ctx context.Context, id string, fields map[string]any) error
}

// WorkflowStarter hands a finished job to a downstream workflow.
type WorkflowStarter interface {
	Start(ctx context.Context, arg models.WorkflowArgument) (string, error)
}

// SplitFunctionConfig holds configuration read from the environment.
type SplitFunctionConfig struct {
	ProjectID        string
	OutputBucket     string
	CollectionName   string
	PagesPerSegment  int
	WorkflowID       string
	WorkflowLocation string
}

// SplitFunction splits PDFs uploaded to a bucket and publishes the segments
// to OutputBucket under the job ID.
type SplitFunction struct {
	fetcher    SourceFetcher
	publishers PublisherFactory
	jobs       JobStore
	workflow   WorkflowStarter
	docs       docservice.Service
	config     SplitFunctionConfig
	logger     *slog.Logger
}

// GCSEvent is the payload of a GCS event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// LoadSplitFunctionConfig reads PROJECT_ID, OUTPUT_BUCKET,
// FIRESTORE_COLLECTION, PAGES_PER_SEGMENT, WORKFLOW_ID and WORKFLOW_LOCATION.
func LoadSplitFunctionConfig() (SplitFunctionConfig, error) {
	config := SplitFunctionConfig{
		ProjectID:        gcp.GetEnv("PROJECT_ID", ""),
		OutputBucket:     gcp.GetEnv("OUTPUT_BUCKET", ""),
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", "split-jobs"),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if config.ProjectID == "" {
		return config, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if config.OutputBucket == "" {
		return config, fmt.Errorf("OUTPUT_BUCKET environment variable must be set")
	}
	pages, err := strconv.Atoi(gcp.GetEnv("PAGES_PER_SEGMENT", "1"))
	if err != nil || pages <= 0 {
		return config, fmt.Errorf("PAGES_PER_SEGMENT must be a positive integer")
	}
	config.PagesPerSegment = pages
	return config, nil
}

// NewSplitFunction creates the GCP clients. The workflow client is only
// created when WORKFLOW_ID is set.
func NewSplitFunction(ctx context.Context, logger *slog.Logger) (*SplitFunction, error) {
	config, err := LoadSplitFunctionConfig()
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := &SplitFunction{
		fetcher: gcp.NewObjectFetcher(storageClient),
		publishers: func(prefix string) Publisher {
			return gcp.NewBucketPublisher(storageClient, gcp.PublisherConfig{
				Bucket: config.OutputBucket,
				Prefix: prefix,
			}, logger)
		},
		jobs:   gcp.NewFirestoreJobStore(firestoreClient, config.CollectionName),
		docs:   docservice.NewPDFService(),
		config: config,
		logger: logger,
	}
	if config.WorkflowID != "" {
		executionsClient, err := executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
		f.workflow = gcp.NewWorkflowTrigger(executionsClient, config.ProjectID, config.WorkflowLocation, config.WorkflowID)
	}
	logger.Info("Split function initialized.", "outputBucket", config.OutputBucket, "pagesPerSegment", config.PagesPerSegment)
	return f, nil
}

// Process handles one uploaded object. Duplicates of already processed
// files are skipped. Failures are recorded on the job document.
func (f *SplitFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := f.logger.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	logCtx.Info("Processing new GCS object.")

	tempDir, err := os.MkdirTemp("", "pdf-splitter-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, path.Base(e.Name))
	if err := f.fetcher.Fetch(ctx, e.Bucket, e.Name, sourcePath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}

	fileHash, err := calculateFileHash(sourcePath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	existingID, isDuplicate, err := f.jobs.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if isDuplicate {
		logCtx.Info("Duplicate file detected. Skipping.", "existingJobId", existingID)
		return nil
	}

	jobID := uuid.NewString()
	if err := f.jobs.Create(ctx, jobID, models.Job{
		FileHash:         fileHash,
		OriginalFilename: e.Name,
		Status:           models.StatusValidating,
		PagesPerSegment:  f.config.PagesPerSegment,
		CreatedAt:        time.Now(),
	}); err != nil {
		logCtx.Error("Failed to create job document", "error", err)
		return err
	}
	logCtx = logCtx.With("jobId", jobID)
	logCtx.Info("Created job document in Firestore.")

	outputDir := filepath.Join(tempDir, "out")
	if err := os.Mkdir(outputDir, 0o755); err != nil {
		return f.handleError(ctx, logCtx, jobID, "failed to create output dir", err)
	}

	orchestrator := NewOrchestrator(f.docs, AutoConfirmer{AllowUneven: true}, logCtx)
	report, err := orchestrator.Run(ctx, models.SplitRequest{
		JobID:           jobID,
		InputPath:       sourcePath,
		OutputDir:       outputDir,
		PagesPerSegment: f.config.PagesPerSegment,
	}, func(p models.SplitProgress) {
		f.recordProgress(ctx, logCtx, jobID, p)
	})
	if err != nil {
		return f.handleError(ctx, logCtx, jobID, "failed to split PDF", err)
	}
	if report.Status != models.StatusComplete {
		return f.handleError(ctx, logCtx, jobID, "split did not complete", fmt.Errorf("status %s", report.Status))
	}

	if err := f.jobs.Update(ctx, jobID, map[string]any{
		"status":       models.StatusPublishing,
		"pageCount":    report.Plan.PageCount,
		"segmentCount": report.Plan.SegmentCount(),
	}); err != nil {
		return f.handleError(ctx, logCtx, jobID, "failed to update status to PUBLISHING", err)
	}

	published, err := f.publishers(jobID).Publish(ctx, report.Written)
	if err != nil {
		return f.handleError(ctx, logCtx, jobID, "one or more segments failed to upload", err)
	}
	if len(published.Skipped) > 0 {
		logCtx.Warn("Some segment objects already existed and were not replaced.", "skipped", published.Skipped)
	}
	if err := f.jobs.Update(ctx, jobID, map[string]any{
		"status":         models.StatusComplete,
		"outputObjects":  published.Uploaded(),
		"skippedObjects": published.Skipped,
	}); err != nil {
		return f.handleError(ctx, logCtx, jobID, "failed to update status to COMPLETE", err)
	}

	// Skipped objects are still in place, so the workflow gets all of them.
	if err := f.triggerWorkflow(ctx, logCtx, jobID, report, published.Objects); err != nil {
		return err
	}
	logCtx.Info("Split and publish complete.", "segments", len(published.Objects))
	return nil
}

func (f *SplitFunction) recordProgress(ctx context.Context, logCtx *slog.Logger, jobID string, p models.SplitProgress) {
	err := f.jobs.Update(ctx, jobID, map[string]any{
		"status":            models.StatusSplitting,
		"completedSegments": p.CompletedSegments,
		"segmentCount":      p.TotalSegments,
	})
	if err != nil {
		logCtx.Warn("Failed to record split progress.", "completed", p.CompletedSegments, "error", err)
	}
}

func (f *SplitFunction) triggerWorkflow(ctx context.Context, logCtx *slog.Logger, jobID string, report *Report, objects []string) error {
	if f.workflow == nil {
		return nil
	}
	logCtx.Info("Triggering workflow.", "workflowId", f.config.WorkflowID)
	execName, err := f.workflow.Start(ctx, models.WorkflowArgument{
		DocumentID:    jobID,
		PageCount:     report.Plan.PageCount,
		SegmentCount:  report.Plan.SegmentCount(),
		OutputBucket:  f.config.OutputBucket,
		OutputObjects: objects,
	})
	if err != nil {
		return f.handleError(ctx, logCtx, jobID, "failed to trigger workflow execution", err)
	}
	if err := f.jobs.Update(ctx, jobID, map[string]any{"workflowExecutionId": execName}); err != nil {
		logCtx.Warn("Failed to record workflow execution.", "execution", execName, "error", err)
	}
	return nil
}

// handleError records the failure on the job, including the failed segment
// when the split stopped at one.
func (f *SplitFunction) handleError(ctx context.Context, logCtx *slog.Logger, jobID, message string, originalErr error) error {
	logCtx.Error(message, "error", originalErr)
	fields := map[string]any{
		"status":       models.StatusFailed,
		"errorDetails": fmt.Sprintf("%s: %v", message, originalErr),
	}
	var segErr *splitter.SegmentError
	if errors.As(originalErr, &segErr) {
		fields["failedSegment"] = segErr.Index
	}
	if err := f.jobs.Update(ctx, jobID, fields); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
