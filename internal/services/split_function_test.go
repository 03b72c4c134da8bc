package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/pdfsplit/internal/docservice/docservicetest"
	"github.com/Lllllllleong/pdfsplit/internal/logger"
	"github.com/Lllllllleong/pdfsplit/internal/models"
)

type fileFetcher struct {
	content []byte
	err     error
}

func (f fileFetcher) Fetch(_ context.Context, _, _, destPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, f.content, 0o644)
}

type memoryJobs struct {
	mu      sync.Mutex
	byHash  map[string]string
	jobs    map[string]models.Job
	updates []map[string]any
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{byHash: map[string]string{}, jobs: map[string]models.Job{}}
}

func (m *memoryJobs) FindByHash(_ context.Context, hash string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byHash[hash]
	return id, ok, nil
}

func (m *memoryJobs) Create(_ context.Context, id string, job models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHash[job.FileHash] = id
	m.jobs[id] = job
	return nil
}

func (m *memoryJobs) Update(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, fields)
	job := m.jobs[id]
	if s, ok := fields["status"].(string); ok {
		job.Status = s
	}
	if d, ok := fields["errorDetails"].(string); ok {
		job.ErrorDetails = d
	}
	if o, ok := fields["outputObjects"].([]string); ok {
		job.OutputObjects = o
	}
	if o, ok := fields["skippedObjects"].([]string); ok {
		job.SkippedObjects = o
	}
	if n, ok := fields["failedSegment"].(int); ok {
		job.FailedSegment = n
	}
	m.jobs[id] = job
	return nil
}

func (m *memoryJobs) only(t *testing.T) models.Job {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.jobs, 1)
	for _, j := range m.jobs {
		return j
	}
	return models.Job{}
}

type recordingPublisher struct {
	prefix string
	paths  []string
	err    error
	// existing names files whose objects are already in the bucket.
	existing map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, paths []string) (models.PublishResult, error) {
	p.paths = append(p.paths, paths...)
	if p.err != nil {
		return models.PublishResult{}, p.err
	}
	var result models.PublishResult
	for _, path := range paths {
		obj := p.prefix + "/" + filepath.Base(path)
		result.Objects = append(result.Objects, obj)
		if p.existing[filepath.Base(path)] {
			result.Skipped = append(result.Skipped, obj)
		}
	}
	return result, nil
}

type recordingWorkflow struct {
	args []models.WorkflowArgument
}

func (w *recordingWorkflow) Start(_ context.Context, arg models.WorkflowArgument) (string, error) {
	w.args = append(w.args, arg)
	return "executions/1", nil
}

func newTestFunction(fake *docservicetest.Fake, jobs *memoryJobs, pub *recordingPublisher) *SplitFunction {
	return &SplitFunction{
		fetcher: fileFetcher{content: []byte("%PDF-placeholder")},
		publishers: func(prefix string) Publisher {
			pub.prefix = prefix
			return pub
		},
		jobs: jobs,
		docs: fake,
		config: SplitFunctionConfig{
			OutputBucket:    "segments",
			PagesPerSegment: 2,
		},
		logger: logger.Discard(),
	}
}

func TestSplitFunction_Process(t *testing.T) {
	jobs := newMemoryJobs()
	pub := &recordingPublisher{}
	wf := &recordingWorkflow{}
	f := newTestFunction(&docservicetest.Fake{Pages: 5}, jobs, pub)
	f.workflow = wf

	require.NoError(t, f.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "inbox/report.pdf"}))

	job := jobs.only(t)
	assert.Equal(t, models.StatusComplete, job.Status)
	assert.Equal(t, "inbox/report.pdf", job.OriginalFilename)
	assert.Len(t, pub.paths, 3)
	assert.Equal(t, []string{
		pub.prefix + "/report_1.pdf",
		pub.prefix + "/report_2.pdf",
		pub.prefix + "/report_3.pdf",
	}, job.OutputObjects)

	require.Len(t, wf.args, 1)
	assert.Equal(t, 5, wf.args[0].PageCount)
	assert.Equal(t, 3, wf.args[0].SegmentCount)
	assert.Equal(t, "segments", wf.args[0].OutputBucket)
}

func TestSplitFunction_RecordsSkippedObjectsSeparately(t *testing.T) {
	jobs := newMemoryJobs()
	pub := &recordingPublisher{existing: map[string]bool{"report_2.pdf": true}}
	wf := &recordingWorkflow{}
	f := newTestFunction(&docservicetest.Fake{Pages: 4}, jobs, pub)
	f.workflow = wf

	require.NoError(t, f.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "report.pdf"}))

	job := jobs.only(t)
	assert.Equal(t, []string{pub.prefix + "/report_1.pdf"}, job.OutputObjects)
	assert.Equal(t, []string{pub.prefix + "/report_2.pdf"}, job.SkippedObjects)

	require.Len(t, wf.args, 1)
	assert.Len(t, wf.args[0].OutputObjects, 2, "existing objects are still handed on")
}

func TestSplitFunction_SkipsDuplicates(t *testing.T) {
	jobs := newMemoryJobs()
	pub := &recordingPublisher{}
	f := newTestFunction(&docservicetest.Fake{Pages: 4}, jobs, pub)
	event := GCSEvent{Bucket: "uploads", Name: "report.pdf"}

	require.NoError(t, f.Process(context.Background(), event))
	require.NoError(t, f.Process(context.Background(), event))

	assert.Len(t, jobs.jobs, 1)
	assert.Len(t, pub.paths, 2, "second upload is not split again")
}

func TestSplitFunction_RecordsSegmentFailure(t *testing.T) {
	jobs := newMemoryJobs()
	pub := &recordingPublisher{}
	f := newTestFunction(&docservicetest.Fake{Pages: 6, FailSaveAt: 2}, jobs, pub)

	err := f.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "report.pdf"})
	assert.Error(t, err)

	job := jobs.only(t)
	assert.Equal(t, models.StatusFailed, job.Status)
	assert.Equal(t, 2, job.FailedSegment)
	last := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, 2, last["failedSegment"], "failed segment is written with the FAILED status")
	assert.Contains(t, job.ErrorDetails, "segment 2")
	assert.Empty(t, pub.paths)
}

func TestSplitFunction_RejectsNonPDF(t *testing.T) {
	jobs := newMemoryJobs()
	f := newTestFunction(&docservicetest.Fake{Pages: 2}, jobs, &recordingPublisher{})

	err := f.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "notes.txt"})
	assert.Error(t, err)
	assert.Equal(t, models.StatusFailed, jobs.only(t).Status)
}

func TestSplitFunction_PublishFailure(t *testing.T) {
	jobs := newMemoryJobs()
	pub := &recordingPublisher{err: errors.New("bucket unavailable")}
	f := newTestFunction(&docservicetest.Fake{Pages: 2}, jobs, pub)

	err := f.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "report.pdf"})
	assert.Error(t, err)
	assert.Equal(t, models.StatusFailed, jobs.only(t).Status)
}

func TestSplitFunction_FetchFailure(t *testing.T) {
	jobs := newMemoryJobs()
	f := newTestFunction(&docservicetest.Fake{Pages: 2}, jobs, &recordingPublisher{})
	f.fetcher = fileFetcher{err: errors.New("no such object")}

	err := f.Process(context.Background(), GCSEvent{Bucket: "uploads", Name: "report.pdf"})
	assert.Error(t, err)
	assert.Empty(t, jobs.jobs)
}

func TestLoadSplitFunctionConfig(t *testing.T) {
	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("OUTPUT_BUCKET", "segments")
	t.Setenv("PAGES_PER_SEGMENT", "5")

	cfg, err := LoadSplitFunctionConfig()
	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.ProjectID)
	assert.Equal(t, 5, cfg.PagesPerSegment)
	assert.Equal(t, "split-jobs", cfg.CollectionName)
	assert.Equal(t, "us-central1", cfg.WorkflowLocation)

	t.Setenv("PAGES_PER_SEGMENT", "zero")
	_, err = LoadSplitFunctionConfig()
	assert.Error(t, err)
}

func TestLoadSplitFunctionConfig_RequiresBucket(t *testing.T) {
	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("OUTPUT_BUCKET", "")

	_, err := LoadSplitFunctionConfig()
	assert.Error(t, err)
}
