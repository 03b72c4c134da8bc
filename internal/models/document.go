package models

import "time"

// Job statuses recorded on a split job document.
const (
	StatusValidating = "VALIDATING"
	StatusSplitting  = "SPLITTING"
	StatusPublishing = "PUBLISHING"
	StatusComplete   = "COMPLETE"
	StatusDeclined   = "DECLINED"
	StatusFailed     = "FAILED"
)

// Job represents the record of one split operation in Firestore.
// It tracks the overall status and where the segments ended up.
type Job struct {
	FileHash            string    `firestore:"fileHash,omitempty"`
	OriginalFilename    string    `firestore:"originalFilename,omitempty"`
	Status              string    `firestore:"status,omitempty"`
	ErrorDetails        string    `firestore:"errorDetails,omitempty"`
	PageCount           int       `firestore:"pageCount,omitempty"`
	PagesPerSegment     int       `firestore:"pagesPerSegment,omitempty"`
	SegmentCount        int       `firestore:"segmentCount,omitempty"`
	CompletedSegments   int       `firestore:"completedSegments,omitempty"`
	FailedSegment       int       `firestore:"failedSegment,omitempty"`
	OutputObjects       []string  `firestore:"outputObjects,omitempty"`
	SkippedObjects      []string  `firestore:"skippedObjects,omitempty"`
	WorkflowExecutionID string    `firestore:"workflowExecutionId,omitempty"`
	CreatedAt           time.Time `firestore:"createdAt,omitempty"`
}

// PublishResult lists where published segments ended up.
type PublishResult struct {
	// Objects holds every destination object, in the order of the inputs.
	Objects []string
	// Skipped holds the objects that already existed and were left as they
	// were.
	Skipped []string
}

// Uploaded returns the objects written by this publish, in input order.
func (r PublishResult) Uploaded() []string {
	skipped := make(map[string]bool, len(r.Skipped))
	for _, s := range r.Skipped {
		skipped[s] = true
	}
	var uploaded []string
	for _, o := range r.Objects {
		if !skipped[o] {
			uploaded = append(uploaded, o)
		}
	}
	return uploaded
}
