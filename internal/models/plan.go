package models

// Segment is one contiguous, inclusive page range written to exactly one
// output file. Pages are 0-based; Index is 1-based.
type Segment struct {
	Index     int `json:"index"`
	FirstPage int `json:"firstPage"`
	LastPage  int `json:"lastPage"`
}

// PageCount returns the number of pages the segment spans.
func (s Segment) PageCount() int {
	return s.LastPage - s.FirstPage + 1
}

// SplitPlan is the immutable partition of a document into segments.
type SplitPlan struct {
	PageCount       int       `json:"pageCount"`
	PagesPerSegment int       `json:"pagesPerSegment"`
	Segments        []Segment `json:"segments"`
	EvenlyDivisible bool      `json:"evenlyDivisible"`
	// RemainderPages and SuggestedSegmentSizes are only set when the split
	// is not even.
	RemainderPages        int   `json:"remainderPages,omitempty"`
	SuggestedSegmentSizes []int `json:"suggestedSegmentSizes,omitempty"`
}

// SegmentCount returns the number of planned output files.
func (p SplitPlan) SegmentCount() int {
	return len(p.Segments)
}

// SplitRequest describes one split operation.
type SplitRequest struct {
	// JobID labels logs and job records. One is generated when empty.
	JobID           string
	InputPath       string
	OutputDir       string
	PagesPerSegment int
}

// SplitProgress is reported after every completed segment write.
type SplitProgress struct {
	CompletedSegments int `json:"completedSegments"`
	TotalSegments     int `json:"totalSegments"`
}
