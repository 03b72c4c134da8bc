package models

// These structs define the JSON payloads exchanged with the HTTP plan
// function and the workflow triggered after a cloud split.

// PlanRequest is the input for the plan-function.
type PlanRequest struct {
	PageCount       int `json:"pageCount"`
	PagesPerSegment int `json:"pagesPerSegment"`
}

// PlanResponse is the output of the plan-function.
type PlanResponse struct {
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Plan   *SplitPlan `json:"plan,omitempty"`
}

// WorkflowArgument is the argument passed to the downstream workflow once a
// document has been split and published.
type WorkflowArgument struct {
	DocumentID    string   `json:"documentId"`
	PageCount     int      `json:"pageCount"`
	SegmentCount  int      `json:"segmentCount"`
	OutputBucket  string   `json:"outputBucket"`
	OutputObjects []string `json:"outputObjects"`
}
