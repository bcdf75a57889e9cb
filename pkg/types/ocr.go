// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PageStatus indicates the terminal state of one processed page.
type PageStatus string

const (
	PageSuccess PageStatus = "success"
	PageFailed  PageStatus = "failed"
)

// FailureKind classifies why a page failed, for reporting and for callers
// that branch on the failure class.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureRaster    FailureKind = "raster"
	FailureRecognize FailureKind = "recognize"
	FailureTimeout   FailureKind = "timeout"
)

// PageResult is the outcome of rasterizing and recognizing one page.
// Produced by exactly one worker and never mutated afterwards.
type PageResult struct {
	// Page is the 1-based page index in the source document.
	Page int `json:"page" yaml:"page"`

	// Text is the recognized text; empty for pages with no recognizable
	// content, which is a valid result rather than a failure.
	Text string `json:"text" yaml:"text"`

	// Confidence is the aggregate recognition confidence for the page,
	// 0-100. Zero when nothing was recognized.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Duration is the wall time spent rasterizing and recognizing the page.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Status is success or failed.
	Status PageStatus `json:"status" yaml:"status"`

	// Failure classifies a failed page; FailureNone on success.
	Failure FailureKind `json:"failure,omitempty" yaml:"failure,omitempty"`

	// Detail is the error detail for a failed page.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Succeeded reports whether the page reached a successful terminal state.
func (r PageResult) Succeeded() bool {
	return r.Status == PageSuccess
}

// Document is the ordered collection of page results for one run, plus the
// run settings needed by output writers. Pages are strictly ascending by
// page index. The pipeline owns the document until it completes; afterwards
// it is read-only.
type Document struct {
	// Source is the path to the input PDF.
	Source string `json:"source" yaml:"source"`

	// Language is the "+"-joined recognition language spec (e.g. "chi_sim+eng").
	Language string `json:"language" yaml:"language"`

	// DPI is the rasterization resolution used for the run.
	DPI int `json:"dpi" yaml:"dpi"`

	// Engine names the recognition engine that produced the results.
	Engine string `json:"engine" yaml:"engine"`

	// StartedAt is when the pipeline began processing.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Pages holds one terminal PageResult per selected page, in ascending
	// page order.
	Pages []PageResult `json:"pages" yaml:"pages"`
}

// Report holds aggregate statistics computed once from the complete page
// results. It is derived data and is never incrementally mutated.
type Report struct {
	// TotalPages is the number of pages in the selection.
	TotalPages int `json:"total_pages" yaml:"total_pages"`

	// Succeeded and Failed count terminal page states.
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`

	// AverageConfidence is the mean confidence over succeeded pages.
	// Zero when no page succeeded; check NoSuccess to distinguish that
	// case from a genuine zero mean.
	AverageConfidence float64 `json:"average_confidence" yaml:"average_confidence"`

	// NoSuccess is set when not a single page succeeded.
	NoSuccess bool `json:"no_success,omitempty" yaml:"no_success,omitempty"`

	// Threshold is the low-confidence threshold the report was computed with.
	Threshold int `json:"threshold" yaml:"threshold"`

	// LowConfidencePages lists succeeded pages whose confidence is strictly
	// below Threshold, ascending.
	LowConfidencePages []int `json:"low_confidence_pages,omitempty" yaml:"low_confidence_pages,omitempty"`

	// Characters and Words count recognized text over succeeded pages.
	Characters int `json:"characters" yaml:"characters"`
	Words      int `json:"words" yaml:"words"`

	// Elapsed is the wall time for the whole run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// HasFailures reports whether any page failed.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}

// SuccessRate returns the fraction of succeeded pages as a percentage.
func (r Report) SuccessRate() float64 {
	if r.TotalPages == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.TotalPages) * 100
}
