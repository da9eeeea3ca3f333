package models

import (
	"time"
)

// TranscriptRequest is the body sent to the processing endpoint.
type TranscriptRequest struct {
	UserURL string `json:"user_url" validate:"required"`
}

// TranscriptResult is the outcome of a single submission. A new result
// replaces the previous one wholesale.
type TranscriptResult struct {
	ID         string        `json:"id"`
	Input      string        `json:"input"`
	Content    string        `json:"content"` // HTML markup
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	Duration   time.Duration `json:"duration"`
}

// Valid reports whether exactly one of success-with-content or
// failure-with-error holds.
func (r *TranscriptResult) Valid() bool {
	if r == nil {
		return true
	}
	ok := r.Success && r.Content != "" && r.Error == ""
	failed := !r.Success && r.Error != ""
	return ok != failed
}
