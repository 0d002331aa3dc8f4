package generation

import (
	"fmt"
	"time"

	"github.com/BaSui01/creativeflow/types"
)

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func (s JobStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	default:
		return 2
	}
}

// CanTransition reports whether from → to keeps the status monotonic.
// Terminal states never change; processing never returns to pending.
func CanTransition(from, to JobStatus) bool {
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	return to.rank() >= from.rank()
}

// GeneratedImage is one produced image. Async backends return URLs, inline backends return data.
type GeneratedImage struct {
	URL          string `json:"url,omitempty"`
	B64Data      string `json:"b64_data,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

// GeneratedVideo is a produced video.
type GeneratedVideo struct {
	URL             string `json:"url"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	DurationSeconds int    `json:"duration,omitempty"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
}

// JobResult is present on completed jobs.
type JobResult struct {
	Images []GeneratedImage `json:"images,omitempty"`
	Video  *GeneratedVideo  `json:"video,omitempty"`
}

// JobMetadata echoes what was requested and which model served it.
type JobMetadata struct {
	Prompt         string            `json:"prompt,omitempty"`
	NegativePrompt string            `json:"negative_prompt,omitempty"`
	StylePreset    types.StylePreset `json:"style_preset,omitempty"`
	ModelVersion   string            `json:"model_version,omitempty"`
}

// Job is a snapshot of a generation job.
type Job struct {
	ID          string            `json:"id"`
	Provider    string            `json:"provider"`
	ContentType types.ContentType `json:"content_type"`
	Status      JobStatus         `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Result      *JobResult        `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    JobMetadata       `json:"metadata"`
}

// Advance moves the job to next, refusing non-monotonic transitions.
func (j *Job) Advance(next JobStatus, at time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("unknown job status %q", next)
	}
	if !CanTransition(j.Status, next) {
		return fmt.Errorf("job %s: invalid transition %s -> %s", j.ID, j.Status, next)
	}
	j.Status = next
	j.UpdatedAt = at
	return nil
}

// CancelResult reports the outcome of a cancel request.
type CancelResult struct {
	JobID     string    `json:"job_id"`
	Cancelled bool      `json:"cancelled"`
	Status    JobStatus `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Capabilities describes which operations a backend really supports.
type Capabilities struct {
	Image        bool `json:"image"`
	Video        bool `json:"video"`
	StatusLookup bool `json:"status_lookup"`
	Cancel       bool `json:"cancel"`
}
