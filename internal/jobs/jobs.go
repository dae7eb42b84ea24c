// Package jobs runs transcode jobs on a bounded worker pool with a
// fixed-depth admission queue.
package jobs

import (
	"context"
	"time"

	"github.com/transcodehub/transcodebot/internal/models"
)

// Runner executes a job's encode plan. The pool treats it as opaque and
// maps its error into a terminal job status.
type Runner interface {
	Run(ctx context.Context, job *models.Job, progress models.ProgressFunc) error
}

// StatusRepository mirrors job state into external storage for
// operator-side inspection. Implementations must tolerate being called
// on the hot path; failures are logged and never affect the job.
type StatusRepository interface {
	UpdateStatus(ctx context.Context, job *models.Job) error
	UpdateProgress(ctx context.Context, jobID string, percent int) error
	GetStatus(ctx context.Context, jobID string) (*JobView, error)
}

// JobView is the externally visible snapshot of a job.
type JobView struct {
	JobID     string           `json:"job_id"`
	SessionID int64            `json:"session_id"`
	Operation models.Operation `json:"operation"`
	Status    models.JobStatus `json:"status"`
	Progress  int              `json:"progress"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNoopStatusRepository returns a repository that records nothing.
// Used when the status store is not configured.
func NewNoopStatusRepository() StatusRepository {
	return noopStatusRepository{}
}

type noopStatusRepository struct{}

func (noopStatusRepository) UpdateStatus(context.Context, *models.Job) error { return nil }

func (noopStatusRepository) UpdateProgress(context.Context, string, int) error { return nil }

func (noopStatusRepository) GetStatus(context.Context, string) (*JobView, error) { return nil, nil }
